package bench

import (
	"os"
	"runtime"
)

// Environment describes the machine a benchmark runs on.
type Environment struct {
	Host      string
	OS        string
	Arch      string
	Cores     int
	GoVersion string
}

// CurrentEnvironment returns the environment of the running process.
func CurrentEnvironment() Environment {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return Environment{
		Host:      host,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		Cores:     runtime.NumCPU(),
		GoVersion: runtime.Version(),
	}
}
