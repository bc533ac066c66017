package main

import (
	"os"

	"github.com/exascience/parpat/cmd"
	"github.com/exascience/parpat/cmd/run"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	runCmd := run.NewRunCommand()
	rootCmd.AddCommand(runCmd)

	rootCmd.AddCommand(cmd.NewListCommand())
	rootCmd.AddCommand(cmd.NewGenerateCommand())
	rootCmd.AddCommand(cmd.NewResultsCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
