// Package cmd contains all the commands included in the binary file.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCommand enables all children commands to read flags from CLI flags, environment variables prefixed with PARBENCH, or config.yaml (in that order).
func NewRootCommand() *cobra.Command {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("PARBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	configPaths := []string{"/etc/parbench", "$HOME/.parbench", "."}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	return &cobra.Command{
		Use:   "parbench",
		Short: "Compare parallel execution strategies on benchmark tasks",
		Long: `Compare parallel execution strategies on benchmark tasks.

Every task computes one metric over its dataset with thirteen strategies, from a sequential
scan to fork-join, pipelines, concurrent collections, and pooled buffers. parbench times the
strategies, checks that they agree with the sequential result, and records the timings.`,
		SilenceUsage: true,
	}
}
