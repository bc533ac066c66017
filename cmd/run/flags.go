package run

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/exascience/parpat/cmd/util"
)

// bindRunFlagsFunc binds the cobra cmd flags to the equivalent config value being managed
// by viper. This bridges the config between cobra flags and viper flags.
func bindRunFlagsFunc(flags *pflag.FlagSet) func(*cobra.Command, []string) {
	return func(command *cobra.Command, args []string) {
		util.MustBindPFlag("task", flags.Lookup("task"))
		util.MustBindEnv("task", "PARBENCH_TASK")

		util.MustBindPFlag("size", flags.Lookup("size"))
		util.MustBindEnv("size", "PARBENCH_SIZE")

		util.MustBindPFlag("max-value", flags.Lookup("max-value"))
		util.MustBindEnv("max-value", "PARBENCH_MAX_VALUE")

		util.MustBindPFlag("dir", flags.Lookup("dir"))
		util.MustBindEnv("dir", "PARBENCH_DIR")

		util.MustBindPFlag("rounds", flags.Lookup("rounds"))
		util.MustBindEnv("rounds", "PARBENCH_ROUNDS")

		util.MustBindPFlag("workers", flags.Lookup("workers"))
		util.MustBindEnv("workers", "PARBENCH_WORKERS")

		util.MustBindPFlag("log.format", flags.Lookup("log-format"))
		util.MustBindEnv("log.format", "PARBENCH_LOG_FORMAT")

		util.MustBindPFlag("log.level", flags.Lookup("log-level"))
		util.MustBindEnv("log.level", "PARBENCH_LOG_LEVEL")

		util.MustBindPFlag("store.uri", flags.Lookup("store-uri"))
		util.MustBindEnv("store.uri", "PARBENCH_STORE_URI")
	}
}
