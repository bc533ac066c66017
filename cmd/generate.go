package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/viant/afs"

	"github.com/exascience/parpat/cmd/util"
	"github.com/exascience/parpat/datagen"
	"github.com/exascience/parpat/internal/config"
	"github.com/exascience/parpat/internal/logger"
)

const (
	kindFlag  = "kind"
	filesFlag = "files"
	linesFlag = "lines"
)

// NewGenerateCommand returns the command that writes data files for the
// file-backed tasks.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate data files for the file-backed tasks",
		Long:  "Generate data files for the file-backed tasks: UserLogs for 'frequency' and RandomNumbers for 'dedup'.",
		Args:  cobra.NoArgs,
		RunE:  generate,
	}

	flags := cmd.Flags()
	flags.String("dir", config.DefaultDir, "the directory to write the files to")
	flags.String(kindFlag, datagen.UserLogs.String(), "the kind of data, 'UserLogs' or 'RandomNumbers'")
	flags.Int(filesFlag, datagen.DefaultFiles, "the number of files")
	flags.Int(linesFlag, datagen.DefaultLines, "the number of lines per file")
	flags.String("log-level", "info", "the log level to use")

	cmd.PreRun = func(*cobra.Command, []string) {
		util.MustBindPFlag("dir", flags.Lookup("dir"))
		util.MustBindPFlag("log.level", flags.Lookup("log-level"))
	}

	return cmd
}

func generate(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	kindName, err := flags.GetString(kindFlag)
	if err != nil {
		return err
	}
	kind, err := datagen.ParseKind(kindName)
	if err != nil {
		return err
	}
	files, err := flags.GetInt(filesFlag)
	if err != nil {
		return err
	}
	lines, err := flags.GetInt(linesFlag)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger("text", viper.GetString("log.level"))
	if err != nil {
		return err
	}

	dir := viper.GetString("dir")
	urls, err := datagen.Generate(cmd.Context(), afs.New(), dir, kind, files, lines, log)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "generated %d %v files in %s\n", len(urls), kind, dir)
	return err
}
