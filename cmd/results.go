package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/exascience/parpat/cmd/util"
	"github.com/exascience/parpat/internal/config"
	"github.com/exascience/parpat/internal/logger"
	"github.com/exascience/parpat/storage/sqlite"
)

const (
	sessionFlag = "session"
	limitFlag   = "limit"
)

// NewResultsCommand returns the command that prints recorded sessions,
// or the results of one session.
func NewResultsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Show recorded benchmark results",
		Long:  "List the recorded benchmark sessions, most recent first, or show the results of one session.",
		Args:  cobra.NoArgs,
		RunE:  results,
	}

	flags := cmd.Flags()
	flags.String("store-uri", config.DefaultStoreURI, "the SQLite data source name of the results store")
	flags.String(sessionFlag, "", "the session to show the results of")
	flags.Int(limitFlag, 20, "the maximum number of sessions to list, 0 lists all")

	cmd.PreRun = func(*cobra.Command, []string) {
		util.MustBindPFlag("store.uri", flags.Lookup("store-uri"))
	}

	return cmd
}

func results(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()
	sessionID, err := flags.GetString(sessionFlag)
	if err != nil {
		return err
	}
	limit, err := flags.GetInt(limitFlag)
	if err != nil {
		return err
	}

	store, err := sqlite.New(ctx, viper.GetString("store.uri"), logger.NewNoopLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	if sessionID == "" {
		sessions, err := store.ListSessions(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, "session\ttask\trun at\thost\tcores")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Task, s.RunAt.Format(time.DateTime), s.Host, s.Cores)
		}
		return w.Flush()
	}

	list, err := store.ReadResults(ctx, sessionID)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "method\tmean ms\tstd-dev ms\tN\tcomment")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%d\t%s\n", r.Method, r.MeanMs, r.StdDevMs, r.N, r.Comment)
	}
	return w.Flush()
}
