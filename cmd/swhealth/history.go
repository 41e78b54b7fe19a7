package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/infrastructure/config"
	"github.com/carlosrabelo/swhealth/infrastructure/history"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent health check runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(c, cmd.Flags(), map[string]string{"history-db": "history_db"})
			return c.listHistory(cmd.Context(), cmd.OutOrStdout(), limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", config.DefaultHistoryLimit, "number of runs to show")
	cmd.Flags().String("history-db", "", "SQLite file recording every run")

	return cmd
}

func (c *cli) listHistory(ctx context.Context, out io.Writer, limit int) error {
	settings, _, err := c.loadSettings()
	if err != nil {
		return err
	}
	if settings.HistoryDB == "" {
		return errors.Wrap(config.ErrConfig, "history_db is not set, run history is disabled")
	}
	if limit <= 0 {
		return errors.Wrap(config.ErrConfig, "--limit must be positive")
	}

	db, err := history.Open(settings.HistoryDB)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	runs, err := history.NewSqliteRepo(db).List(ctx, limit)
	if err != nil {
		return err
	}

	printRuns(out, runs)
	return nil
}

func printRuns(out io.Writer, runs []entities.RunReport) {
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tDURATION\tREACHABLE\tFAILED\tROWS\tREPORT")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.FinishedAt.Sub(run.StartedAt).Round(time.Millisecond),
			run.Summary.ReachableCount,
			run.Summary.FailedCount,
			run.RowCount,
			run.ReportPath,
		)
	}
	w.Flush()
}
