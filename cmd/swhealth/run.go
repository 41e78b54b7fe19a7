package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/carlosrabelo/swhealth/application/scheduler"
	appservices "github.com/carlosrabelo/swhealth/application/services"
	"github.com/carlosrabelo/swhealth/domain/entities"
	"github.com/carlosrabelo/swhealth/domain/ports"
	"github.com/carlosrabelo/swhealth/domain/services"
	"github.com/carlosrabelo/swhealth/infrastructure/config"
	"github.com/carlosrabelo/swhealth/infrastructure/history"
	"github.com/carlosrabelo/swhealth/infrastructure/metrics"
	"github.com/carlosrabelo/swhealth/infrastructure/report"
	"github.com/carlosrabelo/swhealth/infrastructure/transport"
	"github.com/carlosrabelo/swhealth/internal/logger"
)

// flag name -> settings key
var runFlagKeys = map[string]string{
	"output-dir":      "output_dir",
	"report-prefix":   "report_prefix",
	"connect-timeout": "connect_timeout",
	"command-timeout": "command_timeout",
	"history-db":      "history_db",
	"metrics-listen":  "metrics_listen",
	"interval":        "interval",
}

func newRunCmd(c *cli) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Inspect every switch in the inventory and write the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			bindFlags(c, cmd.Flags(), runFlagKeys)
			return c.runHealthCheck(cmd.Context(), cmd.OutOrStdout(), target)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&target, "target", "", "only inspect the switch with this IP or name")
	flags.String("output-dir", config.DefaultOutputDir, "directory for report files")
	flags.String("report-prefix", config.DefaultReportPrefix, "report file name prefix")
	flags.Duration("connect-timeout", config.DefaultConnectTimeout, "time allowed to connect and log in")
	flags.Duration("command-timeout", config.DefaultCommandTimeout, "time allowed for one command")
	flags.String("history-db", "", "SQLite file recording every run, empty disables history")
	flags.String("metrics-listen", "", "address serving /metrics in interval mode, e.g. :9469")
	flags.Duration("interval", 0, "repeat the run on this interval until interrupted, 0 runs once")

	return cmd
}

// bindFlags ties flags to settings keys. Bound at execution time since
// several subcommands share a key.
func bindFlags(c *cli, flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		if err := c.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

func (c *cli) runHealthCheck(ctx context.Context, out io.Writer, target string) error {
	settings, path, err := c.loadSettings()
	if err != nil {
		return err
	}

	inventory, err := config.LoadInventory(path, settings.CredentialDefaults())
	if err != nil {
		return err
	}
	if target != "" {
		if inventory, err = config.SelectTarget(inventory, target); err != nil {
			return err
		}
	}

	log := logger.New()

	var runHistory ports.RunHistory
	if settings.HistoryDB != "" {
		db, err := history.Open(settings.HistoryDB)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		runHistory = history.NewSqliteRepo(db)
	}

	sessions := transport.New(transport.Options{
		ConnectTimeout: settings.ConnectTimeout,
		CommandTimeout: settings.CommandTimeout,
		Log:            log,
	})

	svc := appservices.NewHealthCheckService(
		services.NewInspector(sessions, log),
		report.NewCSVSink(settings.OutputDir, settings.ReportPrefix),
		runHistory,
		log,
	)

	if settings.Interval == 0 {
		result, err := svc.Execute(ctx, inventory)
		if err != nil {
			return err
		}
		printSummary(out, result)
		return nil
	}

	if settings.MetricsListen != "" {
		server := metrics.ListenAndServe(settings.MetricsListen, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("metrics server shutdown")
			}
		}()
	}

	log.Info().Dur("interval", settings.Interval).Int("switches", len(inventory)).Msg("starting scheduled health checks")

	scheduler.New(settings.Interval, scheduler.RunnerFunc(func(ctx context.Context) error {
		result, err := svc.Execute(ctx, inventory)
		if err != nil {
			return err
		}
		printSummary(out, result)
		return nil
	}), log).Start(ctx)

	return nil
}

func printSummary(out io.Writer, result entities.RunReport) {
	fmt.Fprintf(out, "\nInterface status written to: %s\n", result.ReportPath)
	fmt.Fprintf(out, "Summary: %d switches reachable, %d failed to connect.\n",
		result.Summary.ReachableCount, result.Summary.FailedCount)
}
