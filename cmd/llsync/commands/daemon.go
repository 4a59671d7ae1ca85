package commands

import (
	"ll-analytics/internal/components/chrono"
	"ll-analytics/internal/components/telemetry"
	libtelemetry "ll-analytics/lib/telemetry"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var (
	daemonOpts  scrapeFlags
	daemonCron  *string
	daemonNow   *bool
	perfSamples = 30 * time.Second
)

func init() {
	daemonOpts = addScrapeFlags(daemonCmd)
	daemonCron = daemonCmd.Flags().String("cron", "", "The schedule in cron syntax, defaults to the configured one.")
	daemonNow = daemonCmd.Flags().Bool("now", false, "Also run once on startup.")
	rootCmd.AddCommand(daemonCmd)
}

var daemonCmd = &cobra.Command{
	Use:   "daemon [--cron <spec>] [--now] [scrape flags]",
	Short: "Runs scrape on a schedule until interrupted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		req, err := daemonOpts.request(cfg)
		if err != nil {
			return err
		}
		spec := *daemonCron
		if spec == "" {
			spec = cfg.Cron
		}

		clock, err := chrono.NewStandardImpl("Local")
		if err != nil {
			return err
		}
		cron := chrono.NewStandardCron(clock, telemetry.NewSlogAPI())

		scrape := func() {
			err := runScrape(ctx, cfg, req)
			if err != nil {
				slog.Error("scheduled scrape failed", "err", err)
			}
		}
		err = cron.Cron(spec, scrape)
		if err != nil {
			return err
		}

		libtelemetry.InstrumentPerfStats(ctx, perfSamples)
		if *daemonNow {
			scrape()
		}
		slog.Info("daemon started", "cron", spec, "season", req.Season, "rundle", req.Rundle)
		cron.Run(ctx)
		slog.Info("daemon stopped")
		return nil
	},
}
