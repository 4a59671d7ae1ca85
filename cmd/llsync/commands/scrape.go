package commands

import (
	"context"
	"errors"
	"fmt"
	"ll-analytics/internal/components/chrono"
	"ll-analytics/internal/components/telemetry"
	"ll-analytics/internal/scrapers/learnedleague"
	"ll-analytics/services/leaguesync"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
)

type scrapeFlags struct {
	season  *int
	rundle  *string
	lastDay *int
	skip    map[leaguesync.Stage]*bool
}

func addScrapeFlags(cmd *cobra.Command) scrapeFlags {
	flags := scrapeFlags{
		season:  cmd.Flags().Int("season", 0, "The season number, defaults to the configured season."),
		rundle:  cmd.Flags().String("rundle", "", "The rundle, ex. C_Skyline, defaults to the configured rundle."),
		lastDay: cmd.Flags().Int("last-day", 0, "The last match day to read, 0 reads the whole season."),
		skip:    map[leaguesync.Stage]*bool{},
	}
	for _, stage := range leaguesync.StageOrder {
		name := fmt.Sprintf("skip-%s", stageFlagName(stage))
		flags.skip[stage] = cmd.Flags().Bool(name, false, fmt.Sprintf("Skip the %s stage.", stage))
	}
	return flags
}

// stageFlagName turns match_details into match-details.
func stageFlagName(stage leaguesync.Stage) string {
	return strings.ReplaceAll(string(stage), "_", "-")
}

func (f scrapeFlags) request(cfg Config) (leaguesync.Request, error) {
	req := leaguesync.Request{
		Season:  *f.season,
		Rundle:  *f.rundle,
		LastDay: *f.lastDay,
	}
	if req.Season == 0 {
		req.Season = cfg.Season
	}
	if req.Rundle == "" {
		req.Rundle = cfg.Rundle
	}
	if req.Season <= 0 || req.Rundle == "" {
		return leaguesync.Request{}, fmt.Errorf("a season and a rundle are required, pass --season and --rundle or set them in the config")
	}

	var skipped []leaguesync.Stage
	for _, stage := range leaguesync.StageOrder {
		if *f.skip[stage] {
			skipped = append(skipped, stage)
		}
	}
	if len(skipped) > 0 {
		req.Stages = leaguesync.WithoutStages(skipped...)
	}
	return req, nil
}

var scrapeOpts scrapeFlags

func init() {
	scrapeOpts = addScrapeFlags(scrapeCmd)
	rootCmd.AddCommand(scrapeCmd)
}

// runScrape performs one run and prints its summary. Only a failed login is
// returned as an error, everything else is in the printed result.
func runScrape(ctx context.Context, cfg Config, req leaguesync.Request) error {
	tel := telemetry.NewSlogAPI()

	database, err := cfg.openDB()
	if err != nil {
		return err
	}
	defer database.Close()

	client, err := cfg.newClient(tel)
	if err != nil {
		return err
	}
	defer func() {
		err := client.Logout(context.WithoutCancel(ctx))
		if err != nil {
			slog.Debug("logout failed", "err", err)
		}
	}()

	clock, err := chrono.NewStandardImpl("Local")
	if err != nil {
		return err
	}
	syncer := leaguesync.NewSyncer(client, database, clock, tel)

	slog.Info("scraping", "season", req.Season, "rundle", req.Rundle, "username", cfg.Username)
	result, err := syncer.ScrapeFull(ctx, req)
	if errors.Is(err, learnedleague.ErrAuthFailed) {
		return err
	}
	printResult(result)
	if err != nil {
		slog.Warn("scrape interrupted", "err", err)
	}
	return nil
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--season <n>] [--rundle <name>] [--skip-<stage>...]",
	Short: "Synchronizes one season and rundle into the database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		req, err := scrapeOpts.request(cfg)
		if err != nil {
			return err
		}
		return runScrape(cmd.Context(), cfg, req)
	},
}
