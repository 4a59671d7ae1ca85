package commands

import (
	"errors"
	"fmt"
	"ll-analytics/internal/components/telemetry"
	"ll-analytics/internal/scrapers/learnedleague"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var trackerSeason *int

func init() {
	trackerSeason = trackerCmd.Flags().Int("season", 0, "Only list rundles of this season, defaults to the configured season.")
	rootCmd.AddCommand(trackerCmd)
}

var errTrackerLayout = errors.New("the tracker page did not list any players")

func printTracked(players []learnedleague.TrackedPlayer) {
	t := newTable()
	t.AppendHeader(table.Row{"Player", "Rundle", "LL id"})
	for _, p := range players {
		id := ""
		if p.LLID != nil {
			id = fmt.Sprint(*p.LLID)
		}
		t.AppendRow(table.Row{p.Username, p.Rundle, id})
	}
	t.Render()
}

var trackerCmd = &cobra.Command{
	Use:   "tracker [--season <n>]",
	Short: "Prints the players followed on the account's tracker page.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		season := *trackerSeason
		if season == 0 {
			season = cfg.Season
		}

		client, err := cfg.newClient(telemetry.NewSlogAPI())
		if err != nil {
			return err
		}
		err = client.Login(cmd.Context())
		if err != nil {
			return err
		}
		defer client.Logout(cmd.Context())

		doc, err := client.Fetch(cmd.Context(), learnedleague.TrackerPath())
		if err != nil {
			return err
		}
		players, ok := learnedleague.ParseTracker(doc, season)
		if !ok {
			return errTrackerLayout
		}
		printTracked(players)
		return nil
	},
}
