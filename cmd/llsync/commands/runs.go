package commands

import (
	"ll-analytics/services/leaguesync"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	runsLimit  *int
	runsErrors *bool
)

func init() {
	runsLimit = runsCmd.Flags().Int("limit", 10, "How many runs to list.")
	runsErrors = runsCmd.Flags().Bool("errors", false, "Also print the errors of every listed run.")
	rootCmd.AddCommand(runsCmd)
}

func printRuns(runs []leaguesync.SavedRun, withErrors bool) {
	t := newTable()
	t.AppendHeader(table.Row{"Run", "Season", "Rundle", "Started", "Took", "Written", "Errors"})
	for _, run := range runs {
		written := 0
		for _, count := range run.Counts {
			written += count
		}
		started := time.Unix(run.StartedAt, 0)
		t.AppendRow(table.Row{
			run.ID,
			run.SeasonNumber,
			run.Rundle,
			started.Format(time.DateTime),
			time.Unix(run.FinishedAt, 0).Sub(started),
			written,
			len(run.Errors),
		})
	}
	t.Render()

	if !withErrors {
		return
	}
	for _, run := range runs {
		if len(run.Errors) > 0 {
			printErrors(run.Errors)
		}
	}
}

var runsCmd = &cobra.Command{
	Use:   "runs [--limit <n>] [--errors]",
	Short: "Lists previous runs, most recent first.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		database, err := cfg.openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		runs, err := leaguesync.ListRuns(cmd.Context(), database, *runsLimit)
		if err != nil {
			return err
		}
		printRuns(runs, *runsErrors)
		return nil
	},
}
