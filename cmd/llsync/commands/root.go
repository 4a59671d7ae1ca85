package commands

import (
	"context"
	"fmt"
	"ll-analytics/lib/telemetry"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	dbPath     *string
	verbose    *bool
)

var rootCmd = &cobra.Command{
	Use:   "llsync",
	Short: "llsync mirrors LearnedLeague standings, matches and answers into a local database.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)
	},
	SilenceUsage: true,
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The json5 config file, <name>.local.json5 overrides it.")
	dbPath = rootCmd.PersistentFlags().String("db", "", "A sqlite database to use instead of the configured one.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug messages.")
}

// ExecuteContext runs the cli, a returned error exits with status 1.
func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
