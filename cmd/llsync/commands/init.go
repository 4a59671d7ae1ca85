package commands

import (
	"ll-analytics/internal/db"
	"log/slog"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Creates the database and applies the schema, it is safe to run again.",
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

		categories, err := db.New(database).ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("database ready", "file", cfg.Database.File, "url", cfg.Database.Url, "categories", len(categories))
		return nil
	},
}
