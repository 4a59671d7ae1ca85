package main

import (
	"flag"
	"fmt"
	"ll-analytics/internal/db"
	"ll-analytics/pkg/migrations"
	"log/slog"
	"os"
)

const sampleConfig = `{
  username: "",
  password: "",
  base_url: "https://learnedleague.com",
  season: 107,
  rundle: "C_Skyline",
  database: {
    file: "<dev_state>/ll_analytics.db",
  },
}
`

func create(recreate bool) error {
	_, err := os.Stat("go.mod")
	if os.IsNotExist(err) {
		return fmt.Errorf("the dev environment must be created in the repository root (the same directory as the 'go.mod' file)")
	}

	if recreate {
		err = os.RemoveAll("dev/.state")
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	err = os.MkdirAll("dev/.state", 0777)
	if err != nil {
		return err
	}

	out, err := migrations.OpenAndMigrateDB(db.Schema, "dev/.state/ll_analytics.db")
	if err != nil {
		return err
	}
	out.Close()

	_, err = os.Stat("config.json5")
	if os.IsNotExist(err) {
		err = os.WriteFile("config.json5", []byte(sampleConfig), 0600)
		if err != nil {
			return err
		}
		slog.Info("wrote sample config, fill in credentials in config.local.json5", "path", "config.json5")
	}

	return nil
}

func main() {
	recreate := flag.Bool("recreate", false, "recreate the dev environment from scratch")
	flag.Parse()

	err := create(*recreate)
	if err != nil {
		slog.Error("failed to create dev environment", "err", err.Error())
		os.Exit(1)
	}

	slog.Info("dev environment created sucessfully!")
}
