package commands

import (
	"database/sql"
	"errors"
	"fmt"
	"ll-analytics/internal/components/telemetry"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
	"ll-analytics/lib/configutil"
	configlibsql "ll-analytics/lib/configutil/libsql"
	"ll-analytics/lib/restyutil"
	"os"
	"time"
)

const (
	defaultDatabase = "<dev_state>/ll_analytics.db"
	defaultCron     = "0 6 * * *"
)

type Config struct {
	Username string `json:"username"`
	Password string `json:"password"`
	BaseUrl  string `json:"base_url"`
	// Delay and Timeout are in seconds.
	Delay   float64 `json:"delay"`
	Timeout float64 `json:"timeout"`
	// Season and Rundle are used when the flags are not given.
	Season   int                 `json:"season"`
	Rundle   string              `json:"rundle"`
	Database configlibsql.Struct `json:"database"`
	// DumpDir receives a dump of every request and response when set.
	DumpDir          string `json:"dump_dir"`
	CloudflareBypass bool   `json:"cloudflare_bypass"`
	// Cron is the daemon's schedule.
	Cron string `json:"cron"`
}

// applyEnv fills empty credentials from the environment.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if value, ok := lookup("LL_USERNAME"); ok && c.Username == "" {
		c.Username = value
	}
	if value, ok := lookup("LL_PASSWORD"); ok && c.Password == "" {
		c.Password = value
	}
}

func (c *Config) applyDefaults(dbOverride string) {
	if c.BaseUrl == "" {
		c.BaseUrl = learnedleague.DefaultBaseUrl
	}
	if c.Cron == "" {
		c.Cron = defaultCron
	}
	if dbOverride != "" {
		c.Database = configlibsql.Struct{File: dbOverride}
	}
	if c.Database.File == "" && c.Database.Url == "" {
		c.Database.File = defaultDatabase
	}
}

func seconds(value float64) time.Duration {
	return time.Duration(value * float64(time.Second))
}

// readConfig loads the config file, a missing file is fine when everything
// needed comes from the environment and flags.
func readConfig(path, dbOverride string) (Config, error) {
	cfg, err := configutil.ReadConfig[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg.applyEnv(os.LookupEnv)
	cfg.applyDefaults(dbOverride)
	return cfg, nil
}

func loadConfig() (Config, error) {
	return readConfig(*configPath, *dbPath)
}

func (c Config) openDB() (*sql.DB, error) {
	database, err := c.Database.OpenDB(db.Schema)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return database, nil
}

func (c Config) clientOptions() (learnedleague.ClientOptions, error) {
	if c.Username == "" || c.Password == "" {
		return learnedleague.ClientOptions{}, fmt.Errorf("credentials are missing, set them in the config or in LL_USERNAME and LL_PASSWORD")
	}
	opts := learnedleague.ClientOptions{
		BaseUrl:          c.BaseUrl,
		Username:         c.Username,
		Password:         c.Password,
		Delay:            seconds(c.Delay),
		Timeout:          seconds(c.Timeout),
		CloudflareBypass: c.CloudflareBypass,
	}
	if c.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(c.DumpDir)
		if err != nil {
			return learnedleague.ClientOptions{}, fmt.Errorf("dump dir: %w", err)
		}
		opts.InstrumentOutput = output
	}
	return opts, nil
}

func (c Config) newClient(tel telemetry.API) (*learnedleague.Client, error) {
	opts, err := c.clientOptions()
	if err != nil {
		return nil, err
	}
	return learnedleague.NewClient(opts, tel)
}
