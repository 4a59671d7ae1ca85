package configlibsql

import (
	"database/sql"
	"fmt"
	devenv "ll-analytics/dev/env"
	"ll-analytics/pkg/migrations"
	"net/url"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// Struct is the database section of a config file. A local sqlite `file`
// is used unless a remote libsql `url` is given.
type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// OpenDB opens the configured database and applies `schema` to it.
func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("a path was not specified")
		}
		if config.File == ":memory:" {
			return migrations.OpenAndMigrateDB(schema, config.File)
		}
		dbpath, err := devenv.ResolvePath(config.File)
		if err != nil {
			return nil, err
		}
		return migrations.OpenAndMigrateDB(schema, dbpath)
	}

	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	db, err := sql.Open("libsql", config.Url+"?"+values.Encode())
	if err != nil {
		return nil, err
	}
	// keeps the same single-writer behavior as the local sqlite handle
	db.SetMaxOpenConns(1)
	err = migrations.Apply(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
