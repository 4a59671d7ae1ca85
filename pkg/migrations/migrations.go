package migrations

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

func wrapOpenDB(err error) error {
	return fmt.Errorf("open db: %w", err)
}

// OpenDB opens a local sqlite database, `path` may be `:memory:`.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, wrapOpenDB(err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, wrapOpenDB(err)
	}
	_, err = db.Exec("PRAGMA foreign_keys=ON")
	if err != nil {
		return nil, wrapOpenDB(err)
	}

	return db, nil
}

func wrapApply(err error) error {
	return fmt.Errorf("apply schema: %w", err)
}

// Apply runs a schema made only of idempotent statements
// (CREATE ... IF NOT EXISTS, INSERT OR IGNORE) against the db.
func Apply(db *sql.DB, schema string) error {
	_, err := db.Exec(schema)
	if err != nil {
		return wrapApply(err)
	}
	return nil
}

// OpenAndMigrateDB opens the sqlite database at `path` and applies `schema` to it.
func OpenAndMigrateDB(schema, path string) (*sql.DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	err = Apply(db, schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
