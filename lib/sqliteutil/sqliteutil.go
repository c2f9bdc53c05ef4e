package sqliteutil

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite"
)

// OpenDB opens (creating if necessary) a sqlite database at the given path
// and applies the schema. Re-applying an existing schema is not an error.
func OpenDB(schema, path string) (*sql.DB, error) {
	// busy_timeout is a per-connection setting, so it goes in the dsn
	// where the driver applies it to every pooled connection; without it
	// concurrent write transactions fail immediately with SQLITE_BUSY
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	if strings.Contains(path, ":memory:") {
		// every pooled connection would otherwise see its own empty
		// in-memory database
		db.SetMaxOpenConns(1)
	} else {
		// see https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		_, err = db.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	_, err = db.Exec(schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		db.Close()
		return nil, err
	}
	return db, nil
}
