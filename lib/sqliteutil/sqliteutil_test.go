package sqliteutil

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const testSchema = `
CREATE TABLE entry (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    value TEXT NOT NULL
);
`

func TestOpenDBReappliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(testSchema, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = OpenDB(testSchema, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpenDBConcurrentWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := OpenDB(testSchema, path)
	require.NoError(t, err)
	defer db.Close()

	// without a busy timeout, contending write transactions would
	// surface SQLITE_BUSY instead of waiting their turn
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				tx, err := db.Begin()
				if err != nil {
					errs <- err
					return
				}
				_, err = tx.Exec("INSERT INTO entry (value) VALUES (?)", "v")
				if err != nil {
					tx.Rollback()
					errs <- err
					return
				}
				err = tx.Commit()
				if err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var count int
	require.NoError(t, db.QueryRow("SELECT count(*) FROM entry").Scan(&count))
	require.Equal(t, 40, count)
}
