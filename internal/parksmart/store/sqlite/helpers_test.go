package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	dbpkg "github.com/parksmart-iot/parksmart/server/internal/db"

	_ "modernc.org/sqlite"
)

// openTestDB opens a migrated database in a per-test temp dir and wires a
// write worker, both torn down with the test.
func openTestDB(t *testing.T) (*sql.DB, *dbpkg.Worker) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	conn, err := dbpkg.Open(context.Background(), dbpkg.Config{Path: path, Env: "dev"})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	writer := dbpkg.NewWorker(conn)
	t.Cleanup(func() {
		writer.Close()
		_ = conn.Close()
	})
	return conn, writer
}
