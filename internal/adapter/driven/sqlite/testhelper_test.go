package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

// memoryDSN names a shared-cache in-memory database per test so writer and
// reader pools see the same data while parallel tests stay isolated.
func memoryDSN(t *testing.T) string {
	return fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)",
		url.PathEscape(t.Name()),
	)
}

func openTestPool(t *testing.T, dsn string, maxConns int) *sql.DB {
	t.Helper()

	pool, err := sql.Open("sqlite", dsn)
	require.NoError(t, err, "open test pool")
	pool.SetMaxOpenConns(maxConns)
	require.NoError(t, pool.PingContext(context.Background()), "ping test pool")

	return pool
}

// setupTestDB returns a migrated in-memory DB with the same single-writer,
// multi-reader split that NewDB uses for files.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := memoryDSN(t)
	writer := openTestPool(t, dsn, 1)
	reader := openTestPool(t, dsn, 4)
	db := &DB{Writer: writer, Reader: reader, path: dsn}
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer), "run migrations")

	return db
}
