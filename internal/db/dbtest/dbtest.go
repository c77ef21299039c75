// Package dbtest provides a PostgreSQL pool for repository tests.
//
// Tests using it are skipped unless TEST_DATABASE_URL is set. Packages share
// one database and truncate it, so run them with `go test -p 1 ./...`.
package dbtest

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/vasiliy-maslov/course-marketplace/internal/db"
)

const truncateAll = "TRUNCATE TABLE purchases, courses, users, admins RESTART IDENTITY CASCADE"

var (
	migrateOnce sync.Once
	migrateErr  error
)

// NewPool returns a pool on a freshly truncated, migrated database and
// closes it when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set, skipping repository test")
	}

	migrateOnce.Do(func() {
		migrateErr = db.Migrate(dsn, migrationsPath(), db.Up)
	})
	require.NoError(t, migrateErr, "failed to migrate test database")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, pool.Ping(ctx), "failed to ping test database")

	truncate(t, pool)
	t.Cleanup(func() {
		truncate(t, pool)
		pool.Close()
	})

	return pool
}

func truncate(tb testing.TB, pool *pgxpool.Pool) {
	tb.Helper()
	_, err := pool.Exec(context.Background(), truncateAll)
	require.NoError(tb, err, "failed to truncate tables")
}

func migrationsPath() string {
	_, filename, _, _ := runtime.Caller(0)
	// internal/db/dbtest -> repository root
	root := filepath.Dir(filepath.Dir(filepath.Dir(filepath.Dir(filename))))
	return filepath.Join(root, "migrations")
}
