package store_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"

	"github.com/bobby-s-dev/trip-planner/internal/services"
	"github.com/bobby-s-dev/trip-planner/internal/store"
)

var _ services.RecordStore = (*store.PostgresStore)(nil)

// newTestPool connects to TEST_DATABASE_URL and applies migrations. The test
// is skipped when the variable is not set.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	sqlDB, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	defer sqlDB.Close()
	require.NoError(t, store.Migrate(context.Background(), sqlDB))

	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPostgresStore(t *testing.T) {
	pool := newTestPool(t)

	runStoreSuite(t, func(t *testing.T) recordStore {
		tx, err := pool.Begin(context.Background())
		require.NoError(t, err)
		t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
		return store.NewPostgresStore(tx)
	})
}
