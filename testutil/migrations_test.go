package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/car-rental/migrations"
	"github.com/pkordes/car-rental/testutil"
)

var tables = []string{"users", "cars", "bookings", "sessions"}

// TestMigrations applies the schema from scratch, checks its shape, rolls
// it back, and re-applies it so other packages sharing the database find
// the schema in place. Skipped without TEST_DATABASE_URL.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")
	t.Cleanup(func() { _, _ = provider.Up(context.Background()) })

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	results, err := provider.Up(ctx)
	require.NoError(t, err, "goose up")
	assert.NotEmpty(t, results)
	for _, table := range tables {
		assert.True(t, tableExists(t, db, table), "table %q after up", table)
	}

	t.Run("bookings may outlive their car", func(t *testing.T) {
		assert.False(t, hasForeignKey(t, db, "bookings"))
	})
	t.Run("sessions belong to users", func(t *testing.T) {
		assert.True(t, hasForeignKey(t, db, "sessions"))
	})
	t.Run("usernames are unique", func(t *testing.T) {
		_, err := db.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, role) VALUES
			('user-a', 'dup', 'x', 'customer')`)
		require.NoError(t, err)
		t.Cleanup(func() { _, _ = db.ExecContext(context.Background(), `DELETE FROM users WHERE id = 'user-a'`) })

		_, err = db.ExecContext(ctx, `INSERT INTO users (id, username, password_hash, role) VALUES
			('user-b', 'dup', 'x', 'customer')`)
		assert.Error(t, err)
	})

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")
	for _, table := range tables {
		assert.False(t, tableExists(t, db, table), "table %q after down", table)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}

func hasForeignKey(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.table_constraints
			WHERE table_schema = 'public' AND table_name = $1
			AND   constraint_type = 'FOREIGN KEY'
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}
