package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/webcomics/testutil"
)

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `SELECT to_regclass('public.' || $1) IS NOT NULL`
	var ok bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&ok), table)
	return ok
}

func indexExists(t *testing.T, db *sql.DB, index string) bool {
	t.Helper()
	const q = `SELECT EXISTS (SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = $1)`
	var ok bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, index).Scan(&ok), index)
	return ok
}

// TestMigrations applies every migration from an empty schema, checks the
// tables and the case-insensitive title indexes, then rolls all the way back.
// Other packages' TestMain may have migrated the shared database already, so
// it starts from version 0.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	provider, err := testutil.NewProvider(db)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "reset")

	results, err := provider.Up(ctx)
	require.NoError(t, err, "up")
	assert.NotEmpty(t, results)
	for _, table := range testutil.Tables {
		assert.True(t, tableExists(t, db, table), "%s after up", table)
	}
	for _, index := range []string{"tag_types_tenant_title_key", "tags_type_title_key"} {
		assert.True(t, indexExists(t, db, index), "%s after up", index)
	}

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "down")
	for _, table := range testutil.Tables {
		assert.False(t, tableExists(t, db, table), "%s after down", table)
	}

	// Leave the schema migrated for packages that run after this one.
	_, err = provider.Up(ctx)
	require.NoError(t, err, "re-apply")
}
