// Package testutil holds the Postgres scaffolding for integration tests of
// the webcomic schema: tenants with their alias and index domains, pages,
// chapters, tag types, tags, ads and snippets.
//
// Everything here reads TEST_DATABASE_URL and skips the calling test when it
// is unset, so unit tests never need a database.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" for database/sql
	"github.com/pressly/goose/v3"

	"github.com/pkordes/webcomics/migrations"
)

// DSNEnv names the variable holding the integration database URL.
const DSNEnv = "TEST_DATABASE_URL"

// Tables lists every table the migrations create, parents first.
var Tables = []string{
	"tenants", "alias_domains", "index_domains", "ads", "tag_types", "tags",
	"pages", "page_tags", "chapters", "snippets",
}

func dsn(t *testing.T) string {
	t.Helper()
	v := os.Getenv(DSNEnv)
	if v == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return v
}

// NewPool returns a pinged pool closed when the test finishes.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	pool, err := pgxpool.New(context.Background(), dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

// NewTx opens a transaction that is rolled back when the test finishes.
// Repos built on it see only the test's own rows, and their own Begin calls
// become savepoints.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// NewSQLDB returns a database/sql handle on the pgx driver, for goose.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("pgx", dsn(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewProvider returns a goose provider over the embedded migrations.
func NewProvider(db *sql.DB) (*goose.Provider, error) {
	return goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
}

// Migrate applies pending migrations to the database at dsn. It is meant for
// TestMain, which has no *testing.T; a blank dsn is a no-op.
func Migrate(ctx context.Context, dsn string) error {
	if dsn == "" {
		return nil
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("testutil.Migrate: open: %w", err)
	}
	defer db.Close()

	provider, err := NewProvider(db)
	if err != nil {
		return fmt.Errorf("testutil.Migrate: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("testutil.Migrate: up: %w", err)
	}
	return nil
}

// PurgeTenant removes a committed tenant and everything it owns. Tests that
// write through the pool instead of NewTx register it with t.Cleanup.
func PurgeTenant(ctx context.Context, pool *pgxpool.Pool, tenantID uuid.UUID) {
	// pages and ads restrict tenant deletion; the rest cascades.
	for _, q := range []string{
		`DELETE FROM pages WHERE tenant_id = $1`,
		`DELETE FROM ads WHERE tenant_id = $1`,
		`DELETE FROM tenants WHERE id = $1`,
	} {
		_, _ = pool.Exec(ctx, q, tenantID)
	}
}
