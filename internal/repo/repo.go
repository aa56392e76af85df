// Package repo contains all database access logic for the webcomics service.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/webcomics/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup. Begin on a pgx.Tx opens a
// savepoint, so repos that need their own transaction still work under test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Postgres SQLSTATE codes the repos translate into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// conflictMessages maps constraint and unique index names from the
// migrations to the message shown to editors when a write collides with an
// existing row.
var conflictMessages = map[string]string{
	"tenants_domain_key":           "domain is already the primary domain of another comic",
	"tenants_slug_key":             "slug is already used by another comic",
	"alias_domains_domain_key":     "domain is already an alias",
	"index_domains_domain_key":     "domain is already an index domain",
	"tag_types_tenant_title_key":   "a tag type with this title already exists (titles ignore case)",
	"tags_type_title_key":          "a tag with this title already exists in this type (titles ignore case)",
	"pages_tenant_slug_key":        "slug is already used by another page",
	"pages_tenant_ordering_key":    "ordering is already used by another page",
	"chapters_tenant_ordering_key": "ordering is already used by another chapter",
}

// mapError translates driver errors into domain sentinels.
// pgx.ErrNoRows becomes domain.ErrNotFound; unique violations become
// domain.ErrConflict with a readable message; foreign key violations become
// domain.ErrConflict too, since they mean the row is still referenced or the
// referenced row is gone.
func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			msg, ok := conflictMessages[pgErr.ConstraintName]
			if !ok {
				msg = pgErr.ConstraintName
			}
			return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
		case foreignKeyViolation:
			return fmt.Errorf("%w: %s", domain.ErrConflict, pgErr.Detail)
		}
	}
	return err
}

// nullableUUID converts a scanned pgtype.UUID into *uuid.UUID.
func nullableUUID(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}
