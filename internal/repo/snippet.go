package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/webcomics/internal/domain"
)

// SnippetRepo defines the persistence operations for injected snippets.
type SnippetRepo interface {
	// Create inserts a snippet. A nil TenantID makes it global.
	Create(ctx context.Context, s domain.Snippet) (domain.Snippet, error)

	// Update overwrites a snippet's location, code and testing flag.
	Update(ctx context.Context, s domain.Snippet) (domain.Snippet, error)

	// Delete removes a snippet and returns the deleted row.
	Delete(ctx context.Context, id uuid.UUID) (domain.Snippet, error)

	// GetByID retrieves a snippet.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Snippet, error)

	// ListForTenant returns the tenant's snippets plus the global ones with the
	// given testing flag, oldest first.
	ListForTenant(ctx context.Context, tenantID uuid.UUID, testing bool) ([]domain.Snippet, error)
}

// pgSnippetRepo is the Postgres implementation of SnippetRepo.
type pgSnippetRepo struct {
	db db
}

// NewSnippetRepo constructs a SnippetRepo backed by the provided db connection.
func NewSnippetRepo(db db) SnippetRepo {
	return &pgSnippetRepo{db: db}
}

const snippetColumns = `id, tenant_id, location, code, testing, created_at`

func (r *pgSnippetRepo) Create(ctx context.Context, s domain.Snippet) (domain.Snippet, error) {
	const q = `
		INSERT INTO snippets (tenant_id, location, code, testing)
		VALUES (@tenant_id, @location, @code, @testing)
		RETURNING ` + snippetColumns

	args := pgx.NamedArgs{
		"tenant_id": s.TenantID, // nil becomes NULL
		"location":  string(s.Location),
		"code":      s.Code,
		"testing":   s.Testing,
	}
	result, err := scanSnippet(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Snippet{}, fmt.Errorf("repo.SnippetRepo.Create: %w", mapError(err))
	}
	return result, nil
}

func (r *pgSnippetRepo) Update(ctx context.Context, s domain.Snippet) (domain.Snippet, error) {
	const q = `
		UPDATE snippets
		SET location = @location,
		    code     = @code,
		    testing  = @testing
		WHERE id = @id
		RETURNING ` + snippetColumns

	args := pgx.NamedArgs{
		"id":       s.ID,
		"location": string(s.Location),
		"code":     s.Code,
		"testing":  s.Testing,
	}
	result, err := scanSnippet(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Snippet{}, fmt.Errorf("repo.SnippetRepo.Update: %w", mapError(err))
	}
	return result, nil
}

func (r *pgSnippetRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Snippet, error) {
	q := `DELETE FROM snippets WHERE id = @id RETURNING ` + snippetColumns

	result, err := scanSnippet(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Snippet{}, fmt.Errorf("repo.SnippetRepo.Delete: %w", mapError(err))
	}
	return result, nil
}

func (r *pgSnippetRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Snippet, error) {
	q := `SELECT ` + snippetColumns + ` FROM snippets WHERE id = @id`

	result, err := scanSnippet(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Snippet{}, fmt.Errorf("repo.SnippetRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

func (r *pgSnippetRepo) ListForTenant(ctx context.Context, tenantID uuid.UUID, testing bool) ([]domain.Snippet, error) {
	q := `
		SELECT ` + snippetColumns + `
		FROM snippets
		WHERE (tenant_id = @tenant_id OR tenant_id IS NULL) AND testing = @testing
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"tenant_id": tenantID, "testing": testing})
	if err != nil {
		return nil, fmt.Errorf("repo.SnippetRepo.ListForTenant: %w", err)
	}
	defer rows.Close()

	snippets := []domain.Snippet{}
	for rows.Next() {
		s, err := scanSnippet(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.SnippetRepo.ListForTenant: scan: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.SnippetRepo.ListForTenant: rows: %w", err)
	}
	return snippets, nil
}

// scanSnippet maps a single database row into a domain.Snippet.
func scanSnippet(s scanner) (domain.Snippet, error) {
	var (
		sn           domain.Snippet
		id, tenantID pgtype.UUID
		location     string
	)
	if err := s.Scan(&id, &tenantID, &location, &sn.Code, &sn.Testing, &sn.CreatedAt); err != nil {
		return domain.Snippet{}, err
	}
	sn.ID = uuid.UUID(id.Bytes)
	sn.TenantID = nullableUUID(tenantID)
	sn.Location = domain.SnippetLocation(location)
	return sn, nil
}
