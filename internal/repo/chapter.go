package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/webcomics/internal/domain"
)

// ChapterRepo defines the persistence operations for Chapters.
type ChapterRepo interface {
	// Create inserts a chapter. Returns domain.ErrConflict when another
	// chapter of the tenant already uses the ordering.
	Create(ctx context.Context, c domain.Chapter) (domain.Chapter, error)

	// Update overwrites a chapter's title and ordering.
	Update(ctx context.Context, c domain.Chapter) (domain.Chapter, error)

	// Delete removes a chapter by ID, scoped to the tenant.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// List returns every chapter of the tenant ordered by ordering.
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.Chapter, error)
}

// pgChapterRepo is the Postgres implementation of ChapterRepo.
type pgChapterRepo struct {
	db db
}

// NewChapterRepo constructs a ChapterRepo backed by the provided db connection.
func NewChapterRepo(db db) ChapterRepo {
	return &pgChapterRepo{db: db}
}

const chapterColumns = `id, tenant_id, title, ordering, created_at, updated_at`

func (r *pgChapterRepo) Create(ctx context.Context, c domain.Chapter) (domain.Chapter, error) {
	const q = `
		INSERT INTO chapters (tenant_id, title, ordering)
		VALUES (@tenant_id, @title, @ordering)
		RETURNING ` + chapterColumns

	args := pgx.NamedArgs{"tenant_id": c.TenantID, "title": c.Title, "ordering": c.Ordering}
	result, err := scanChapter(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Chapter{}, fmt.Errorf("repo.ChapterRepo.Create: %w", mapError(err))
	}
	return result, nil
}

func (r *pgChapterRepo) Update(ctx context.Context, c domain.Chapter) (domain.Chapter, error) {
	const q = `
		UPDATE chapters
		SET title      = @title,
		    ordering   = @ordering,
		    updated_at = now()
		WHERE id = @id AND tenant_id = @tenant_id
		RETURNING ` + chapterColumns

	args := pgx.NamedArgs{"id": c.ID, "tenant_id": c.TenantID, "title": c.Title, "ordering": c.Ordering}
	result, err := scanChapter(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Chapter{}, fmt.Errorf("repo.ChapterRepo.Update: %w", mapError(err))
	}
	return result, nil
}

func (r *pgChapterRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM chapters WHERE id = @id AND tenant_id = @tenant_id`,
		pgx.NamedArgs{"id": id, "tenant_id": tenantID})
	if err != nil {
		return fmt.Errorf("repo.ChapterRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.ChapterRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgChapterRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Chapter, error) {
	q := `SELECT ` + chapterColumns + ` FROM chapters WHERE tenant_id = @tenant_id ORDER BY ordering`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"tenant_id": tenantID})
	if err != nil {
		return nil, fmt.Errorf("repo.ChapterRepo.List: %w", err)
	}
	defer rows.Close()

	chapters := []domain.Chapter{}
	for rows.Next() {
		c, err := scanChapter(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ChapterRepo.List: scan: %w", err)
		}
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ChapterRepo.List: rows: %w", err)
	}
	return chapters, nil
}

// scanChapter maps a single database row into a domain.Chapter.
func scanChapter(s scanner) (domain.Chapter, error) {
	var (
		c            domain.Chapter
		id, tenantID pgtype.UUID
	)
	if err := s.Scan(&id, &tenantID, &c.Title, &c.Ordering, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return domain.Chapter{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	c.TenantID = uuid.UUID(tenantID.Bytes)
	return c, nil
}
