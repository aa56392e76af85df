package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/webcomics/internal/domain"
)

// PageRepo defines the persistence operations for Pages and the page_tags
// join table. Every query that takes asOf only considers pages whose
// posted_at is not after asOf (the live subset).
type PageRepo interface {
	// Create inserts a new page linked to tagIDs in one transaction. Returns
	// domain.ErrConflict when the slug or ordering is already used within the
	// tenant, or when a tag no longer exists; nothing is written then.
	Create(ctx context.Context, p domain.Page, tagIDs []uuid.UUID) (domain.Page, error)

	// Update overwrites the mutable fields of a page, scoped to its tenant,
	// and replaces its tags with tagIDs in the same transaction.
	Update(ctx context.Context, p domain.Page, tagIDs []uuid.UUID) (domain.Page, error)

	// Delete removes a page and returns the deleted row.
	Delete(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error)

	// GetByID retrieves a page regardless of liveness, scoped to the tenant.
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error)

	// GetBySlug retrieves a page by case-insensitive slug, preferring an
	// exact-case match. Liveness is not checked here.
	GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (domain.Page, error)

	// First returns the live page with the lowest ordering.
	First(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)

	// Last returns the live page with the highest ordering.
	Last(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)

	// Before returns the live page with the greatest ordering strictly below ordering.
	Before(ctx context.Context, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error)

	// After returns the live page with the least ordering strictly above ordering.
	After(ctx context.Context, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error)

	// Random returns a uniformly chosen live page.
	Random(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)

	// ListLive returns live pages ordered by ordering; newestFirst reverses
	// the order. limit <= 0 returns every live page.
	ListLive(ctx context.Context, tenantID uuid.UUID, asOf time.Time, limit int, newestFirst bool) ([]domain.Page, error)

	// ListLiveByTag returns live pages carrying tagID, ordered by ordering.
	ListLiveByTag(ctx context.Context, tagID uuid.UUID, asOf time.Time) ([]domain.Page, error)

	// OrderingBounds returns the orderings of the nearest pages (live or not)
	// strictly below and above ordering; nil when there is none.
	OrderingBounds(ctx context.Context, tenantID uuid.UUID, ordering float64) (below, above *float64, err error)

	// MaxOrdering returns the highest ordering in the tenant, nil when empty.
	MaxOrdering(ctx context.Context, tenantID uuid.UUID) (*float64, error)

	// ListTags returns the tags of a page joined with their types, ordered by
	// type title then tag title.
	ListTags(ctx context.Context, pageID uuid.UUID) ([]domain.ResolvedTag, error)
}

// pgPageRepo is the Postgres implementation of PageRepo.
type pgPageRepo struct {
	db db
}

// NewPageRepo constructs a PageRepo backed by the provided db connection.
func NewPageRepo(db db) PageRepo {
	return &pgPageRepo{db: db}
}

const pageColumns = `id, tenant_id, slug, title, ordering, chronological_ordering,
	posted_at, post, transcript, image, alt_text, created_at, updated_at`

func (r *pgPageRepo) Create(ctx context.Context, p domain.Page, tagIDs []uuid.UUID) (domain.Page, error) {
	const q = `
		INSERT INTO pages (tenant_id, slug, title, ordering, chronological_ordering,
			posted_at, post, transcript, image, alt_text)
		VALUES (@tenant_id, @slug, @title, @ordering, @chronological_ordering,
			@posted_at, @post, @transcript, @image, @alt_text)
		RETURNING ` + pageColumns

	result, err := r.write(ctx, q, pageArgs(p), tagIDs)
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPageRepo) Update(ctx context.Context, p domain.Page, tagIDs []uuid.UUID) (domain.Page, error) {
	const q = `
		UPDATE pages
		SET slug                   = @slug,
		    title                  = @title,
		    ordering               = @ordering,
		    chronological_ordering = @chronological_ordering,
		    posted_at              = @posted_at,
		    post                   = @post,
		    transcript             = @transcript,
		    image                  = @image,
		    alt_text               = @alt_text,
		    updated_at             = now()
		WHERE id = @id AND tenant_id = @tenant_id
		RETURNING ` + pageColumns

	args := pageArgs(p)
	args["id"] = p.ID
	result, err := r.write(ctx, q, args, tagIDs)
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.Update: %w", err)
	}
	return result, nil
}

// write runs a page INSERT or UPDATE and replaces the page's tag links, all
// in one transaction.
func (r *pgPageRepo) write(ctx context.Context, q string, args pgx.NamedArgs, tagIDs []uuid.UUID) (domain.Page, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Page{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	page, err := scanPage(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Page{}, mapError(err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM page_tags WHERE page_id = @page_id`, pgx.NamedArgs{"page_id": page.ID}); err != nil {
		return domain.Page{}, fmt.Errorf("clear tags: %w", err)
	}
	if len(tagIDs) > 0 {
		const link = `
			INSERT INTO page_tags (page_id, tag_id)
			SELECT @page_id, unnest(@tag_ids::uuid[])
			ON CONFLICT DO NOTHING`
		if _, err := tx.Exec(ctx, link, pgx.NamedArgs{"page_id": page.ID, "tag_ids": tagIDs}); err != nil {
			return domain.Page{}, fmt.Errorf("link tags: %w", mapError(err))
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Page{}, fmt.Errorf("commit: %w", err)
	}
	return page, nil
}

func (r *pgPageRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error) {
	q := `DELETE FROM pages WHERE id = @id AND tenant_id = @tenant_id RETURNING ` + pageColumns

	result, err := scanPage(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "tenant_id": tenantID}))
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.Delete: %w", mapError(err))
	}
	return result, nil
}

func (r *pgPageRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error) {
	q := `SELECT ` + pageColumns + ` FROM pages WHERE id = @id AND tenant_id = @tenant_id`

	result, err := scanPage(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id, "tenant_id": tenantID}))
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

func (r *pgPageRepo) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (domain.Page, error) {
	q := `
		SELECT ` + pageColumns + `
		FROM pages
		WHERE tenant_id = @tenant_id AND lower(slug) = lower(@slug)
		ORDER BY slug = @slug DESC, slug
		LIMIT 1`

	result, err := scanPage(r.db.QueryRow(ctx, q, pgx.NamedArgs{"tenant_id": tenantID, "slug": slug}))
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.GetBySlug: %w", mapError(err))
	}
	return result, nil
}

func (r *pgPageRepo) First(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error) {
	result, err := r.edge(ctx, `ORDER BY ordering ASC`, "", tenantID, 0, asOf)
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.First: %w", err)
	}
	return result, nil
}

func (r *pgPageRepo) Last(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error) {
	result, err := r.edge(ctx, `ORDER BY ordering DESC`, "", tenantID, 0, asOf)
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.Last: %w", err)
	}
	return result, nil
}

func (r *pgPageRepo) Before(ctx context.Context, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error) {
	result, err := r.edge(ctx, `ORDER BY ordering DESC`, `AND ordering < @ordering`, tenantID, ordering, asOf)
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.Before: %w", err)
	}
	return result, nil
}

func (r *pgPageRepo) After(ctx context.Context, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error) {
	result, err := r.edge(ctx, `ORDER BY ordering ASC`, `AND ordering > @ordering`, tenantID, ordering, asOf)
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.After: %w", err)
	}
	return result, nil
}

func (r *pgPageRepo) Random(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error) {
	result, err := r.edge(ctx, `ORDER BY random()`, "", tenantID, 0, asOf)
	if err != nil {
		return domain.Page{}, fmt.Errorf("repo.PageRepo.Random: %w", err)
	}
	return result, nil
}

// edge runs the single-row live page query shared by the navigation lookups.
// orderBy and filter are fixed SQL fragments chosen by the callers above,
// never user input.
func (r *pgPageRepo) edge(ctx context.Context, orderBy, filter string, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error) {
	q := `
		SELECT ` + pageColumns + `
		FROM pages
		WHERE tenant_id = @tenant_id AND posted_at <= @as_of ` + filter + `
		` + orderBy + `
		LIMIT 1`

	args := pgx.NamedArgs{"tenant_id": tenantID, "as_of": asOf, "ordering": ordering}
	result, err := scanPage(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Page{}, mapError(err)
	}
	return result, nil
}

func (r *pgPageRepo) ListLive(ctx context.Context, tenantID uuid.UUID, asOf time.Time, limit int, newestFirst bool) ([]domain.Page, error) {
	direction := "ASC"
	if newestFirst {
		direction = "DESC"
	}
	q := `
		SELECT ` + pageColumns + `
		FROM pages
		WHERE tenant_id = @tenant_id AND posted_at <= @as_of
		ORDER BY ordering ` + direction + `
		LIMIT @limit`

	// LIMIT NULL means no limit in Postgres.
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"tenant_id": tenantID, "as_of": asOf, "limit": lim})
	if err != nil {
		return nil, fmt.Errorf("repo.PageRepo.ListLive: %w", err)
	}
	pages, err := collectPages(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.PageRepo.ListLive: %w", err)
	}
	return pages, nil
}

func (r *pgPageRepo) ListLiveByTag(ctx context.Context, tagID uuid.UUID, asOf time.Time) ([]domain.Page, error) {
	const q = `
		SELECT p.id, p.tenant_id, p.slug, p.title, p.ordering, p.chronological_ordering,
		       p.posted_at, p.post, p.transcript, p.image, p.alt_text, p.created_at, p.updated_at
		FROM pages p
		JOIN page_tags pt ON pt.page_id = p.id
		WHERE pt.tag_id = @tag_id AND p.posted_at <= @as_of
		ORDER BY p.ordering`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"tag_id": tagID, "as_of": asOf})
	if err != nil {
		return nil, fmt.Errorf("repo.PageRepo.ListLiveByTag: %w", err)
	}
	pages, err := collectPages(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.PageRepo.ListLiveByTag: %w", err)
	}
	return pages, nil
}

func (r *pgPageRepo) OrderingBounds(ctx context.Context, tenantID uuid.UUID, ordering float64) (*float64, *float64, error) {
	const q = `
		SELECT
			(SELECT max(ordering) FROM pages WHERE tenant_id = @tenant_id AND ordering < @ordering),
			(SELECT min(ordering) FROM pages WHERE tenant_id = @tenant_id AND ordering > @ordering)`

	var below, above pgtype.Float8
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"tenant_id": tenantID, "ordering": ordering}).Scan(&below, &above)
	if err != nil {
		return nil, nil, fmt.Errorf("repo.PageRepo.OrderingBounds: %w", err)
	}
	return nullableFloat(below), nullableFloat(above), nil
}

func (r *pgPageRepo) MaxOrdering(ctx context.Context, tenantID uuid.UUID) (*float64, error) {
	var highest pgtype.Float8
	err := r.db.QueryRow(ctx, `SELECT max(ordering) FROM pages WHERE tenant_id = @tenant_id`,
		pgx.NamedArgs{"tenant_id": tenantID}).Scan(&highest)
	if err != nil {
		return nil, fmt.Errorf("repo.PageRepo.MaxOrdering: %w", err)
	}
	return nullableFloat(highest), nil
}

func (r *pgPageRepo) ListTags(ctx context.Context, pageID uuid.UUID) ([]domain.ResolvedTag, error) {
	q := `
		SELECT ` + resolvedTagColumns + `
		FROM tags t
		JOIN tag_types tt ON tt.id = t.type_id
		JOIN page_tags pt ON pt.tag_id = t.id
		WHERE pt.page_id = @page_id
		ORDER BY tt.title, t.title`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"page_id": pageID})
	if err != nil {
		return nil, fmt.Errorf("repo.PageRepo.ListTags: %w", err)
	}
	tags, err := collectResolvedTags(rows)
	if err != nil {
		return nil, fmt.Errorf("repo.PageRepo.ListTags: %w", err)
	}
	return tags, nil
}

func pageArgs(p domain.Page) pgx.NamedArgs {
	return pgx.NamedArgs{
		"tenant_id":              p.TenantID,
		"slug":                   p.Slug,
		"title":                  p.Title,
		"ordering":               p.Ordering,
		"chronological_ordering": p.ChronologicalOrdering,
		"posted_at":              p.PostedAt,
		"post":                   p.Post,
		"transcript":             p.Transcript,
		"image":                  p.Image,
		"alt_text":               p.AltText,
	}
}

func collectPages(rows pgx.Rows) ([]domain.Page, error) {
	defer rows.Close()

	pages := []domain.Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return pages, nil
}

// scanPage maps a single database row into a domain.Page.
func scanPage(s scanner) (domain.Page, error) {
	var (
		p            domain.Page
		id, tenantID pgtype.UUID
	)
	err := s.Scan(&id, &tenantID, &p.Slug, &p.Title, &p.Ordering, &p.ChronologicalOrdering,
		&p.PostedAt, &p.Post, &p.Transcript, &p.Image, &p.AltText, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return domain.Page{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.TenantID = uuid.UUID(tenantID.Bytes)
	return p, nil
}

func nullableFloat(v pgtype.Float8) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
