package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/webcomics/internal/domain"
)

// AdRepo defines the persistence operations for Ads.
type AdRepo interface {
	// Create inserts an ad.
	Create(ctx context.Context, a domain.Ad) (domain.Ad, error)

	// Update overwrites an ad's kind, image, target URL and active flag.
	Update(ctx context.Context, a domain.Ad) (domain.Ad, error)

	// Delete removes an ad, scoped to the tenant. Tag and tag type overrides
	// pointing at it are cleared by the schema.
	Delete(ctx context.Context, tenantID, id uuid.UUID) error

	// GetByID retrieves an ad regardless of its active flag.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Ad, error)

	// ListActive returns the active ads of one (tenant, kind) pool.
	ListActive(ctx context.Context, tenantID uuid.UUID, kind domain.AdKind) ([]domain.Ad, error)
}

// pgAdRepo is the Postgres implementation of AdRepo.
type pgAdRepo struct {
	db db
}

// NewAdRepo constructs an AdRepo backed by the provided db connection.
func NewAdRepo(db db) AdRepo {
	return &pgAdRepo{db: db}
}

const adColumns = `id, tenant_id, kind, image, url, active, created_at`

func (r *pgAdRepo) Create(ctx context.Context, a domain.Ad) (domain.Ad, error) {
	const q = `
		INSERT INTO ads (tenant_id, kind, image, url, active)
		VALUES (@tenant_id, @kind, @image, @url, @active)
		RETURNING ` + adColumns

	result, err := scanAd(r.db.QueryRow(ctx, q, adArgs(a)))
	if err != nil {
		return domain.Ad{}, fmt.Errorf("repo.AdRepo.Create: %w", mapError(err))
	}
	return result, nil
}

func (r *pgAdRepo) Update(ctx context.Context, a domain.Ad) (domain.Ad, error) {
	const q = `
		UPDATE ads
		SET kind   = @kind,
		    image  = @image,
		    url    = @url,
		    active = @active
		WHERE id = @id AND tenant_id = @tenant_id
		RETURNING ` + adColumns

	args := adArgs(a)
	args["id"] = a.ID
	result, err := scanAd(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Ad{}, fmt.Errorf("repo.AdRepo.Update: %w", mapError(err))
	}
	return result, nil
}

func (r *pgAdRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ads WHERE id = @id AND tenant_id = @tenant_id`,
		pgx.NamedArgs{"id": id, "tenant_id": tenantID})
	if err != nil {
		return fmt.Errorf("repo.AdRepo.Delete: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.AdRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgAdRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Ad, error) {
	q := `SELECT ` + adColumns + ` FROM ads WHERE id = @id`

	result, err := scanAd(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Ad{}, fmt.Errorf("repo.AdRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

func (r *pgAdRepo) ListActive(ctx context.Context, tenantID uuid.UUID, kind domain.AdKind) ([]domain.Ad, error) {
	q := `
		SELECT ` + adColumns + `
		FROM ads
		WHERE tenant_id = @tenant_id AND kind = @kind AND active
		ORDER BY created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"tenant_id": tenantID, "kind": string(kind)})
	if err != nil {
		return nil, fmt.Errorf("repo.AdRepo.ListActive: %w", err)
	}
	defer rows.Close()

	ads := []domain.Ad{}
	for rows.Next() {
		a, err := scanAd(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.AdRepo.ListActive: scan: %w", err)
		}
		ads = append(ads, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.AdRepo.ListActive: rows: %w", err)
	}
	return ads, nil
}

func adArgs(a domain.Ad) pgx.NamedArgs {
	return pgx.NamedArgs{
		"tenant_id": a.TenantID,
		"kind":      string(a.Kind),
		"image":     a.Image,
		"url":       a.URL,
		"active":    a.Active,
	}
}

// scanAd maps a single database row into a domain.Ad.
func scanAd(s scanner) (domain.Ad, error) {
	var (
		a            domain.Ad
		id, tenantID pgtype.UUID
		kind         string
	)
	if err := s.Scan(&id, &tenantID, &kind, &a.Image, &a.URL, &a.Active, &a.CreatedAt); err != nil {
		return domain.Ad{}, err
	}
	a.ID = uuid.UUID(id.Bytes)
	a.TenantID = uuid.UUID(tenantID.Bytes)
	a.Kind = domain.AdKind(kind)
	return a, nil
}
