package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/webcomics/internal/domain"
)

// domainLockKey is the pg_advisory_xact_lock key serializing every write that
// claims a domain name, so the three-way exclusivity check cannot race.
const domainLockKey int64 = 0x636f6d6963 // "comic"

// TenantRepo defines the persistence operations for tenants and the domain
// names that route to them.
type TenantRepo interface {
	// Create inserts a tenant. Returns domain.ErrConflict if the domain is
	// already a primary, alias or index domain, or the slug is taken.
	Create(ctx context.Context, t domain.Tenant) (domain.Tenant, error)

	// Update overwrites branding, routing and edge-cache fields.
	// The same domain exclusivity rules as Create apply.
	Update(ctx context.Context, t domain.Tenant) (domain.Tenant, error)

	// GetByID retrieves a tenant by primary key.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error)

	// GetByDomain retrieves the tenant whose primary domain equals host.
	// Returns domain.ErrNotFound when no tenant owns it.
	GetByDomain(ctx context.Context, host string) (domain.Tenant, error)

	// GetByAlias retrieves the tenant owning the alias domain host.
	// Returns domain.ErrNotFound when host is not an alias.
	GetByAlias(ctx context.Context, host string) (domain.Tenant, error)

	// ListPaged returns one page of tenants ordered by title and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error)

	// ListWithEdgeCache returns every tenant with edge-cache credentials.
	ListWithEdgeCache(ctx context.Context) ([]domain.Tenant, error)

	// CreateAlias registers an alias domain for a tenant.
	CreateAlias(ctx context.Context, a domain.AliasDomain) (domain.AliasDomain, error)

	// DeleteAlias removes an alias domain by ID.
	DeleteAlias(ctx context.Context, id uuid.UUID) error

	// CreateIndexDomain registers a tenant-less index domain.
	CreateIndexDomain(ctx context.Context, d domain.IndexDomain) (domain.IndexDomain, error)

	// DeleteIndexDomain removes an index domain by ID.
	DeleteIndexDomain(ctx context.Context, id uuid.UUID) error
}

// pgTenantRepo is the Postgres implementation of TenantRepo.
type pgTenantRepo struct {
	db db
}

// NewTenantRepo constructs a TenantRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTenantRepo(db db) TenantRepo {
	return &pgTenantRepo{db: db}
}

const tenantColumns = `id, domain, slug, title, description, author, genre,
	header_image, favicon_image, background, overflow, style,
	edge_zone, edge_token, created_at, updated_at`

func (r *pgTenantRepo) Create(ctx context.Context, t domain.Tenant) (domain.Tenant, error) {
	const q = `
		INSERT INTO tenants (domain, slug, title, description, author, genre,
			header_image, favicon_image, background, overflow, style, edge_zone, edge_token)
		VALUES (@domain, @slug, @title, @description, @author, @genre,
			@header_image, @favicon_image, @background, @overflow, @style, @edge_zone, @edge_token)
		RETURNING ` + tenantColumns

	var result domain.Tenant
	err := r.claimDomain(ctx, t.Domain, uuid.Nil, func(tx pgx.Tx) error {
		var err error
		result, err = scanTenant(tx.QueryRow(ctx, q, tenantArgs(t)))
		return err
	})
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("repo.TenantRepo.Create: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTenantRepo) Update(ctx context.Context, t domain.Tenant) (domain.Tenant, error) {
	const q = `
		UPDATE tenants
		SET domain        = @domain,
		    slug          = @slug,
		    title         = @title,
		    description   = @description,
		    author        = @author,
		    genre         = @genre,
		    header_image  = @header_image,
		    favicon_image = @favicon_image,
		    background    = @background,
		    overflow      = @overflow,
		    style         = @style,
		    edge_zone     = @edge_zone,
		    edge_token    = @edge_token,
		    updated_at    = now()
		WHERE id = @id
		RETURNING ` + tenantColumns

	var result domain.Tenant
	err := r.claimDomain(ctx, t.Domain, t.ID, func(tx pgx.Tx) error {
		args := tenantArgs(t)
		args["id"] = t.ID
		var err error
		result, err = scanTenant(tx.QueryRow(ctx, q, args))
		return err
	})
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("repo.TenantRepo.Update: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	q := `SELECT ` + tenantColumns + ` FROM tenants WHERE id = @id`

	result, err := scanTenant(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("repo.TenantRepo.GetByID: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTenantRepo) GetByDomain(ctx context.Context, host string) (domain.Tenant, error) {
	q := `SELECT ` + tenantColumns + ` FROM tenants WHERE domain = @domain`

	result, err := scanTenant(r.db.QueryRow(ctx, q, pgx.NamedArgs{"domain": host}))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("repo.TenantRepo.GetByDomain: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTenantRepo) GetByAlias(ctx context.Context, host string) (domain.Tenant, error) {
	const q = `
		SELECT t.id, t.domain, t.slug, t.title, t.description, t.author, t.genre,
		       t.header_image, t.favicon_image, t.background, t.overflow, t.style,
		       t.edge_zone, t.edge_token, t.created_at, t.updated_at
		FROM alias_domains a
		JOIN tenants t ON t.id = a.tenant_id
		WHERE a.domain = @domain`

	result, err := scanTenant(r.db.QueryRow(ctx, q, pgx.NamedArgs{"domain": host}))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("repo.TenantRepo.GetByAlias: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTenantRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error) {
	q := `
		SELECT ` + tenantColumns + `, count(*) OVER () AS total
		FROM tenants
		ORDER BY title, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TenantRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	tenants := []domain.Tenant{}
	var total int64
	for rows.Next() {
		t, err := scanTenantWithTotal(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TenantRepo.ListPaged: scan: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TenantRepo.ListPaged: rows: %w", err)
	}
	return tenants, total, nil
}

func (r *pgTenantRepo) ListWithEdgeCache(ctx context.Context) ([]domain.Tenant, error) {
	q := `SELECT ` + tenantColumns + `
		FROM tenants
		WHERE edge_zone <> '' AND edge_token <> ''
		ORDER BY domain`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.TenantRepo.ListWithEdgeCache: %w", err)
	}
	defer rows.Close()

	tenants := []domain.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TenantRepo.ListWithEdgeCache: scan: %w", err)
		}
		tenants = append(tenants, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TenantRepo.ListWithEdgeCache: rows: %w", err)
	}
	return tenants, nil
}

func (r *pgTenantRepo) CreateAlias(ctx context.Context, a domain.AliasDomain) (domain.AliasDomain, error) {
	const q = `
		INSERT INTO alias_domains (tenant_id, domain)
		VALUES (@tenant_id, @domain)
		RETURNING id, tenant_id, domain`

	var result domain.AliasDomain
	err := r.claimDomain(ctx, a.Domain, uuid.Nil, func(tx pgx.Tx) error {
		var id, tenantID pgtype.UUID
		row := tx.QueryRow(ctx, q, pgx.NamedArgs{"tenant_id": a.TenantID, "domain": a.Domain})
		if err := row.Scan(&id, &tenantID, &result.Domain); err != nil {
			return err
		}
		result.ID = uuid.UUID(id.Bytes)
		result.TenantID = uuid.UUID(tenantID.Bytes)
		return nil
	})
	if err != nil {
		return domain.AliasDomain{}, fmt.Errorf("repo.TenantRepo.CreateAlias: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTenantRepo) DeleteAlias(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM alias_domains WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TenantRepo.DeleteAlias: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TenantRepo.DeleteAlias: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTenantRepo) CreateIndexDomain(ctx context.Context, d domain.IndexDomain) (domain.IndexDomain, error) {
	const q = `
		INSERT INTO index_domains (domain)
		VALUES (@domain)
		RETURNING id, domain`

	var result domain.IndexDomain
	err := r.claimDomain(ctx, d.Domain, uuid.Nil, func(tx pgx.Tx) error {
		var id pgtype.UUID
		if err := tx.QueryRow(ctx, q, pgx.NamedArgs{"domain": d.Domain}).Scan(&id, &result.Domain); err != nil {
			return err
		}
		result.ID = uuid.UUID(id.Bytes)
		return nil
	})
	if err != nil {
		return domain.IndexDomain{}, fmt.Errorf("repo.TenantRepo.CreateIndexDomain: %w", mapError(err))
	}
	return result, nil
}

func (r *pgTenantRepo) DeleteIndexDomain(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM index_domains WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TenantRepo.DeleteIndexDomain: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TenantRepo.DeleteIndexDomain: %w", domain.ErrNotFound)
	}
	return nil
}

// claimDomain runs write inside a transaction that holds the domain advisory
// lock and has verified that name is not used as a primary, alias or index
// domain anywhere. owner is the tenant allowed to keep name as its own
// primary domain (uuid.Nil for none).
func (r *pgTenantRepo) claimDomain(ctx context.Context, name string, owner uuid.UUID, write func(tx pgx.Tx) error) error {
	const taken = `
		SELECT EXISTS (SELECT 1 FROM tenants WHERE domain = @domain AND id <> @owner)
		    OR EXISTS (SELECT 1 FROM alias_domains WHERE domain = @domain)
		    OR EXISTS (SELECT 1 FROM index_domains WHERE domain = @domain)`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(@key)`, pgx.NamedArgs{"key": domainLockKey}); err != nil {
		return fmt.Errorf("lock domains: %w", err)
	}

	var exists bool
	if err := tx.QueryRow(ctx, taken, pgx.NamedArgs{"domain": name, "owner": owner}).Scan(&exists); err != nil {
		return fmt.Errorf("check domain: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: domain %q is already in use", domain.ErrConflict, name)
	}

	if err := write(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func tenantArgs(t domain.Tenant) pgx.NamedArgs {
	style := t.Style
	if style == nil {
		style = map[string]string{}
	}
	return pgx.NamedArgs{
		"domain":        t.Domain,
		"slug":          t.Slug,
		"title":         t.Title,
		"description":   t.Description,
		"author":        t.Author,
		"genre":         t.Genre,
		"header_image":  t.HeaderImage,
		"favicon_image": t.Favicon,
		"background":    t.Background,
		"overflow":      t.Overflow,
		"style":         style,
		"edge_zone":     t.EdgeZone,
		"edge_token":    t.EdgeToken,
	}
}

// scanTenant maps a single database row into a domain.Tenant.
func scanTenant(s scanner) (domain.Tenant, error) {
	return scanTenantWithTotal(s, nil)
}

// scanTenantWithTotal is scanTenant for queries that append a window count.
func scanTenantWithTotal(s scanner, total *int64) (domain.Tenant, error) {
	var (
		t  domain.Tenant
		id pgtype.UUID
	)
	dest := []any{&id, &t.Domain, &t.Slug, &t.Title, &t.Description, &t.Author, &t.Genre,
		&t.HeaderImage, &t.Favicon, &t.Background, &t.Overflow, &t.Style,
		&t.EdgeZone, &t.EdgeToken, &t.CreatedAt, &t.UpdatedAt}
	if total != nil {
		dest = append(dest, total)
	}
	if err := s.Scan(dest...); err != nil {
		return domain.Tenant{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
