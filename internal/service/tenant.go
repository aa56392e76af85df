package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
	"github.com/pkordes/webcomics/internal/tenancy"
)

// TenantInput is the editor's view of a tenant. An empty EdgeToken on
// update keeps the stored token, which is never sent back to clients.
type TenantInput struct {
	Domain      string            `json:"domain" validate:"required,hostname_rfc1123,max=253"`
	Slug        string            `json:"slug" validate:"required,slug,max=100"`
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description" validate:"max=1000"`
	Author      string            `json:"author" validate:"max=200"`
	Genre       string            `json:"genre" validate:"max=100"`
	HeaderImage string            `json:"header_image" validate:"max=500"`
	Favicon     string            `json:"favicon" validate:"max=500"`
	Background  string            `json:"background" validate:"max=100"`
	Overflow    string            `json:"overflow" validate:"max=100"`
	Style       map[string]string `json:"style" validate:"dive,keys,max=64,endkeys,max=200"`
	EdgeZone    string            `json:"edge_zone" validate:"max=64"`
	EdgeToken   string            `json:"edge_token" validate:"max=200"`
}

// DomainInput names an alias or index domain.
type DomainInput struct {
	Domain string `json:"domain" validate:"required,hostname_rfc1123,max=253"`
}

// TenantService implements the editor operations on tenants and their
// domains. Domains are normalized exactly as request hosts are, so a stored
// domain always matches the resolver's lookup key.
type TenantService struct {
	tenants  repo.TenantRepo
	validate Validator
	notify   Notifier
}

// NewTenantService constructs a TenantService.
func NewTenantService(tenants repo.TenantRepo, v Validator, n Notifier) *TenantService {
	return &TenantService{tenants: tenants, validate: v, notify: notifierOrNop(n)}
}

// Get returns a tenant by ID.
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	t, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("service.TenantService.Get: %w", err)
	}
	return t, nil
}

// List returns one page of tenants and the total count.
func (s *TenantService) List(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error) {
	tenants, total, err := s.tenants.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.TenantService.List: %w", err)
	}
	return tenants, total, nil
}

// Create validates and persists a tenant. A domain already used as a
// primary, alias or index domain is a domain.ErrConflict.
func (s *TenantService) Create(ctx context.Context, in TenantInput) (domain.Tenant, error) {
	in.Domain = tenancy.NormalizeHost(in.Domain)
	if err := s.validate.Validate(in); err != nil {
		return domain.Tenant{}, fmt.Errorf("service.TenantService.Create: %w", err)
	}
	t, err := s.tenants.Create(ctx, tenantFromInput(domain.Tenant{}, in))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("service.TenantService.Create: %w", err)
	}
	return t, nil
}

// Update overwrites a tenant and purges its whole edge cache.
func (s *TenantService) Update(ctx context.Context, id uuid.UUID, in TenantInput) (domain.Tenant, error) {
	in.Domain = tenancy.NormalizeHost(in.Domain)
	if err := s.validate.Validate(in); err != nil {
		return domain.Tenant{}, fmt.Errorf("service.TenantService.Update: %w", err)
	}
	old, err := s.tenants.GetByID(ctx, id)
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("service.TenantService.Update: %w", err)
	}
	updated, err := s.tenants.Update(ctx, tenantFromInput(old, in))
	if err != nil {
		return domain.Tenant{}, fmt.Errorf("service.TenantService.Update: %w", err)
	}
	if err := s.notify.Publish(ctx, domain.ContentEvent{Entity: domain.EntityTenant, TenantID: &updated.ID}); err != nil {
		return updated, fmt.Errorf("service.TenantService.Update: %w", err)
	}
	return updated, nil
}

// CreateAlias registers an alias domain redirecting to the tenant.
func (s *TenantService) CreateAlias(ctx context.Context, tenantID uuid.UUID, in DomainInput) (domain.AliasDomain, error) {
	in.Domain = tenancy.NormalizeHost(in.Domain)
	if err := s.validate.Validate(in); err != nil {
		return domain.AliasDomain{}, fmt.Errorf("service.TenantService.CreateAlias: %w", err)
	}
	a, err := s.tenants.CreateAlias(ctx, domain.AliasDomain{TenantID: tenantID, Domain: in.Domain})
	if err != nil {
		return domain.AliasDomain{}, fmt.Errorf("service.TenantService.CreateAlias: %w", err)
	}
	return a, nil
}

// DeleteAlias removes an alias domain.
func (s *TenantService) DeleteAlias(ctx context.Context, id uuid.UUID) error {
	if err := s.tenants.DeleteAlias(ctx, id); err != nil {
		return fmt.Errorf("service.TenantService.DeleteAlias: %w", err)
	}
	return nil
}

// CreateIndexDomain registers a tenant-less index domain.
func (s *TenantService) CreateIndexDomain(ctx context.Context, in DomainInput) (domain.IndexDomain, error) {
	in.Domain = tenancy.NormalizeHost(in.Domain)
	if err := s.validate.Validate(in); err != nil {
		return domain.IndexDomain{}, fmt.Errorf("service.TenantService.CreateIndexDomain: %w", err)
	}
	d, err := s.tenants.CreateIndexDomain(ctx, domain.IndexDomain{Domain: in.Domain})
	if err != nil {
		return domain.IndexDomain{}, fmt.Errorf("service.TenantService.CreateIndexDomain: %w", err)
	}
	return d, nil
}

// DeleteIndexDomain removes an index domain.
func (s *TenantService) DeleteIndexDomain(ctx context.Context, id uuid.UUID) error {
	if err := s.tenants.DeleteIndexDomain(ctx, id); err != nil {
		return fmt.Errorf("service.TenantService.DeleteIndexDomain: %w", err)
	}
	return nil
}

func tenantFromInput(t domain.Tenant, in TenantInput) domain.Tenant {
	t.Domain = in.Domain
	t.Slug = in.Slug
	t.Title = in.Title
	t.Description = in.Description
	t.Author = in.Author
	t.Genre = in.Genre
	t.HeaderImage = in.HeaderImage
	t.Favicon = in.Favicon
	t.Background = in.Background
	t.Overflow = in.Overflow
	t.Style = in.Style
	t.EdgeZone = in.EdgeZone
	if in.EdgeToken != "" {
		t.EdgeToken = in.EdgeToken
	}
	return t
}
