package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/handler"
	"github.com/pkordes/webcomics/internal/service"
	"github.com/pkordes/webcomics/internal/tenancy"
)

// Test doubles for the handler's consumer-side interfaces.
// Set only the method fields your test needs.

type mockReader struct {
	latest func(ctx context.Context, tenant domain.Tenant) (domain.Page, error)
	random func(ctx context.Context, tenant domain.Tenant) (domain.Page, error)
	page   func(ctx context.Context, tenant domain.Tenant, slug string) (service.PageResult, error)
	feed   func(ctx context.Context, tenant domain.Tenant) ([]service.FeedItem, error)
	comics func(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error)
}

var _ handler.ReaderServicer = (*mockReader)(nil)

func (m *mockReader) Latest(ctx context.Context, t domain.Tenant) (domain.Page, error) {
	return m.latest(ctx, t)
}
func (m *mockReader) Random(ctx context.Context, t domain.Tenant) (domain.Page, error) {
	return m.random(ctx, t)
}
func (m *mockReader) Page(ctx context.Context, t domain.Tenant, slug string) (service.PageResult, error) {
	return m.page(ctx, t, slug)
}
func (m *mockReader) Feed(ctx context.Context, t domain.Tenant) ([]service.FeedItem, error) {
	return m.feed(ctx, t)
}
func (m *mockReader) Comics(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error) {
	return m.comics(ctx, p)
}

type mockArchive struct {
	archive func(ctx context.Context, tenant domain.Tenant) (service.ArchiveView, error)
	tagType func(ctx context.Context, tenant domain.Tenant, typeTitle string) (service.TagTypeResult, error)
	tag     func(ctx context.Context, tenant domain.Tenant, typeTitle, tagTitle string) (service.TagResult, error)
}

var _ handler.ArchiveServicer = (*mockArchive)(nil)

func (m *mockArchive) Archive(ctx context.Context, t domain.Tenant) (service.ArchiveView, error) {
	return m.archive(ctx, t)
}
func (m *mockArchive) TagType(ctx context.Context, t domain.Tenant, typeTitle string) (service.TagTypeResult, error) {
	return m.tagType(ctx, t, typeTitle)
}
func (m *mockArchive) Tag(ctx context.Context, t domain.Tenant, typeTitle, tagTitle string) (service.TagResult, error) {
	return m.tag(ctx, t, typeTitle, tagTitle)
}

type mockPages struct {
	get    func(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error)
	create func(ctx context.Context, tenantID uuid.UUID, in service.PageInput) (domain.Page, error)
	update func(ctx context.Context, tenantID, id uuid.UUID, in service.PageInput) (domain.Page, error)
	delete func(ctx context.Context, tenantID, id uuid.UUID) error
}

var _ handler.PageServicer = (*mockPages)(nil)

func (m *mockPages) Get(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error) {
	return m.get(ctx, tenantID, id)
}
func (m *mockPages) Create(ctx context.Context, tenantID uuid.UUID, in service.PageInput) (domain.Page, error) {
	return m.create(ctx, tenantID, in)
}
func (m *mockPages) Update(ctx context.Context, tenantID, id uuid.UUID, in service.PageInput) (domain.Page, error) {
	return m.update(ctx, tenantID, id, in)
}
func (m *mockPages) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.delete(ctx, tenantID, id)
}

type mockTags struct {
	createType func(ctx context.Context, tenantID uuid.UUID, in service.TagTypeInput) (domain.TagType, error)
	updateType func(ctx context.Context, tenantID, id uuid.UUID, in service.TagTypeInput) (domain.TagType, error)
	deleteType func(ctx context.Context, tenantID, id uuid.UUID) error
	create     func(ctx context.Context, tenantID uuid.UUID, in service.TagInput) (domain.Tag, error)
	update     func(ctx context.Context, tenantID, id uuid.UUID, in service.TagInput) (domain.Tag, error)
	delete     func(ctx context.Context, tenantID, id uuid.UUID) error
}

var _ handler.TagServicer = (*mockTags)(nil)

func (m *mockTags) CreateType(ctx context.Context, tenantID uuid.UUID, in service.TagTypeInput) (domain.TagType, error) {
	return m.createType(ctx, tenantID, in)
}
func (m *mockTags) UpdateType(ctx context.Context, tenantID, id uuid.UUID, in service.TagTypeInput) (domain.TagType, error) {
	return m.updateType(ctx, tenantID, id, in)
}
func (m *mockTags) DeleteType(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteType(ctx, tenantID, id)
}
func (m *mockTags) Create(ctx context.Context, tenantID uuid.UUID, in service.TagInput) (domain.Tag, error) {
	return m.create(ctx, tenantID, in)
}
func (m *mockTags) Update(ctx context.Context, tenantID, id uuid.UUID, in service.TagInput) (domain.Tag, error) {
	return m.update(ctx, tenantID, id, in)
}
func (m *mockTags) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.delete(ctx, tenantID, id)
}

type mockTenants struct {
	get               func(ctx context.Context, id uuid.UUID) (domain.Tenant, error)
	list              func(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error)
	create            func(ctx context.Context, in service.TenantInput) (domain.Tenant, error)
	update            func(ctx context.Context, id uuid.UUID, in service.TenantInput) (domain.Tenant, error)
	createAlias       func(ctx context.Context, tenantID uuid.UUID, in service.DomainInput) (domain.AliasDomain, error)
	deleteAlias       func(ctx context.Context, id uuid.UUID) error
	createIndexDomain func(ctx context.Context, in service.DomainInput) (domain.IndexDomain, error)
	deleteIndexDomain func(ctx context.Context, id uuid.UUID) error
}

var _ handler.TenantServicer = (*mockTenants)(nil)

func (m *mockTenants) Get(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	return m.get(ctx, id)
}
func (m *mockTenants) List(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error) {
	return m.list(ctx, p)
}
func (m *mockTenants) Create(ctx context.Context, in service.TenantInput) (domain.Tenant, error) {
	return m.create(ctx, in)
}
func (m *mockTenants) Update(ctx context.Context, id uuid.UUID, in service.TenantInput) (domain.Tenant, error) {
	return m.update(ctx, id, in)
}
func (m *mockTenants) CreateAlias(ctx context.Context, tenantID uuid.UUID, in service.DomainInput) (domain.AliasDomain, error) {
	return m.createAlias(ctx, tenantID, in)
}
func (m *mockTenants) DeleteAlias(ctx context.Context, id uuid.UUID) error {
	return m.deleteAlias(ctx, id)
}
func (m *mockTenants) CreateIndexDomain(ctx context.Context, in service.DomainInput) (domain.IndexDomain, error) {
	return m.createIndexDomain(ctx, in)
}
func (m *mockTenants) DeleteIndexDomain(ctx context.Context, id uuid.UUID) error {
	return m.deleteIndexDomain(ctx, id)
}

type mockSnippets struct {
	create func(ctx context.Context, in service.SnippetInput) (domain.Snippet, error)
	update func(ctx context.Context, id uuid.UUID, in service.SnippetInput) (domain.Snippet, error)
	delete func(ctx context.Context, id uuid.UUID) error
}

var _ handler.SnippetServicer = (*mockSnippets)(nil)

func (m *mockSnippets) Create(ctx context.Context, in service.SnippetInput) (domain.Snippet, error) {
	return m.create(ctx, in)
}
func (m *mockSnippets) Update(ctx context.Context, id uuid.UUID, in service.SnippetInput) (domain.Snippet, error) {
	return m.update(ctx, id, in)
}
func (m *mockSnippets) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// ---- wiring ----------------------------------------------------------------

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// publicHandler mirrors main.go's public router with tenant resolution
// replaced by a fixed tenant (nil for an index host).
func publicHandler(svc handler.Services, opts handler.Options, tenant *domain.Tenant) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(tenancy.WithTenant(req.Context(), tenant)))
		})
	})
	handler.NewServer(svc, opts, discardLogger()).PublicRoutes(r)
	return r
}

// adminHandler mirrors main.go's editor API router, relative to /admin/api.
func adminHandler(svc handler.Services) http.Handler {
	r := chi.NewRouter()
	handler.NewServer(svc, handler.Options{}, discardLogger()).AdminRoutes(r)
	return r
}
