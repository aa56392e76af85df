// Package handler implements the HTTP surface of the webcomics service: the
// host-scoped public reader and the JSON editor API under /admin/api.
// All handlers are methods on Server. Methods are split into files by area
// (reader.go, archive.go, tenants.go, ...) but share the same struct so they
// can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/middleware"
	"github.com/pkordes/webcomics/internal/service"
	"github.com/pkordes/webcomics/internal/tenancy"
)

// ReaderServicer defines the reader operations the public handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type ReaderServicer interface {
	Latest(ctx context.Context, tenant domain.Tenant) (domain.Page, error)
	Random(ctx context.Context, tenant domain.Tenant) (domain.Page, error)
	Page(ctx context.Context, tenant domain.Tenant, slug string) (service.PageResult, error)
	Feed(ctx context.Context, tenant domain.Tenant) ([]service.FeedItem, error)
	Comics(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error)
}

// ArchiveServicer defines the archive listings.
type ArchiveServicer interface {
	Archive(ctx context.Context, tenant domain.Tenant) (service.ArchiveView, error)
	TagType(ctx context.Context, tenant domain.Tenant, typeTitle string) (service.TagTypeResult, error)
	Tag(ctx context.Context, tenant domain.Tenant, typeTitle, tagTitle string) (service.TagResult, error)
}

// TenantServicer defines tenant and domain administration.
type TenantServicer interface {
	Get(ctx context.Context, id uuid.UUID) (domain.Tenant, error)
	List(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error)
	Create(ctx context.Context, in service.TenantInput) (domain.Tenant, error)
	Update(ctx context.Context, id uuid.UUID, in service.TenantInput) (domain.Tenant, error)
	CreateAlias(ctx context.Context, tenantID uuid.UUID, in service.DomainInput) (domain.AliasDomain, error)
	DeleteAlias(ctx context.Context, id uuid.UUID) error
	CreateIndexDomain(ctx context.Context, in service.DomainInput) (domain.IndexDomain, error)
	DeleteIndexDomain(ctx context.Context, id uuid.UUID) error
}

// PageServicer defines page editing.
type PageServicer interface {
	Get(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error)
	Create(ctx context.Context, tenantID uuid.UUID, in service.PageInput) (domain.Page, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in service.PageInput) (domain.Page, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// TagServicer defines tag type and tag editing.
type TagServicer interface {
	CreateType(ctx context.Context, tenantID uuid.UUID, in service.TagTypeInput) (domain.TagType, error)
	UpdateType(ctx context.Context, tenantID, id uuid.UUID, in service.TagTypeInput) (domain.TagType, error)
	DeleteType(ctx context.Context, tenantID, id uuid.UUID) error
	Create(ctx context.Context, tenantID uuid.UUID, in service.TagInput) (domain.Tag, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in service.TagInput) (domain.Tag, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// ChapterServicer defines chapter editing.
type ChapterServicer interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.Chapter, error)
	Create(ctx context.Context, tenantID uuid.UUID, in service.ChapterInput) (domain.Chapter, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in service.ChapterInput) (domain.Chapter, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// AdServicer defines ad editing.
type AdServicer interface {
	Create(ctx context.Context, tenantID uuid.UUID, in service.AdInput) (domain.Ad, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in service.AdInput) (domain.Ad, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

// SnippetServicer defines snippet editing.
type SnippetServicer interface {
	Create(ctx context.Context, in service.SnippetInput) (domain.Snippet, error)
	Update(ctx context.Context, id uuid.UUID, in service.SnippetInput) (domain.Snippet, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Services groups the Server's dependencies. Fields a caller does not route
// to may be left nil.
type Services struct {
	Reader   ReaderServicer
	Archive  ArchiveServicer
	Tenants  TenantServicer
	Pages    PageServicer
	Tags     TagServicer
	Chapters ChapterServicer
	Ads      AdServicer
	Snippets SnippetServicer
}

// Options holds request-independent settings for the public routes.
type Options struct {
	// AdsTxtURL is the /ads.txt redirect target; empty makes it a 404.
	AdsTxtURL string
	// RandomRateLimit is /random requests per IP per minute; 0 disables it.
	RandomRateLimit int
}

// Server serves every endpoint. Wire PublicRoutes behind tenancy.Middleware
// and AdminRoutes under /admin/api.
type Server struct {
	svc  Services
	opts Options
	log  *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, opts: opts, log: log}
}

// PublicRoutes registers the reader routes. Every route except the index,
// /robots.txt and /ads.txt requires a resolved tenant.
func (s *Server) PublicRoutes(r chi.Router) {
	r.Get("/", s.Index)
	r.Get("/robots.txt", s.RobotsTxt)
	r.Get("/ads.txt", s.AdsTxt)

	r.Group(func(r chi.Router) {
		r.Use(tenancy.RequireTenant)
		r.Get("/comic/{slug}", s.GetPage)
		r.Get("/swords/{slug}", s.LegacyPage)
		r.Get("/data/{slug}", s.GetPageData)
		r.With(middleware.NewRateLimiter(s.opts.RandomRateLimit, time.Minute, s.log)).Get("/random", s.RandomPage)
		r.Get("/feed", s.Feed)
		r.Get("/archive", s.Archive)
		r.Get("/archive/tag/{type}", s.TagType)
		r.Get("/archive/tag/{type}/{tag}", s.Tag)
	})
}

// AdminRoutes registers the editor API relative to its mount point.
func (s *Server) AdminRoutes(r chi.Router) {
	r.Get("/tenants", s.ListTenants)
	r.Post("/tenants", s.CreateTenant)
	r.Post("/index-domains", s.CreateIndexDomain)
	r.Delete("/index-domains/{id}", s.DeleteIndexDomain)
	r.Delete("/aliases/{id}", s.DeleteAlias)
	r.Post("/snippets", s.CreateSnippet)
	r.Put("/snippets/{id}", s.UpdateSnippet)
	r.Delete("/snippets/{id}", s.DeleteSnippet)

	r.Route("/tenants/{tenantID}", func(r chi.Router) {
		r.Get("/", s.GetTenant)
		r.Put("/", s.UpdateTenant)
		r.Post("/aliases", s.CreateAlias)

		r.Post("/pages", s.CreatePage)
		r.Get("/pages/{id}", s.GetEditorPage)
		r.Put("/pages/{id}", s.UpdatePage)
		r.Delete("/pages/{id}", s.DeletePage)

		r.Post("/tag-types", s.CreateTagType)
		r.Put("/tag-types/{id}", s.UpdateTagType)
		r.Delete("/tag-types/{id}", s.DeleteTagType)
		r.Post("/tags", s.CreateTag)
		r.Put("/tags/{id}", s.UpdateTag)
		r.Delete("/tags/{id}", s.DeleteTag)

		r.Get("/chapters", s.ListChapters)
		r.Post("/chapters", s.CreateChapter)
		r.Put("/chapters/{id}", s.UpdateChapter)
		r.Delete("/chapters/{id}", s.DeleteChapter)

		r.Post("/ads", s.CreateAd)
		r.Put("/ads/{id}", s.UpdateAd)
		r.Delete("/ads/{id}", s.DeleteAd)
	})
}
