package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
	"github.com/pkordes/webcomics/internal/service"
)

// Hand-written test doubles: each method is a function field, set only the
// ones a test needs. An unset field panics, which flags an unexpected call.

type mockPageRepo struct {
	create         func(ctx context.Context, p domain.Page, tagIDs []uuid.UUID) (domain.Page, error)
	update         func(ctx context.Context, p domain.Page, tagIDs []uuid.UUID) (domain.Page, error)
	delete         func(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error)
	getByID        func(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error)
	getBySlug      func(ctx context.Context, tenantID uuid.UUID, slug string) (domain.Page, error)
	first          func(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)
	last           func(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)
	before         func(ctx context.Context, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error)
	after          func(ctx context.Context, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error)
	random         func(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)
	listLive       func(ctx context.Context, tenantID uuid.UUID, asOf time.Time, limit int, newestFirst bool) ([]domain.Page, error)
	listLiveByTag  func(ctx context.Context, tagID uuid.UUID, asOf time.Time) ([]domain.Page, error)
	orderingBounds func(ctx context.Context, tenantID uuid.UUID, ordering float64) (*float64, *float64, error)
	maxOrdering    func(ctx context.Context, tenantID uuid.UUID) (*float64, error)
	listTags       func(ctx context.Context, pageID uuid.UUID) ([]domain.ResolvedTag, error)
}

var _ repo.PageRepo = (*mockPageRepo)(nil)

func (m *mockPageRepo) Create(ctx context.Context, p domain.Page, tagIDs []uuid.UUID) (domain.Page, error) {
	return m.create(ctx, p, tagIDs)
}
func (m *mockPageRepo) Update(ctx context.Context, p domain.Page, tagIDs []uuid.UUID) (domain.Page, error) {
	return m.update(ctx, p, tagIDs)
}
func (m *mockPageRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error) {
	return m.delete(ctx, tenantID, id)
}
func (m *mockPageRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error) {
	return m.getByID(ctx, tenantID, id)
}
func (m *mockPageRepo) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (domain.Page, error) {
	return m.getBySlug(ctx, tenantID, slug)
}
func (m *mockPageRepo) First(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error) {
	return m.first(ctx, tenantID, asOf)
}
func (m *mockPageRepo) Last(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error) {
	return m.last(ctx, tenantID, asOf)
}
func (m *mockPageRepo) Before(ctx context.Context, tenantID uuid.UUID, o float64, asOf time.Time) (domain.Page, error) {
	return m.before(ctx, tenantID, o, asOf)
}
func (m *mockPageRepo) After(ctx context.Context, tenantID uuid.UUID, o float64, asOf time.Time) (domain.Page, error) {
	return m.after(ctx, tenantID, o, asOf)
}
func (m *mockPageRepo) Random(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error) {
	return m.random(ctx, tenantID, asOf)
}
func (m *mockPageRepo) ListLive(ctx context.Context, tenantID uuid.UUID, asOf time.Time, limit int, newestFirst bool) ([]domain.Page, error) {
	return m.listLive(ctx, tenantID, asOf, limit, newestFirst)
}
func (m *mockPageRepo) ListLiveByTag(ctx context.Context, tagID uuid.UUID, asOf time.Time) ([]domain.Page, error) {
	return m.listLiveByTag(ctx, tagID, asOf)
}
func (m *mockPageRepo) OrderingBounds(ctx context.Context, tenantID uuid.UUID, o float64) (*float64, *float64, error) {
	return m.orderingBounds(ctx, tenantID, o)
}
func (m *mockPageRepo) MaxOrdering(ctx context.Context, tenantID uuid.UUID) (*float64, error) {
	return m.maxOrdering(ctx, tenantID)
}
func (m *mockPageRepo) ListTags(ctx context.Context, pageID uuid.UUID) ([]domain.ResolvedTag, error) {
	return m.listTags(ctx, pageID)
}

type mockTagRepo struct {
	createType           func(ctx context.Context, t domain.TagType) (domain.TagType, error)
	updateType           func(ctx context.Context, t domain.TagType) (domain.TagType, error)
	deleteType           func(ctx context.Context, tenantID, id uuid.UUID) error
	getTypeByID          func(ctx context.Context, tenantID, id uuid.UUID) (domain.TagType, error)
	getTypeByTitle       func(ctx context.Context, tenantID uuid.UUID, title string) (domain.TagType, error)
	create               func(ctx context.Context, t domain.Tag) (domain.Tag, error)
	update               func(ctx context.Context, t domain.Tag) (domain.Tag, error)
	delete               func(ctx context.Context, tenantID, id uuid.UUID) error
	getByID              func(ctx context.Context, tenantID, id uuid.UUID) (domain.ResolvedTag, error)
	getByTitle           func(ctx context.Context, typeID uuid.UUID, title string) (domain.Tag, error)
	lookupRefs           func(ctx context.Context, tenantID uuid.UUID, refs []domain.TagRef) ([]domain.ResolvedTag, error)
	listByTypeWithCounts func(ctx context.Context, typeID uuid.UUID, asOf time.Time) ([]repo.TagCount, error)
}

var _ repo.TagRepo = (*mockTagRepo)(nil)

func (m *mockTagRepo) CreateType(ctx context.Context, t domain.TagType) (domain.TagType, error) {
	return m.createType(ctx, t)
}
func (m *mockTagRepo) UpdateType(ctx context.Context, t domain.TagType) (domain.TagType, error) {
	return m.updateType(ctx, t)
}
func (m *mockTagRepo) DeleteType(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.deleteType(ctx, tenantID, id)
}
func (m *mockTagRepo) GetTypeByID(ctx context.Context, tenantID, id uuid.UUID) (domain.TagType, error) {
	return m.getTypeByID(ctx, tenantID, id)
}
func (m *mockTagRepo) GetTypeByTitle(ctx context.Context, tenantID uuid.UUID, title string) (domain.TagType, error) {
	return m.getTypeByTitle(ctx, tenantID, title)
}
func (m *mockTagRepo) Create(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	return m.create(ctx, t)
}
func (m *mockTagRepo) Update(ctx context.Context, t domain.Tag) (domain.Tag, error) {
	return m.update(ctx, t)
}
func (m *mockTagRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.delete(ctx, tenantID, id)
}
func (m *mockTagRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (domain.ResolvedTag, error) {
	return m.getByID(ctx, tenantID, id)
}
func (m *mockTagRepo) GetByTitle(ctx context.Context, typeID uuid.UUID, title string) (domain.Tag, error) {
	return m.getByTitle(ctx, typeID, title)
}
func (m *mockTagRepo) LookupRefs(ctx context.Context, tenantID uuid.UUID, refs []domain.TagRef) ([]domain.ResolvedTag, error) {
	return m.lookupRefs(ctx, tenantID, refs)
}
func (m *mockTagRepo) ListByTypeWithCounts(ctx context.Context, typeID uuid.UUID, asOf time.Time) ([]repo.TagCount, error) {
	return m.listByTypeWithCounts(ctx, typeID, asOf)
}

type mockAdRepo struct {
	create     func(ctx context.Context, a domain.Ad) (domain.Ad, error)
	update     func(ctx context.Context, a domain.Ad) (domain.Ad, error)
	delete     func(ctx context.Context, tenantID, id uuid.UUID) error
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Ad, error)
	listActive func(ctx context.Context, tenantID uuid.UUID, kind domain.AdKind) ([]domain.Ad, error)
}

var _ repo.AdRepo = (*mockAdRepo)(nil)

func (m *mockAdRepo) Create(ctx context.Context, a domain.Ad) (domain.Ad, error) {
	return m.create(ctx, a)
}
func (m *mockAdRepo) Update(ctx context.Context, a domain.Ad) (domain.Ad, error) {
	return m.update(ctx, a)
}
func (m *mockAdRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.delete(ctx, tenantID, id)
}
func (m *mockAdRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Ad, error) {
	return m.getByID(ctx, id)
}
func (m *mockAdRepo) ListActive(ctx context.Context, tenantID uuid.UUID, kind domain.AdKind) ([]domain.Ad, error) {
	return m.listActive(ctx, tenantID, kind)
}

type mockChapterRepo struct {
	create func(ctx context.Context, c domain.Chapter) (domain.Chapter, error)
	update func(ctx context.Context, c domain.Chapter) (domain.Chapter, error)
	delete func(ctx context.Context, tenantID, id uuid.UUID) error
	list   func(ctx context.Context, tenantID uuid.UUID) ([]domain.Chapter, error)
}

var _ repo.ChapterRepo = (*mockChapterRepo)(nil)

func (m *mockChapterRepo) Create(ctx context.Context, c domain.Chapter) (domain.Chapter, error) {
	return m.create(ctx, c)
}
func (m *mockChapterRepo) Update(ctx context.Context, c domain.Chapter) (domain.Chapter, error) {
	return m.update(ctx, c)
}
func (m *mockChapterRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.delete(ctx, tenantID, id)
}
func (m *mockChapterRepo) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Chapter, error) {
	return m.list(ctx, tenantID)
}

type mockSnippetRepo struct {
	create        func(ctx context.Context, s domain.Snippet) (domain.Snippet, error)
	update        func(ctx context.Context, s domain.Snippet) (domain.Snippet, error)
	delete        func(ctx context.Context, id uuid.UUID) (domain.Snippet, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.Snippet, error)
	listForTenant func(ctx context.Context, tenantID uuid.UUID, testing bool) ([]domain.Snippet, error)
}

var _ repo.SnippetRepo = (*mockSnippetRepo)(nil)

func (m *mockSnippetRepo) Create(ctx context.Context, s domain.Snippet) (domain.Snippet, error) {
	return m.create(ctx, s)
}
func (m *mockSnippetRepo) Update(ctx context.Context, s domain.Snippet) (domain.Snippet, error) {
	return m.update(ctx, s)
}
func (m *mockSnippetRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Snippet, error) {
	return m.delete(ctx, id)
}
func (m *mockSnippetRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Snippet, error) {
	return m.getByID(ctx, id)
}
func (m *mockSnippetRepo) ListForTenant(ctx context.Context, tenantID uuid.UUID, testing bool) ([]domain.Snippet, error) {
	return m.listForTenant(ctx, tenantID, testing)
}

type mockTenantRepo struct {
	create            func(ctx context.Context, t domain.Tenant) (domain.Tenant, error)
	update            func(ctx context.Context, t domain.Tenant) (domain.Tenant, error)
	getByID           func(ctx context.Context, id uuid.UUID) (domain.Tenant, error)
	getByDomain       func(ctx context.Context, host string) (domain.Tenant, error)
	getByAlias        func(ctx context.Context, host string) (domain.Tenant, error)
	listPaged         func(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error)
	listWithEdgeCache func(ctx context.Context) ([]domain.Tenant, error)
	createAlias       func(ctx context.Context, a domain.AliasDomain) (domain.AliasDomain, error)
	deleteAlias       func(ctx context.Context, id uuid.UUID) error
	createIndexDomain func(ctx context.Context, d domain.IndexDomain) (domain.IndexDomain, error)
	deleteIndexDomain func(ctx context.Context, id uuid.UUID) error
}

var _ repo.TenantRepo = (*mockTenantRepo)(nil)

func (m *mockTenantRepo) Create(ctx context.Context, t domain.Tenant) (domain.Tenant, error) {
	return m.create(ctx, t)
}
func (m *mockTenantRepo) Update(ctx context.Context, t domain.Tenant) (domain.Tenant, error) {
	return m.update(ctx, t)
}
func (m *mockTenantRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error) {
	return m.getByID(ctx, id)
}
func (m *mockTenantRepo) GetByDomain(ctx context.Context, host string) (domain.Tenant, error) {
	return m.getByDomain(ctx, host)
}
func (m *mockTenantRepo) GetByAlias(ctx context.Context, host string) (domain.Tenant, error) {
	return m.getByAlias(ctx, host)
}
func (m *mockTenantRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error) {
	return m.listPaged(ctx, p)
}
func (m *mockTenantRepo) ListWithEdgeCache(ctx context.Context) ([]domain.Tenant, error) {
	return m.listWithEdgeCache(ctx)
}
func (m *mockTenantRepo) CreateAlias(ctx context.Context, a domain.AliasDomain) (domain.AliasDomain, error) {
	return m.createAlias(ctx, a)
}
func (m *mockTenantRepo) DeleteAlias(ctx context.Context, id uuid.UUID) error {
	return m.deleteAlias(ctx, id)
}
func (m *mockTenantRepo) CreateIndexDomain(ctx context.Context, d domain.IndexDomain) (domain.IndexDomain, error) {
	return m.createIndexDomain(ctx, d)
}
func (m *mockTenantRepo) DeleteIndexDomain(ctx context.Context, id uuid.UUID) error {
	return m.deleteIndexDomain(ctx, id)
}

// recordingNotifier captures published events and can be told to fail.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.ContentEvent
	err    error
}

var _ service.Notifier = (*recordingNotifier)(nil)

func (n *recordingNotifier) Publish(_ context.Context, ev domain.ContentEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}
