package service

import (
	"context"
	"fmt"

	"github.com/pkordes/webcomics/internal/ads"
	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/markup"
	"github.com/pkordes/webcomics/internal/ordering"
	"github.com/pkordes/webcomics/internal/repo"
)

// feedSize is the number of pages in the RSS feed.
const feedSize = 10

// PageView is everything the reader needs to show one live page.
type PageView struct {
	Page           domain.Page
	PostHTML       string
	PostText       string
	TranscriptHTML string
	TranscriptText string
	Tags           []domain.TagGroup
	Navigation     domain.Navigation
	Banner         *domain.Ad
	Popup          *domain.Ad
	Snippets       Snippets
}

// PageResult is either a view or, when the slug was requested in a
// non-canonical case, the canonical slug to redirect to.
type PageResult struct {
	View         *PageView
	RedirectSlug string
}

// FeedItem is one entry of the RSS feed.
type FeedItem struct {
	Page     domain.Page
	PostHTML string
}

// Snippets holds injected code by template location.
type Snippets map[domain.SnippetLocation][]string

// ReaderService builds the public page views of a tenant.
type ReaderService struct {
	pages    repo.PageRepo
	snippets repo.SnippetRepo
	tenants  repo.TenantRepo
	index    *ordering.Index
	render   *markup.Renderer
	ads      *ads.Selector
}

// NewReaderService constructs a ReaderService.
func NewReaderService(
	pages repo.PageRepo,
	snippets repo.SnippetRepo,
	tenants repo.TenantRepo,
	index *ordering.Index,
	render *markup.Renderer,
	selector *ads.Selector,
) *ReaderService {
	return &ReaderService{
		pages:    pages,
		snippets: snippets,
		tenants:  tenants,
		index:    index,
		render:   render,
		ads:      selector,
	}
}

// Latest returns the tenant's newest live page.
func (s *ReaderService) Latest(ctx context.Context, tenant domain.Tenant) (domain.Page, error) {
	p, err := s.index.Latest(ctx, tenant.ID)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.ReaderService.Latest: %w", err)
	}
	return p, nil
}

// Random returns a random live page.
func (s *ReaderService) Random(ctx context.Context, tenant domain.Tenant) (domain.Page, error) {
	p, err := s.index.Random(ctx, tenant.ID)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.ReaderService.Random: %w", err)
	}
	return p, nil
}

// Page resolves slug case-insensitively. A page that is not live yet is
// reported as domain.ErrNotFound.
func (s *ReaderService) Page(ctx context.Context, tenant domain.Tenant, slug string) (PageResult, error) {
	p, err := s.pages.GetBySlug(ctx, tenant.ID, slug)
	if err != nil {
		return PageResult{}, fmt.Errorf("service.ReaderService.Page: %w", err)
	}
	if !p.LiveAt(s.index.Now()) {
		return PageResult{}, fmt.Errorf("service.ReaderService.Page: %w", domain.ErrNotFound)
	}
	if p.Slug != slug {
		return PageResult{RedirectSlug: p.Slug}, nil
	}

	view := PageView{Page: p}
	if view.PostHTML, err = s.render.HTML(ctx, tenant.ID, p.Post); err != nil {
		return PageResult{}, fmt.Errorf("service.ReaderService.Page: post: %w", err)
	}
	if view.TranscriptHTML, err = s.render.HTML(ctx, tenant.ID, p.Transcript); err != nil {
		return PageResult{}, fmt.Errorf("service.ReaderService.Page: transcript: %w", err)
	}
	view.PostText = markup.Plain(p.Post)
	view.TranscriptText = markup.Plain(p.Transcript)

	tags, err := s.pages.ListTags(ctx, p.ID)
	if err != nil {
		return PageResult{}, fmt.Errorf("service.ReaderService.Page: tags: %w", err)
	}
	view.Tags = groupTags(tags)

	if view.Navigation, err = s.index.Navigation(ctx, p); err != nil {
		return PageResult{}, fmt.Errorf("service.ReaderService.Page: %w", err)
	}
	if view.Banner, view.Popup, err = selectSlots(ctx, s.ads, tenant.ID); err != nil {
		return PageResult{}, fmt.Errorf("service.ReaderService.Page: %w", err)
	}
	if view.Snippets, err = s.Snippets(ctx, tenant); err != nil {
		return PageResult{}, fmt.Errorf("service.ReaderService.Page: %w", err)
	}
	return PageResult{View: &view}, nil
}

// Feed returns the newest live pages with their rendered posts.
func (s *ReaderService) Feed(ctx context.Context, tenant domain.Tenant) ([]FeedItem, error) {
	pages, err := s.index.Feed(ctx, tenant.ID, feedSize)
	if err != nil {
		return nil, fmt.Errorf("service.ReaderService.Feed: %w", err)
	}
	items := make([]FeedItem, 0, len(pages))
	for _, p := range pages {
		html, err := s.render.HTML(ctx, tenant.ID, p.Post)
		if err != nil {
			return nil, fmt.Errorf("service.ReaderService.Feed: %w", err)
		}
		items = append(items, FeedItem{Page: p, PostHTML: html})
	}
	return items, nil
}

// Snippets returns the tenant's live (non-testing) snippets, global ones
// included, grouped by location.
func (s *ReaderService) Snippets(ctx context.Context, tenant domain.Tenant) (Snippets, error) {
	list, err := s.snippets.ListForTenant(ctx, tenant.ID, false)
	if err != nil {
		return nil, fmt.Errorf("service.ReaderService.Snippets: %w", err)
	}
	out := Snippets{}
	for _, sn := range list {
		out[sn.Location] = append(out[sn.Location], sn.Code)
	}
	return out, nil
}

// Comics lists every tenant for the cross-tenant index.
func (s *ReaderService) Comics(ctx context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error) {
	tenants, total, err := s.tenants.ListPaged(ctx, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ReaderService.Comics: %w", err)
	}
	return tenants, total, nil
}

// groupTags groups tags sorted by type title into one group per type.
func groupTags(tags []domain.ResolvedTag) []domain.TagGroup {
	groups := []domain.TagGroup{}
	for _, t := range tags {
		if n := len(groups); n == 0 || groups[n-1].Title != t.Type.Title {
			groups = append(groups, domain.TagGroup{Title: t.Type.Title})
		}
		g := &groups[len(groups)-1]
		g.Tags = append(g.Tags, domain.TagBadge{
			URL:   t.Ref().ArchiveURL(),
			Title: t.Tag.Title,
			Icon:  t.IconURL(),
		})
	}
	return groups
}
