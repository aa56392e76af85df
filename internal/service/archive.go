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

// ArchiveView is the table of contents of a tenant.
type ArchiveView struct {
	Entries []domain.ArchiveEntry
	Banner  *domain.Ad
	Popup   *domain.Ad
}

// TagTypeView lists the tags of one type with their live page counts.
type TagTypeView struct {
	Type   domain.TagType
	Tags   []domain.TagBadge
	Banner *domain.Ad
	Popup  *domain.Ad
}

// TagView is one tag with its rendered post and the live pages carrying it.
type TagView struct {
	Tag      domain.ResolvedTag
	PostHTML string
	Pages    []domain.PageRef
	Banner   *domain.Ad
	Popup    *domain.Ad
}

// TagTypeResult is a view or a canonical-case redirect path.
type TagTypeResult struct {
	View       *TagTypeView
	RedirectTo string
}

// TagResult is a view or a canonical-case redirect path.
type TagResult struct {
	View       *TagView
	RedirectTo string
}

// ArchiveService builds the archive and tag listing views.
type ArchiveService struct {
	pages  repo.PageRepo
	tags   repo.TagRepo
	index  *ordering.Index
	render *markup.Renderer
	ads    *ads.Selector
}

// NewArchiveService constructs an ArchiveService.
func NewArchiveService(
	pages repo.PageRepo,
	tags repo.TagRepo,
	index *ordering.Index,
	render *markup.Renderer,
	selector *ads.Selector,
) *ArchiveService {
	return &ArchiveService{pages: pages, tags: tags, index: index, render: render, ads: selector}
}

// Archive returns live pages interleaved with chapters and random ads.
func (s *ArchiveService) Archive(ctx context.Context, tenant domain.Tenant) (ArchiveView, error) {
	entries, err := s.index.Archive(ctx, tenant.ID)
	if err != nil {
		return ArchiveView{}, fmt.Errorf("service.ArchiveService.Archive: %w", err)
	}
	view := ArchiveView{Entries: entries}
	if view.Banner, view.Popup, err = selectSlots(ctx, s.ads, tenant.ID); err != nil {
		return ArchiveView{}, fmt.Errorf("service.ArchiveService.Archive: %w", err)
	}
	return view, nil
}

// TagType resolves typeTitle case-insensitively. The type's pinned ad, when
// set, takes its slot.
func (s *ArchiveService) TagType(ctx context.Context, tenant domain.Tenant, typeTitle string) (TagTypeResult, error) {
	tt, err := s.tags.GetTypeByTitle(ctx, tenant.ID, typeTitle)
	if err != nil {
		return TagTypeResult{}, fmt.Errorf("service.ArchiveService.TagType: %w", err)
	}
	if tt.Title != typeTitle {
		return TagTypeResult{RedirectTo: domain.TypeArchiveURL(tt.Title)}, nil
	}

	counts, err := s.tags.ListByTypeWithCounts(ctx, tt.ID, s.index.Now())
	if err != nil {
		return TagTypeResult{}, fmt.Errorf("service.ArchiveService.TagType: %w", err)
	}
	view := TagTypeView{Type: tt, Tags: make([]domain.TagBadge, 0, len(counts))}
	for _, c := range counts {
		rt := domain.ResolvedTag{Tag: c.Tag, Type: tt}
		view.Tags = append(view.Tags, domain.TagBadge{
			URL:   rt.Ref().ArchiveURL(),
			Title: c.Tag.Title,
			Icon:  rt.IconURL(),
			Pages: c.Pages,
		})
	}
	if view.Banner, view.Popup, err = selectSlots(ctx, s.ads, tenant.ID, tt.AdOverrideID); err != nil {
		return TagTypeResult{}, fmt.Errorf("service.ArchiveService.TagType: %w", err)
	}
	return TagTypeResult{View: &view}, nil
}

// Tag resolves a tag case-insensitively. The tag's pinned ad wins over its
// type's, which wins over a random draw.
func (s *ArchiveService) Tag(ctx context.Context, tenant domain.Tenant, typeTitle, tagTitle string) (TagResult, error) {
	tt, err := s.tags.GetTypeByTitle(ctx, tenant.ID, typeTitle)
	if err != nil {
		return TagResult{}, fmt.Errorf("service.ArchiveService.Tag: type: %w", err)
	}
	tag, err := s.tags.GetByTitle(ctx, tt.ID, tagTitle)
	if err != nil {
		return TagResult{}, fmt.Errorf("service.ArchiveService.Tag: %w", err)
	}
	rt := domain.ResolvedTag{Tag: tag, Type: tt}
	if tt.Title != typeTitle || tag.Title != tagTitle {
		return TagResult{RedirectTo: rt.Ref().ArchiveURL()}, nil
	}

	view := TagView{Tag: rt}
	if view.PostHTML, err = s.render.HTML(ctx, tenant.ID, tag.Post); err != nil {
		return TagResult{}, fmt.Errorf("service.ArchiveService.Tag: %w", err)
	}
	pages, err := s.pages.ListLiveByTag(ctx, tag.ID, s.index.Now())
	if err != nil {
		return TagResult{}, fmt.Errorf("service.ArchiveService.Tag: pages: %w", err)
	}
	view.Pages = make([]domain.PageRef, 0, len(pages))
	for _, p := range pages {
		view.Pages = append(view.Pages, *p.Ref())
	}
	if view.Banner, view.Popup, err = selectSlots(ctx, s.ads, tenant.ID, tag.AdOverrideID, tt.AdOverrideID); err != nil {
		return TagResult{}, fmt.Errorf("service.ArchiveService.Tag: %w", err)
	}
	return TagResult{View: &view}, nil
}
