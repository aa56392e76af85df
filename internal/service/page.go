package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/ordering"
	"github.com/pkordes/webcomics/internal/repo"
)

// PageInput is the editor's view of a page. When Ordering is nil the page
// is placed just before the page named by Before, or appended when Before
// is empty. A nil PostedAt publishes immediately.
type PageInput struct {
	Slug                  string      `json:"slug" validate:"required,slug,max=200"`
	Title                 string      `json:"title" validate:"max=200"`
	Ordering              *float64    `json:"ordering"`
	Before                string      `json:"before,omitempty" validate:"omitempty,slug"`
	ChronologicalOrdering *float64    `json:"chronological_ordering"`
	PostedAt              *time.Time  `json:"posted_at"`
	Post                  string      `json:"post"`
	Transcript            string      `json:"transcript"`
	Image                 string      `json:"image" validate:"required,max=500"`
	AltText               string      `json:"alt_text" validate:"max=500"`
	TagIDs                []uuid.UUID `json:"tag_ids"`
}

// PageService implements the editor operations on pages.
type PageService struct {
	pages    repo.PageRepo
	tags     repo.TagRepo
	validate Validator
	notify   Notifier
	now      func() time.Time
}

// NewPageService constructs a PageService. A nil now uses time.Now.
func NewPageService(pages repo.PageRepo, tags repo.TagRepo, v Validator, n Notifier, now func() time.Time) *PageService {
	if now == nil {
		now = time.Now
	}
	return &PageService{pages: pages, tags: tags, validate: v, notify: notifierOrNop(n), now: now}
}

// Get returns a page regardless of liveness.
func (s *PageService) Get(ctx context.Context, tenantID, id uuid.UUID) (domain.Page, error) {
	p, err := s.pages.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Get: %w", err)
	}
	return p, nil
}

// Create validates and persists a page with its tags. Slug or ordering
// collisions are returned as domain.ErrConflict. A purge failure is returned
// wrapped alongside the created page.
func (s *PageService) Create(ctx context.Context, tenantID uuid.UUID, in PageInput) (domain.Page, error) {
	refs, err := s.prepare(ctx, tenantID, in)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Create: %w", err)
	}
	p, err := s.build(ctx, tenantID, in)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Create: %w", err)
	}

	created, err := s.pages.Create(ctx, p, in.TagIDs)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Create: %w", err)
	}

	ev := domain.ContentEvent{Entity: domain.EntityPage, TenantID: &tenantID, Slugs: []string{created.Slug}, Tags: refs}
	if err := s.notify.Publish(ctx, ev); err != nil {
		return created, fmt.Errorf("service.PageService.Create: %w", err)
	}
	return created, nil
}

// Update overwrites a page and its tags. The purge covers both the old and
// the new slug and tags.
func (s *PageService) Update(ctx context.Context, tenantID, id uuid.UUID, in PageInput) (domain.Page, error) {
	refs, err := s.prepare(ctx, tenantID, in)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Update: %w", err)
	}
	old, err := s.pages.GetByID(ctx, tenantID, id)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Update: %w", err)
	}
	oldTags, err := s.pages.ListTags(ctx, id)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Update: %w", err)
	}

	// Omitted position and schedule fields keep their stored values.
	if in.Ordering == nil && in.Before == "" {
		in.Ordering = &old.Ordering
	}
	if in.ChronologicalOrdering == nil {
		in.ChronologicalOrdering = &old.ChronologicalOrdering
	}
	if in.PostedAt == nil {
		in.PostedAt = &old.PostedAt
	}
	next, err := s.build(ctx, tenantID, in)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Update: %w", err)
	}
	next.ID, next.CreatedAt = old.ID, old.CreatedAt

	updated, err := s.pages.Update(ctx, next, in.TagIDs)
	if err != nil {
		return domain.Page{}, fmt.Errorf("service.PageService.Update: %w", err)
	}

	for _, t := range oldTags {
		refs = append(refs, t.Ref())
	}
	ev := domain.ContentEvent{
		Entity:   domain.EntityPage,
		TenantID: &tenantID,
		Slugs:    []string{old.Slug, updated.Slug},
		Tags:     refs,
	}
	if err := s.notify.Publish(ctx, ev); err != nil {
		return updated, fmt.Errorf("service.PageService.Update: %w", err)
	}
	return updated, nil
}

// Delete removes a page and purges its URLs and listings.
func (s *PageService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tags, err := s.pages.ListTags(ctx, id)
	if err != nil {
		return fmt.Errorf("service.PageService.Delete: %w", err)
	}
	deleted, err := s.pages.Delete(ctx, tenantID, id)
	if err != nil {
		return fmt.Errorf("service.PageService.Delete: %w", err)
	}

	refs := make([]domain.TagRef, 0, len(tags))
	for _, t := range tags {
		refs = append(refs, t.Ref())
	}
	ev := domain.ContentEvent{Entity: domain.EntityPage, TenantID: &tenantID, Slugs: []string{deleted.Slug}, Tags: refs}
	if err := s.notify.Publish(ctx, ev); err != nil {
		return fmt.Errorf("service.PageService.Delete: %w", err)
	}
	return nil
}

// prepare validates in and checks that every tag belongs to the tenant,
// returning the tags' references.
func (s *PageService) prepare(ctx context.Context, tenantID uuid.UUID, in PageInput) ([]domain.TagRef, error) {
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}
	refs := make([]domain.TagRef, 0, len(in.TagIDs))
	for _, id := range in.TagIDs {
		t, err := s.tags.GetByID(ctx, tenantID, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: tag %s does not exist", domain.ErrValidation, id)
		}
		if err != nil {
			return nil, err
		}
		refs = append(refs, t.Ref())
	}
	return refs, nil
}

// build turns in into a page, resolving the ordering key.
func (s *PageService) build(ctx context.Context, tenantID uuid.UUID, in PageInput) (domain.Page, error) {
	key, err := s.orderingFor(ctx, tenantID, in)
	if err != nil {
		return domain.Page{}, err
	}
	p := domain.Page{
		TenantID:              tenantID,
		Slug:                  in.Slug,
		Title:                 in.Title,
		Ordering:              key,
		ChronologicalOrdering: key,
		PostedAt:              s.now().UTC(),
		Post:                  in.Post,
		Transcript:            in.Transcript,
		Image:                 in.Image,
		AltText:               in.AltText,
	}
	if in.ChronologicalOrdering != nil {
		p.ChronologicalOrdering = *in.ChronologicalOrdering
	}
	if in.PostedAt != nil {
		p.PostedAt = in.PostedAt.UTC()
	}
	return p, nil
}

func (s *PageService) orderingFor(ctx context.Context, tenantID uuid.UUID, in PageInput) (float64, error) {
	if in.Ordering != nil {
		return *in.Ordering, nil
	}
	if in.Before != "" {
		next, err := s.pages.GetBySlug(ctx, tenantID, in.Before)
		if errors.Is(err, domain.ErrNotFound) {
			return 0, fmt.Errorf("%w: before page %q does not exist", domain.ErrValidation, in.Before)
		}
		if err != nil {
			return 0, err
		}
		prev, _, err := s.pages.OrderingBounds(ctx, tenantID, next.Ordering)
		if err != nil {
			return 0, err
		}
		return ordering.Between(prev, &next.Ordering), nil
	}
	highest, err := s.pages.MaxOrdering(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	return ordering.Between(highest, nil), nil
}
