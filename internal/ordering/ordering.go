// Package ordering answers navigation and listing queries over a tenant's
// live pages, and places chapters among them for the archive.
package ordering

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
)

// PageStore is the read surface of repo.PageRepo used here. Every method
// considers only pages live at asOf.
type PageStore interface {
	First(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)
	Last(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)
	Before(ctx context.Context, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error)
	After(ctx context.Context, tenantID uuid.UUID, ordering float64, asOf time.Time) (domain.Page, error)
	Random(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (domain.Page, error)
	ListLive(ctx context.Context, tenantID uuid.UUID, asOf time.Time, limit int, newestFirst bool) ([]domain.Page, error)
}

// ChapterStore lists a tenant's chapters.
type ChapterStore interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]domain.Chapter, error)
}

// Index evaluates liveness against its clock on every call, so a scheduled
// page appears as soon as its time passes with no other state change.
type Index struct {
	pages    PageStore
	chapters ChapterStore
	now      func() time.Time
}

// NewIndex returns an Index. A nil now uses time.Now.
func NewIndex(pages PageStore, chapters ChapterStore, now func() time.Time) *Index {
	if now == nil {
		now = time.Now
	}
	return &Index{pages: pages, chapters: chapters, now: now}
}

// Now returns the index's evaluation time.
func (x *Index) Now() time.Time {
	return x.now()
}

// Navigation returns the first, previous, next and last live pages relative
// to p. Missing neighbours are nil, not errors.
func (x *Index) Navigation(ctx context.Context, p domain.Page) (domain.Navigation, error) {
	asOf := x.now()
	var nav domain.Navigation
	steps := []struct {
		dst  **domain.PageRef
		find func() (domain.Page, error)
	}{
		{&nav.First, func() (domain.Page, error) { return x.pages.First(ctx, p.TenantID, asOf) }},
		{&nav.Previous, func() (domain.Page, error) { return x.pages.Before(ctx, p.TenantID, p.Ordering, asOf) }},
		{&nav.Next, func() (domain.Page, error) { return x.pages.After(ctx, p.TenantID, p.Ordering, asOf) }},
		{&nav.Last, func() (domain.Page, error) { return x.pages.Last(ctx, p.TenantID, asOf) }},
	}
	for _, s := range steps {
		found, err := s.find()
		switch {
		case err == nil:
			*s.dst = found.Ref()
		case errors.Is(err, domain.ErrNotFound):
		default:
			return domain.Navigation{}, fmt.Errorf("ordering.Index.Navigation: %w", err)
		}
	}
	return nav, nil
}

// Latest returns the live page with the greatest ordering.
// Returns domain.ErrNotFound when nothing is live yet.
func (x *Index) Latest(ctx context.Context, tenantID uuid.UUID) (domain.Page, error) {
	p, err := x.pages.Last(ctx, tenantID, x.now())
	if err != nil {
		return domain.Page{}, fmt.Errorf("ordering.Index.Latest: %w", err)
	}
	return p, nil
}

// Random returns a uniformly chosen live page.
func (x *Index) Random(ctx context.Context, tenantID uuid.UUID) (domain.Page, error) {
	p, err := x.pages.Random(ctx, tenantID, x.now())
	if err != nil {
		return domain.Page{}, fmt.Errorf("ordering.Index.Random: %w", err)
	}
	return p, nil
}

// Feed returns up to limit live pages, newest ordering first.
func (x *Index) Feed(ctx context.Context, tenantID uuid.UUID, limit int) ([]domain.Page, error) {
	pages, err := x.pages.ListLive(ctx, tenantID, x.now(), limit, true)
	if err != nil {
		return nil, fmt.Errorf("ordering.Index.Feed: %w", err)
	}
	return pages, nil
}

// Archive returns every live page interleaved with the tenant's chapters.
func (x *Index) Archive(ctx context.Context, tenantID uuid.UUID) ([]domain.ArchiveEntry, error) {
	pages, err := x.pages.ListLive(ctx, tenantID, x.now(), 0, false)
	if err != nil {
		return nil, fmt.Errorf("ordering.Index.Archive: pages: %w", err)
	}
	chapters, err := x.chapters.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("ordering.Index.Archive: chapters: %w", err)
	}
	return Interleave(pages, chapters), nil
}

// Interleave merges pages and chapters into one sequence ascending by
// ordering. A chapter sorts before a page with the same ordering so that it
// heads the page it introduces. Inputs need not be sorted.
func Interleave(pages []domain.Page, chapters []domain.Chapter) []domain.ArchiveEntry {
	out := make([]domain.ArchiveEntry, 0, len(pages)+len(chapters))
	for i := range chapters {
		out = append(out, domain.ArchiveEntry{Chapter: &chapters[i]})
	}
	for _, p := range pages {
		out = append(out, domain.ArchiveEntry{Page: p.Ref()})
	}
	slices.SortStableFunc(out, func(a, b domain.ArchiveEntry) int {
		if c := cmp.Compare(a.Ordering(), b.Ordering()); c != 0 {
			return c
		}
		return cmp.Compare(rank(a), rank(b))
	})
	return out
}

func rank(e domain.ArchiveEntry) int {
	if e.Chapter != nil {
		return 0
	}
	return 1
}

// Between returns an ordering key for inserting between prev and next,
// either of which may be nil at the ends of the sequence.
func Between(prev, next *float64) float64 {
	switch {
	case prev != nil && next != nil:
		return *prev + (*next-*prev)/2
	case prev != nil:
		return *prev + 1
	case next != nil:
		return *next - 1
	default:
		return 1
	}
}
