package domain

import (
	"time"

	"github.com/google/uuid"
)

// Page is a single image of a comic together with its position data.
// Ordering is the display key, unique within the tenant; ChronologicalOrdering
// is an independent key editors may use for in-story chronology.
// A page is live once PostedAt is not in the future.
type Page struct {
	ID                    uuid.UUID `json:"id"`
	TenantID              uuid.UUID `json:"tenant_id"`
	Slug                  string    `json:"slug"`
	Title                 string    `json:"title"`
	Ordering              float64   `json:"ordering"`
	ChronologicalOrdering float64   `json:"chronological_ordering"`
	PostedAt              time.Time `json:"posted_at"`
	Post                  string    `json:"post,omitempty"`
	Transcript            string    `json:"transcript,omitempty"`
	Image                 string    `json:"image"`
	AltText               string    `json:"alt_text,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// LiveAt reports whether the page is visible to readers at t.
func (p Page) LiveAt(t time.Time) bool {
	return !p.PostedAt.After(t)
}

// Ref returns the lightweight reference used in navigation bundles.
func (p Page) Ref() *PageRef {
	return &PageRef{Slug: p.Slug, Title: p.Title, Ordering: p.Ordering}
}

// PageRef identifies a page in navigation and listing payloads.
type PageRef struct {
	Slug     string  `json:"slug"`
	Title    string  `json:"title"`
	Ordering float64 `json:"ordering"`
}

// Navigation is the first/previous/next/last bundle for a live page.
// Any of the four may be nil at an open boundary.
type Navigation struct {
	First    *PageRef `json:"first"`
	Previous *PageRef `json:"previous"`
	Next     *PageRef `json:"next"`
	Last     *PageRef `json:"last"`
}
