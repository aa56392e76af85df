package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chapter is a navigational marker placed in the same ordering space as pages.
// It carries no image and is never part of page navigation.
type Chapter struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Title     string    `json:"title"`
	Ordering  float64   `json:"ordering"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ArchiveEntry is one row of the archive table of contents: exactly one of
// Chapter or Page is set.
type ArchiveEntry struct {
	Chapter *Chapter `json:"chapter,omitempty"`
	Page    *PageRef `json:"page,omitempty"`
}

// Ordering returns the key of whichever item the entry holds.
func (e ArchiveEntry) Ordering() float64 {
	if e.Chapter != nil {
		return e.Chapter.Ordering
	}
	return e.Page.Ordering
}
