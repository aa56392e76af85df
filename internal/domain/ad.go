package domain

import (
	"time"

	"github.com/google/uuid"
)

// AdKind is the slot an ad is shown in.
type AdKind string

const (
	AdBanner AdKind = "banner"
	AdPopup  AdKind = "popup"
)

// Valid reports whether k is one of the known kinds.
func (k AdKind) Valid() bool {
	return k == AdBanner || k == AdPopup
}

// Ad is a tenant's own advertisement. Only active ads take part in random
// selection; a pinned ad is shown regardless of Active.
type Ad struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Kind      AdKind    `json:"kind"`
	Image     string    `json:"image"`
	URL       string    `json:"url"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
