// Package domain contains the core data types for the webcomics service.
// This package has no dependencies on the other internal packages and is
// imported by every one of them (repo, service, handler and the pipeline
// packages).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Tenant is one independently branded comic served on its own primary domain.
// EdgeZone and EdgeToken hold the edge-cache credentials; when either is empty
// cache purging is disabled for the tenant.
type Tenant struct {
	ID          uuid.UUID         `json:"id"`
	Domain      string            `json:"domain"`
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Author      string            `json:"author,omitempty"`
	Genre       string            `json:"genre,omitempty"`
	HeaderImage string            `json:"header_image,omitempty"`
	Favicon     string            `json:"favicon_image,omitempty"`
	Background  string            `json:"background"`
	Overflow    string            `json:"overflow"`
	Style       map[string]string `json:"style,omitempty"`
	EdgeZone    string            `json:"-"`
	EdgeToken   string            `json:"-"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// HasEdgeCache reports whether the tenant has edge-cache credentials configured.
func (t Tenant) HasEdgeCache() bool {
	return t.EdgeZone != "" && t.EdgeToken != ""
}

// AliasDomain redirects every request to the owning tenant's primary domain.
type AliasDomain struct {
	ID       uuid.UUID `json:"id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Domain   string    `json:"domain"`
}

// IndexDomain is a tenant-less domain that serves the cross-tenant listing.
type IndexDomain struct {
	ID     uuid.UUID `json:"id"`
	Domain string    `json:"domain"`
}
