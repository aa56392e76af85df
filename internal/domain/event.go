package domain

import "github.com/google/uuid"

// EntityKind names the kind of content a ContentEvent reports on.
type EntityKind string

const (
	EntityTenant  EntityKind = "tenant"
	EntityPage    EntityKind = "page"
	EntityChapter EntityKind = "chapter"
	EntityTag     EntityKind = "tag"
	EntityTagType EntityKind = "tag_type"
	EntityAd      EntityKind = "ad"
	EntitySnippet EntityKind = "snippet"
)

// ContentEvent is published by services after a write has committed.
// TenantID is nil only for global snippets. Slugs lists the page slugs a
// page event touched (old and new slug when a slug changed) and Tags the tags
// whose archive listings include the page, before and after the write.
type ContentEvent struct {
	Entity   EntityKind
	TenantID *uuid.UUID
	Slugs    []string
	Tags     []TagRef
}
