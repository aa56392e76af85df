package domain

import (
	"net/url"
	"time"

	"github.com/google/uuid"
)

// TagType groups tags within a tenant (e.g. "Characters", "Locations").
// Title is unique within the tenant. DefaultIcon is used by tags without their
// own icon. AdOverrideID pins an ad on the tag type's archive pages.
type TagType struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	Title        string     `json:"title"`
	DefaultIcon  string     `json:"default_icon,omitempty"`
	AdOverrideID *uuid.UUID `json:"ad_override_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Tag is a label within a TagType. Title is unique within the type and keeps
// the casing the editor typed. Post accepts markdown with cross-references.
type Tag struct {
	ID           uuid.UUID  `json:"id"`
	TypeID       uuid.UUID  `json:"type_id"`
	Title        string     `json:"title"`
	Icon         string     `json:"icon,omitempty"`
	Post         string     `json:"post,omitempty"`
	AdOverrideID *uuid.UUID `json:"ad_override_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// TagRef is a (type title, tag title) pair as written in a cross-reference token.
type TagRef struct {
	Type string
	Tag  string
}

// ArchiveURL is the public archive path of the referenced tag.
func (r TagRef) ArchiveURL() string {
	return TypeArchiveURL(r.Type) + "/" + url.PathEscape(r.Tag)
}

// TypeArchiveURL is the public archive path of a tag type.
func TypeArchiveURL(typeTitle string) string {
	return "/archive/tag/" + url.PathEscape(typeTitle)
}

// ResolvedTag is a tag joined with its type, as returned by batched lookups.
type ResolvedTag struct {
	Tag  Tag     `json:"tag"`
	Type TagType `json:"type"`
}

// Ref returns the stored-case reference of the tag.
func (r ResolvedTag) Ref() TagRef {
	return TagRef{Type: r.Type.Title, Tag: r.Tag.Title}
}

// IconURL returns the tag's own icon, falling back to the type's default icon.
// Returns "" when neither is set.
func (r ResolvedTag) IconURL() string {
	if r.Tag.Icon != "" {
		return r.Tag.Icon
	}
	return r.Type.DefaultIcon
}

// TagGroup is the set of tags of one type attached to a page.
type TagGroup struct {
	Title string     `json:"title"`
	Tags  []TagBadge `json:"tags"`
}

// TagBadge is the public rendering of a tag: archive URL, title and icon.
type TagBadge struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Icon  string `json:"icon"`
	Pages int    `json:"pages,omitempty"`
}
