package edgecache_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/edgecache"
)

func TestScopeFor_Page(t *testing.T) {
	id := uuid.New()
	ev := domain.ContentEvent{
		Entity:   domain.EntityPage,
		TenantID: &id,
		Slugs:    []string{"old-slug", "new-slug", "new-slug"},
		Tags:     []domain.TagRef{{Type: "Main Cast", Tag: "Alice"}, {Type: "Main Cast", Tag: "Bob"}},
	}

	got := edgecache.ScopeFor(ev)

	assert.False(t, got.Everything)
	assert.ElementsMatch(t, []string{
		"/", "/feed", "/archive",
		"/comic/old-slug", "/data/old-slug",
		"/comic/new-slug", "/data/new-slug",
		"/archive/tag/Main%20Cast",
		"/archive/tag/Main%20Cast/Alice",
		"/archive/tag/Main%20Cast/Bob",
	}, got.Paths)
}

func TestScopeFor_Chapter(t *testing.T) {
	got := edgecache.ScopeFor(domain.ContentEvent{Entity: domain.EntityChapter})

	assert.Equal(t, edgecache.Scope{Paths: []string{"/archive"}}, got)
}

func TestScopeFor_FullPurgeEntities(t *testing.T) {
	for _, kind := range []domain.EntityKind{
		domain.EntityTenant, domain.EntityTag, domain.EntityTagType,
		domain.EntitySnippet, domain.EntityAd,
	} {
		t.Run(string(kind), func(t *testing.T) {
			assert.True(t, edgecache.ScopeFor(domain.ContentEvent{Entity: kind}).Everything)
		})
	}
}

func TestResizeURL(t *testing.T) {
	assert.Equal(t, "/cdn-cgi/image/width=400,format=auto/media/p1.png", edgecache.ResizeURL("/media/p1.png", 400))
	assert.Equal(t,
		"/cdn-cgi/image/width=200,format=auto/https://files.example.com/p1.png",
		edgecache.ResizeURL("https://files.example.com/p1.png", 200))
}
