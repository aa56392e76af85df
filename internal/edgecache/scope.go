// Package edgecache keeps a tenant's edge cache coherent with content writes.
package edgecache

import (
	"fmt"
	"strings"

	"github.com/pkordes/webcomics/internal/domain"
)

// Scope is what to purge for one tenant: everything, or a list of paths.
type Scope struct {
	Everything bool
	Paths      []string
}

// ScopeFor maps a content event to its purge scope. Pages purge their own
// URLs plus the listings that include them; chapters purge the archive;
// anything else changes shared chrome or navigation and purges everything.
func ScopeFor(ev domain.ContentEvent) Scope {
	switch ev.Entity {
	case domain.EntityPage:
		paths := []string{"/", "/feed", "/archive"}
		seen := map[string]bool{}
		add := func(p string) {
			if !seen[p] {
				seen[p] = true
				paths = append(paths, p)
			}
		}
		for _, slug := range ev.Slugs {
			add("/comic/" + slug)
			add("/data/" + slug)
		}
		for _, ref := range ev.Tags {
			add(domain.TypeArchiveURL(ref.Type))
			add(ref.ArchiveURL())
		}
		return Scope{Paths: paths}
	case domain.EntityChapter:
		return Scope{Paths: []string{"/archive"}}
	default:
		return Scope{Everything: true}
	}
}

// ResizeURL returns the edge image-resizing URL for an image path or
// absolute URL.
func ResizeURL(src string, width int) string {
	if !strings.HasPrefix(src, "/") {
		src = "/" + src
	}
	return fmt.Sprintf("/cdn-cgi/image/width=%d,format=auto%s", width, src)
}
