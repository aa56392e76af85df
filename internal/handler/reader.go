package handler

import (
	"net/http"
	"net/url"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/edgecache"
	"github.com/pkordes/webcomics/internal/service"
	"github.com/pkordes/webcomics/internal/tenancy"
)

const (
	// Reader views are cached at the edge and purged on writes.
	publicCache = "public, max-age=3600"
	randomCache = "max-age=600"

	shareImageWidth = 1200
)

// PageResponse is the full reader payload of GET /comic/{slug}.
type PageResponse struct {
	Page           domain.Page       `json:"page"`
	PostHTML       string            `json:"post_html"`
	PostText       string            `json:"post_text"`
	TranscriptHTML string            `json:"transcript_html"`
	TranscriptText string            `json:"transcript_text"`
	ShareImage     string            `json:"share_image"`
	TagTypes       []domain.TagGroup `json:"tag_types"`
	Navigation     domain.Navigation `json:"navigation"`
	Banner         *domain.Ad        `json:"banner"`
	Popup          *domain.Ad        `json:"popup"`
	Snippets       service.Snippets  `json:"snippets"`
}

// PageDataResponse is the compact payload of GET /data/{slug}, used by the
// reader to swap pages without a full load.
type PageDataResponse struct {
	Slug       string            `json:"slug"`
	Title      string            `json:"title"`
	Post       string            `json:"post"`
	PostedAt   string            `json:"posted_at"`
	Transcript string            `json:"transcript"`
	Image      string            `json:"image"`
	AltText    string            `json:"alt_text"`
	TagTypes   []domain.TagGroup `json:"tag_types"`
	First      *string           `json:"first"`
	Previous   *string           `json:"previous"`
	Next       *string           `json:"next"`
	Last       *string           `json:"last"`
}

// tenantOf returns the tenant attached by tenancy.Middleware. Only call it
// behind tenancy.RequireTenant.
func tenantOf(r *http.Request) domain.Tenant {
	return *tenancy.FromContext(r.Context())
}

func comicURL(slug string) string {
	return "/comic/" + url.PathEscape(slug)
}

// Index handles GET /. A tenant host redirects to its newest live page; an
// index host lists every comic.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	t := tenancy.FromContext(r.Context())
	if t == nil {
		s.listComics(w, r)
		return
	}
	p, err := s.svc.Reader.Latest(r.Context(), *t)
	if err != nil {
		s.writeError(w, r, "page", err)
		return
	}
	http.Redirect(w, r, comicURL(p.Slug), http.StatusFound)
}

func (s *Server) listComics(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	comics, total, err := s.svc.Reader.Comics(r.Context(), params)
	if err != nil {
		s.writeError(w, r, "comic", err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse(comics, params, total))
}

// GetPage handles GET /comic/{slug}.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	res, ok := s.page(w, r, comicURL)
	if !ok {
		return
	}
	v := res.View
	w.Header().Set("Cache-Control", publicCache)
	writeJSON(w, http.StatusOK, PageResponse{
		Page:           v.Page,
		PostHTML:       v.PostHTML,
		PostText:       v.PostText,
		TranscriptHTML: v.TranscriptHTML,
		TranscriptText: v.TranscriptText,
		ShareImage:     shareImage(tenantOf(r), v.Page.Image),
		TagTypes:       v.Tags,
		Navigation:     v.Navigation,
		Banner:         v.Banner,
		Popup:          v.Popup,
		Snippets:       v.Snippets,
	})
}

// shareImage is the image link-preview cards point at. Tenants behind the
// edge cache get a resized copy.
func shareImage(t domain.Tenant, image string) string {
	if image == "" || !t.HasEdgeCache() {
		return image
	}
	return edgecache.ResizeURL(image, shareImageWidth)
}

// GetPageData handles GET /data/{slug}.
func (s *Server) GetPageData(w http.ResponseWriter, r *http.Request) {
	res, ok := s.page(w, r, func(slug string) string { return "/data/" + url.PathEscape(slug) })
	if !ok {
		return
	}
	v := res.View
	w.Header().Set("Cache-Control", publicCache)
	writeJSON(w, http.StatusOK, PageDataResponse{
		Slug:       v.Page.Slug,
		Title:      v.Page.Title,
		Post:       v.PostHTML,
		PostedAt:   v.Page.PostedAt.Format("January 2, 2006"),
		Transcript: v.TranscriptHTML,
		Image:      v.Page.Image,
		AltText:    v.Page.AltText,
		TagTypes:   v.Tags,
		First:      refSlug(v.Navigation.First),
		Previous:   refSlug(v.Navigation.Previous),
		Next:       refSlug(v.Navigation.Next),
		Last:       refSlug(v.Navigation.Last),
	})
}

// page loads the page named by the slug parameter. A non-canonical slug is
// answered with a redirect built by canonical.
func (s *Server) page(w http.ResponseWriter, r *http.Request, canonical func(string) string) (service.PageResult, bool) {
	res, err := s.svc.Reader.Page(r.Context(), tenantOf(r), pathParam(r, "slug"))
	if err != nil {
		s.writeError(w, r, "page", err)
		return res, false
	}
	if res.RedirectSlug != "" {
		http.Redirect(w, r, canonical(res.RedirectSlug), http.StatusFound)
		return res, false
	}
	return res, true
}

func refSlug(ref *domain.PageRef) *string {
	if ref == nil {
		return nil
	}
	return &ref.Slug
}

// LegacyPage handles GET /swords/{slug}, the reader path of older links.
func (s *Server) LegacyPage(w http.ResponseWriter, r *http.Request) {
	target := comicURL(pathParam(r, "slug"))
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
}

// RandomPage handles GET /random.
func (s *Server) RandomPage(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Reader.Random(r.Context(), tenantOf(r))
	if err != nil {
		s.writeError(w, r, "page", err)
		return
	}
	w.Header().Set("Cache-Control", randomCache)
	http.Redirect(w, r, comicURL(p.Slug), http.StatusFound)
}

// RobotsTxt handles GET /robots.txt.
func (s *Server) RobotsTxt(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("User-agent: *\nDisallow:\n"))
}

// AdsTxt handles GET /ads.txt by redirecting to the configured file.
func (s *Server) AdsTxt(w http.ResponseWriter, r *http.Request) {
	if s.opts.AdsTxtURL == "" {
		notFound(w, "ads.txt not configured")
		return
	}
	http.Redirect(w, r, s.opts.AdsTxtURL, http.StatusFound)
}
