package handler

import (
	"net/http"

	"github.com/pkordes/webcomics/internal/domain"
)

// ArchiveResponse is the body of GET /archive.
type ArchiveResponse struct {
	Entries []domain.ArchiveEntry `json:"entries"`
	Banner  *domain.Ad            `json:"banner"`
	Popup   *domain.Ad            `json:"popup"`
}

// TagTypeResponse is the body of GET /archive/tag/{type}.
type TagTypeResponse struct {
	Title  string            `json:"title"`
	Icon   string            `json:"icon"`
	Tags   []domain.TagBadge `json:"tags"`
	Banner *domain.Ad        `json:"banner"`
	Popup  *domain.Ad        `json:"popup"`
}

// TagResponse is the body of GET /archive/tag/{type}/{tag}.
type TagResponse struct {
	Type     string           `json:"type"`
	TypeURL  string           `json:"type_url"`
	Title    string           `json:"title"`
	Icon     string           `json:"icon"`
	PostHTML string           `json:"post_html"`
	Pages    []domain.PageRef `json:"pages"`
	Banner   *domain.Ad       `json:"banner"`
	Popup    *domain.Ad       `json:"popup"`
}

// Archive handles GET /archive.
func (s *Server) Archive(w http.ResponseWriter, r *http.Request) {
	v, err := s.svc.Archive.Archive(r.Context(), tenantOf(r))
	if err != nil {
		s.writeError(w, r, "archive", err)
		return
	}
	entries := v.Entries
	if entries == nil {
		entries = []domain.ArchiveEntry{}
	}
	w.Header().Set("Cache-Control", publicCache)
	writeJSON(w, http.StatusOK, ArchiveResponse{Entries: entries, Banner: v.Banner, Popup: v.Popup})
}

// TagType handles GET /archive/tag/{type}.
func (s *Server) TagType(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Archive.TagType(r.Context(), tenantOf(r), pathParam(r, "type"))
	if err != nil {
		s.writeError(w, r, "tag type", err)
		return
	}
	if res.RedirectTo != "" {
		http.Redirect(w, r, res.RedirectTo, http.StatusFound)
		return
	}
	v := res.View
	tags := v.Tags
	if tags == nil {
		tags = []domain.TagBadge{}
	}
	w.Header().Set("Cache-Control", publicCache)
	writeJSON(w, http.StatusOK, TagTypeResponse{
		Title:  v.Type.Title,
		Icon:   v.Type.DefaultIcon,
		Tags:   tags,
		Banner: v.Banner,
		Popup:  v.Popup,
	})
}

// Tag handles GET /archive/tag/{type}/{tag}.
func (s *Server) Tag(w http.ResponseWriter, r *http.Request) {
	res, err := s.svc.Archive.Tag(r.Context(), tenantOf(r), pathParam(r, "type"), pathParam(r, "tag"))
	if err != nil {
		s.writeError(w, r, "tag", err)
		return
	}
	if res.RedirectTo != "" {
		http.Redirect(w, r, res.RedirectTo, http.StatusFound)
		return
	}
	v := res.View
	pages := v.Pages
	if pages == nil {
		pages = []domain.PageRef{}
	}
	w.Header().Set("Cache-Control", publicCache)
	writeJSON(w, http.StatusOK, TagResponse{
		Type:     v.Tag.Type.Title,
		TypeURL:  domain.TypeArchiveURL(v.Tag.Type.Title),
		Title:    v.Tag.Tag.Title,
		Icon:     v.Tag.IconURL(),
		PostHTML: v.PostHTML,
		Pages:    pages,
		Banner:   v.Banner,
		Popup:    v.Popup,
	})
}
