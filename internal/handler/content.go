package handler

import (
	"net/http"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/service"
)

// ---- chapters ---------------------------------------------------------------

// ListChapters handles GET /tenants/{tenantID}/chapters.
func (s *Server) ListChapters(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	chapters, err := s.svc.Chapters.List(r.Context(), tenantID)
	if err != nil {
		s.writeError(w, r, "chapter", err)
		return
	}
	if chapters == nil {
		chapters = []domain.Chapter{}
	}
	writeJSON(w, http.StatusOK, chapters)
}

// CreateChapter handles POST /tenants/{tenantID}/chapters.
func (s *Server) CreateChapter(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	var in service.ChapterInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	c, err := s.svc.Chapters.Create(r.Context(), tenantID, in)
	s.respond(w, r, http.StatusCreated, "chapter", c, err)
}

// UpdateChapter handles PUT /tenants/{tenantID}/chapters/{id}.
func (s *Server) UpdateChapter(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	var in service.ChapterInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	c, err := s.svc.Chapters.Update(r.Context(), tenantID, id, in)
	s.respond(w, r, http.StatusOK, "chapter", c, err)
}

// DeleteChapter handles DELETE /tenants/{tenantID}/chapters/{id}.
func (s *Server) DeleteChapter(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	s.respondDeleted(w, r, "chapter", s.svc.Chapters.Delete(r.Context(), tenantID, id))
}

// ---- ads --------------------------------------------------------------------

// CreateAd handles POST /tenants/{tenantID}/ads.
func (s *Server) CreateAd(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	var in service.AdInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	a, err := s.svc.Ads.Create(r.Context(), tenantID, in)
	s.respond(w, r, http.StatusCreated, "ad", a, err)
}

// UpdateAd handles PUT /tenants/{tenantID}/ads/{id}.
func (s *Server) UpdateAd(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	var in service.AdInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	a, err := s.svc.Ads.Update(r.Context(), tenantID, id, in)
	s.respond(w, r, http.StatusOK, "ad", a, err)
}

// DeleteAd handles DELETE /tenants/{tenantID}/ads/{id}.
func (s *Server) DeleteAd(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	s.respondDeleted(w, r, "ad", s.svc.Ads.Delete(r.Context(), tenantID, id))
}

// ---- snippets ---------------------------------------------------------------

// CreateSnippet handles POST /snippets. A snippet without tenant_id is
// injected into every comic.
func (s *Server) CreateSnippet(w http.ResponseWriter, r *http.Request) {
	var in service.SnippetInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	sn, err := s.svc.Snippets.Create(r.Context(), in)
	s.respond(w, r, http.StatusCreated, "snippet", sn, err)
}

// UpdateSnippet handles PUT /snippets/{id}.
func (s *Server) UpdateSnippet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var in service.SnippetInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	sn, err := s.svc.Snippets.Update(r.Context(), id, in)
	s.respond(w, r, http.StatusOK, "snippet", sn, err)
}

// DeleteSnippet handles DELETE /snippets/{id}.
func (s *Server) DeleteSnippet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.respondDeleted(w, r, "snippet", s.svc.Snippets.Delete(r.Context(), id))
}
