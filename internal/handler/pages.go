package handler

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/service"
)

// tenantAndID binds the {tenantID} and {id} path parameters.
func tenantAndID(w http.ResponseWriter, r *http.Request) (tenantID, id uuid.UUID, ok bool) {
	if tenantID, ok = pathUUID(w, r, "tenantID"); !ok {
		return
	}
	id, ok = pathUUID(w, r, "id")
	return
}

// GetEditorPage handles GET /tenants/{tenantID}/pages/{id}. Unlike the
// reader route it returns scheduled pages too.
func (s *Server) GetEditorPage(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	p, err := s.svc.Pages.Get(r.Context(), tenantID, id)
	if err != nil {
		s.writeError(w, r, "page", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePage handles POST /tenants/{tenantID}/pages.
// Without "ordering" the page is appended, or placed before the page named by
// "before".
func (s *Server) CreatePage(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	var in service.PageInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	p, err := s.svc.Pages.Create(r.Context(), tenantID, in)
	s.respond(w, r, http.StatusCreated, "page", p, err)
}

// UpdatePage handles PUT /tenants/{tenantID}/pages/{id}.
func (s *Server) UpdatePage(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	var in service.PageInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	p, err := s.svc.Pages.Update(r.Context(), tenantID, id, in)
	s.respond(w, r, http.StatusOK, "page", p, err)
}

// DeletePage handles DELETE /tenants/{tenantID}/pages/{id}.
func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	s.respondDeleted(w, r, "page", s.svc.Pages.Delete(r.Context(), tenantID, id))
}
