package handler

import (
	"net/http"

	"github.com/pkordes/webcomics/internal/service"
)

// CreateTagType handles POST /tenants/{tenantID}/tag-types.
func (s *Server) CreateTagType(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	var in service.TagTypeInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	tt, err := s.svc.Tags.CreateType(r.Context(), tenantID, in)
	s.respond(w, r, http.StatusCreated, "tag type", tt, err)
}

// UpdateTagType handles PUT /tenants/{tenantID}/tag-types/{id}.
func (s *Server) UpdateTagType(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	var in service.TagTypeInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	tt, err := s.svc.Tags.UpdateType(r.Context(), tenantID, id, in)
	s.respond(w, r, http.StatusOK, "tag type", tt, err)
}

// DeleteTagType handles DELETE /tenants/{tenantID}/tag-types/{id}.
func (s *Server) DeleteTagType(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	s.respondDeleted(w, r, "tag type", s.svc.Tags.DeleteType(r.Context(), tenantID, id))
}

// CreateTag handles POST /tenants/{tenantID}/tags.
func (s *Server) CreateTag(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	var in service.TagInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	t, err := s.svc.Tags.Create(r.Context(), tenantID, in)
	s.respond(w, r, http.StatusCreated, "tag", t, err)
}

// UpdateTag handles PUT /tenants/{tenantID}/tags/{id}.
func (s *Server) UpdateTag(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	var in service.TagInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	t, err := s.svc.Tags.Update(r.Context(), tenantID, id, in)
	s.respond(w, r, http.StatusOK, "tag", t, err)
}

// DeleteTag handles DELETE /tenants/{tenantID}/tags/{id}.
func (s *Server) DeleteTag(w http.ResponseWriter, r *http.Request) {
	tenantID, id, ok := tenantAndID(w, r)
	if !ok {
		return
	}
	s.respondDeleted(w, r, "tag", s.svc.Tags.Delete(r.Context(), tenantID, id))
}
