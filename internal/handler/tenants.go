package handler

import (
	"net/http"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/service"
)

// TenantResponse is a tenant as seen by editors. The edge-cache token is
// write-only; only its presence is reported.
type TenantResponse struct {
	domain.Tenant
	EdgeZone     string `json:"edge_zone"`
	HasEdgeToken bool   `json:"has_edge_token"`
}

func tenantToResponse(t domain.Tenant) TenantResponse {
	return TenantResponse{Tenant: t, EdgeZone: t.EdgeZone, HasEdgeToken: t.EdgeToken != ""}
}

// ListTenants handles GET /tenants.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTenants(w http.ResponseWriter, r *http.Request) {
	params, ok := pagination(w, r)
	if !ok {
		return
	}
	tenants, total, err := s.svc.Tenants.List(r.Context(), params)
	if err != nil {
		s.writeError(w, r, "tenant", err)
		return
	}
	data := make([]TenantResponse, len(tenants))
	for i, t := range tenants {
		data[i] = tenantToResponse(t)
	}
	writeJSON(w, http.StatusOK, listResponse(data, params, total))
}

// GetTenant handles GET /tenants/{tenantID}.
func (s *Server) GetTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	t, err := s.svc.Tenants.Get(r.Context(), id)
	if err != nil {
		s.writeError(w, r, "tenant", err)
		return
	}
	writeJSON(w, http.StatusOK, tenantToResponse(t))
}

// CreateTenant handles POST /tenants.
func (s *Server) CreateTenant(w http.ResponseWriter, r *http.Request) {
	var in service.TenantInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	t, err := s.svc.Tenants.Create(r.Context(), in)
	s.respond(w, r, http.StatusCreated, "tenant", tenantToResponse(t), err)
}

// UpdateTenant handles PUT /tenants/{tenantID}.
// An empty edge_token keeps the stored token.
func (s *Server) UpdateTenant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	var in service.TenantInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	t, err := s.svc.Tenants.Update(r.Context(), id, in)
	s.respond(w, r, http.StatusOK, "tenant", tenantToResponse(t), err)
}

// CreateAlias handles POST /tenants/{tenantID}/aliases.
func (s *Server) CreateAlias(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "tenantID")
	if !ok {
		return
	}
	var in service.DomainInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	a, err := s.svc.Tenants.CreateAlias(r.Context(), id, in)
	s.respond(w, r, http.StatusCreated, "tenant", a, err)
}

// DeleteAlias handles DELETE /aliases/{id}.
func (s *Server) DeleteAlias(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.respondDeleted(w, r, "alias domain", s.svc.Tenants.DeleteAlias(r.Context(), id))
}

// CreateIndexDomain handles POST /index-domains.
func (s *Server) CreateIndexDomain(w http.ResponseWriter, r *http.Request) {
	var in service.DomainInput
	if !s.decodeInto(w, r, &in) {
		return
	}
	d, err := s.svc.Tenants.CreateIndexDomain(r.Context(), in)
	s.respond(w, r, http.StatusCreated, "index domain", d, err)
}

// DeleteIndexDomain handles DELETE /index-domains/{id}.
func (s *Server) DeleteIndexDomain(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	s.respondDeleted(w, r, "index domain", s.svc.Tenants.DeleteIndexDomain(r.Context(), id))
}
