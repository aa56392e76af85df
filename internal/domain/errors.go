package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist in the database, or exists but is not yet live.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing title, unknown ad kind).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when a write would violate a uniqueness rule:
// a duplicate (tenant, slug) or (tenant, ordering) for pages, a duplicate
// title within a tenant or tag type, or a domain already claimed by another
// tenant, alias or index domain.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrPurgeFailed is returned alongside a successfully committed write when the
// edge cache could not be purged afterwards. The write is never rolled back.
var ErrPurgeFailed = errors.New("edge cache purge failed")
