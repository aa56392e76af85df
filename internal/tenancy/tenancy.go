// Package tenancy maps an inbound request host to a tenant, redirecting alias
// domains to their tenant's primary domain.
package tenancy

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"golang.org/x/net/idna"

	"github.com/pkordes/webcomics/internal/domain"
)

// TenantStore is the lookup surface the resolver needs. repo.TenantRepo
// satisfies it.
type TenantStore interface {
	GetByAlias(ctx context.Context, host string) (domain.Tenant, error)
	GetByDomain(ctx context.Context, host string) (domain.Tenant, error)
}

// Resolution is the outcome of resolving a host. Exactly one of Redirect or
// Tenant is set, or neither when the host belongs to no tenant.
type Resolution struct {
	Redirect string
	Tenant   *domain.Tenant
}

// Resolver resolves request hosts against the tenant store.
type Resolver struct {
	store TenantStore
}

// NewResolver returns a Resolver backed by store.
func NewResolver(store TenantStore) *Resolver {
	return &Resolver{store: store}
}

// NormalizeHost strips any port, lower-cases host and converts it to its
// ASCII (punycode) form. Hosts that fail IDNA conversion are returned
// lower-cased so they simply match nothing.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	host = strings.ToLower(host)
	if ascii, err := idna.Lookup.ToASCII(host); err == nil {
		return ascii
	}
	return host
}

// Resolve resolves host. The alias check runs first and short-circuits: an
// alias hit yields a redirect to {scheme}://{primary}{path}[?rawQuery] and no
// tenant. A host matching nothing is not an error.
func (r *Resolver) Resolve(ctx context.Context, host, scheme, path, rawQuery string) (Resolution, error) {
	host = NormalizeHost(host)

	owner, err := r.store.GetByAlias(ctx, host)
	switch {
	case err == nil:
		target := scheme + "://" + owner.Domain + path
		if rawQuery != "" {
			target += "?" + rawQuery
		}
		return Resolution{Redirect: target}, nil
	case !errors.Is(err, domain.ErrNotFound):
		return Resolution{}, fmt.Errorf("tenancy.Resolver.Resolve: alias: %w", err)
	}

	tenant, err := r.store.GetByDomain(ctx, host)
	switch {
	case err == nil:
		return Resolution{Tenant: &tenant}, nil
	case errors.Is(err, domain.ErrNotFound):
		return Resolution{}, nil
	default:
		return Resolution{}, fmt.Errorf("tenancy.Resolver.Resolve: domain: %w", err)
	}
}

type ctxKey struct{}

// WithTenant returns a copy of ctx carrying tenant, which may be nil.
func WithTenant(ctx context.Context, tenant *domain.Tenant) context.Context {
	return context.WithValue(ctx, ctxKey{}, tenant)
}

// FromContext returns the tenant attached by Middleware, or nil when the
// request has no tenant.
func FromContext(ctx context.Context) *domain.Tenant {
	t, _ := ctx.Value(ctxKey{}).(*domain.Tenant)
	return t
}
