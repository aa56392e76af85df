package tenancy

import (
	"log/slog"
	"net/http"
	"strings"
)

// Middleware resolves the request host before any routing. Alias hosts get a
// 302 to the primary domain with the escaped path and raw query preserved.
// Every other request continues with the tenant, or nil, in its context.
func Middleware(resolver *Resolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := resolver.Resolve(r.Context(), r.Host, Scheme(r), r.URL.EscapedPath(), r.URL.RawQuery)
			if err != nil {
				log.ErrorContext(r.Context(), "tenant resolution failed", "host", r.Host, "error", err)
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				return
			}
			if res.Redirect != "" {
				http.Redirect(w, r, res.Redirect, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenant(r.Context(), res.Tenant)))
		})
	}
}

// RequireTenant redirects tenant-less requests to the site root, where the
// cross-tenant index is served.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if FromContext(r.Context()) == nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Scheme is the scheme the client used, honouring X-Forwarded-Proto from a
// TLS-terminating proxy.
func Scheme(r *http.Request) string {
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return "https"
	}
	return "http"
}
