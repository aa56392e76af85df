package edgecache

import (
	"context"
	"fmt"

	"github.com/cloudflare/cloudflare-go"

	"github.com/pkordes/webcomics/internal/domain"
)

// maxFilesPerPurge is the provider's limit on URLs in one purge request.
const maxFilesPerPurge = 30

// Purger issues a purge against a tenant's edge cache.
type Purger interface {
	Purge(ctx context.Context, tenant domain.Tenant, scope Scope) error
}

// CloudflarePurger purges through the Cloudflare API using each tenant's own
// zone and token.
type CloudflarePurger struct {
	opts []cloudflare.Option
}

// NewCloudflarePurger returns a purger. A non-empty baseURL overrides the
// API endpoint; opts are passed to every client.
func NewCloudflarePurger(baseURL string, opts ...cloudflare.Option) *CloudflarePurger {
	if baseURL != "" {
		opts = append(opts, cloudflare.BaseURL(baseURL))
	}
	return &CloudflarePurger{opts: opts}
}

// Purge sends purge_everything or the scope's paths as absolute https URLs
// on the tenant's primary domain, in batches the API accepts.
func (p *CloudflarePurger) Purge(ctx context.Context, tenant domain.Tenant, scope Scope) error {
	api, err := cloudflare.NewWithAPIToken(tenant.EdgeToken, p.opts...)
	if err != nil {
		return fmt.Errorf("edgecache.CloudflarePurger.Purge: client: %w", err)
	}

	if scope.Everything {
		if _, err := api.PurgeCache(ctx, tenant.EdgeZone, cloudflare.PurgeCacheRequest{Everything: true}); err != nil {
			return fmt.Errorf("edgecache.CloudflarePurger.Purge: everything: %w", err)
		}
		return nil
	}

	files := make([]string, 0, len(scope.Paths))
	for _, path := range scope.Paths {
		files = append(files, "https://"+tenant.Domain+path)
	}
	for start := 0; start < len(files); start += maxFilesPerPurge {
		end := min(start+maxFilesPerPurge, len(files))
		if _, err := api.PurgeCache(ctx, tenant.EdgeZone, cloudflare.PurgeCacheRequest{Files: files[start:end]}); err != nil {
			return fmt.Errorf("edgecache.CloudflarePurger.Purge: files: %w", err)
		}
	}
	return nil
}
