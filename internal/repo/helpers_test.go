package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
	"github.com/pkordes/webcomics/testutil"
)

func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	return testutil.NewTx(t)
}

// mustCreateTenant inserts a tenant with a unique domain and slug.
func mustCreateTenant(t *testing.T, tenants repo.TenantRepo) domain.Tenant {
	t.Helper()
	suffix := uuid.NewString()[:8]
	tenant, err := tenants.Create(context.Background(), domain.Tenant{
		Domain:     fmt.Sprintf("comic-%s.example.com", suffix),
		Slug:       "comic-" + suffix,
		Title:      "Swords " + suffix,
		Background: "white",
		Overflow:   "white",
	})
	require.NoError(t, err)
	return tenant
}

// pageFixture returns a live page at ordering with a slug derived from it.
func pageFixture(tenantID uuid.UUID, ordering float64) domain.Page {
	return domain.Page{
		TenantID: tenantID,
		Slug:     fmt.Sprintf("page-%v", ordering),
		Title:    fmt.Sprintf("Page %v", ordering),
		Ordering: ordering,
		PostedAt: time.Now().Add(-time.Hour).UTC(),
		Image:    "https://files.example.com/page.png",
	}
}
