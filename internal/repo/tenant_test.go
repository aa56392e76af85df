package repo_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
)

func TestTenantRepo_CreateAndGetByDomain(t *testing.T) {
	tenants := repo.NewTenantRepo(newTestTx(t))
	created := mustCreateTenant(t, tenants)

	got, err := tenants.GetByDomain(context.Background(), created.Domain)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "white", got.Background)
}

func TestTenantRepo_GetByDomain_NotFound(t *testing.T) {
	tenants := repo.NewTenantRepo(newTestTx(t))

	_, err := tenants.GetByDomain(context.Background(), "nobody.example.com")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTenantRepo_StyleRoundTrip(t *testing.T) {
	tenants := repo.NewTenantRepo(newTestTx(t))
	created := mustCreateTenant(t, tenants)
	created.Style = map[string]string{"tag-text-color": "#000000FF"}
	created.EdgeZone, created.EdgeToken = "zone", "token"

	updated, err := tenants.Update(context.Background(), created)

	require.NoError(t, err)
	assert.Equal(t, "#000000FF", updated.Style["tag-text-color"])
	assert.True(t, updated.HasEdgeCache())
}

func TestTenantRepo_AliasResolvesToOwner(t *testing.T) {
	tenants := repo.NewTenantRepo(newTestTx(t))
	ctx := context.Background()
	owner := mustCreateTenant(t, tenants)

	_, err := tenants.CreateAlias(ctx, domain.AliasDomain{TenantID: owner.ID, Domain: "www." + owner.Domain})
	require.NoError(t, err)

	got, err := tenants.GetByAlias(ctx, "www."+owner.Domain)

	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.ID)
}

// ---- three-way domain exclusivity ------------------------------------------

func TestTenantRepo_AliasCannotReusePrimaryDomain(t *testing.T) {
	tenants := repo.NewTenantRepo(newTestTx(t))
	ctx := context.Background()
	first := mustCreateTenant(t, tenants)
	second := mustCreateTenant(t, tenants)

	_, err := tenants.CreateAlias(ctx, domain.AliasDomain{TenantID: second.ID, Domain: first.Domain})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTenantRepo_IndexDomainCannotReuseAlias(t *testing.T) {
	tenants := repo.NewTenantRepo(newTestTx(t))
	ctx := context.Background()
	owner := mustCreateTenant(t, tenants)
	alias := "alias-" + uuid.NewString()[:8] + ".example.com"
	_, err := tenants.CreateAlias(ctx, domain.AliasDomain{TenantID: owner.ID, Domain: alias})
	require.NoError(t, err)

	_, err = tenants.CreateIndexDomain(ctx, domain.IndexDomain{Domain: alias})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTenantRepo_PrimaryCannotReuseIndexDomain(t *testing.T) {
	tenants := repo.NewTenantRepo(newTestTx(t))
	ctx := context.Background()
	index := "index-" + uuid.NewString()[:8] + ".example.com"
	_, err := tenants.CreateIndexDomain(ctx, domain.IndexDomain{Domain: index})
	require.NoError(t, err)

	_, err = tenants.Create(ctx, domain.Tenant{Domain: index, Slug: "s-" + uuid.NewString()[:8], Title: "T"})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTenantRepo_UpdateKeepsOwnDomain(t *testing.T) {
	tenants := repo.NewTenantRepo(newTestTx(t))
	created := mustCreateTenant(t, tenants)
	created.Title = "Renamed"

	got, err := tenants.Update(context.Background(), created)

	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
}
