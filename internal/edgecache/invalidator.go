package edgecache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
)

// TenantSource loads the tenants an event purges. repo.TenantRepo satisfies it.
type TenantSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Tenant, error)
	ListWithEdgeCache(ctx context.Context) ([]domain.Tenant, error)
}

// Invalidator purges synchronously. It is called after the write committed,
// so a failure is reported and logged but never undoes the write, and it is
// not retried here.
type Invalidator struct {
	tenants TenantSource
	purger  Purger
	log     *slog.Logger
}

// NewInvalidator returns an Invalidator.
func NewInvalidator(tenants TenantSource, purger Purger, log *slog.Logger) *Invalidator {
	return &Invalidator{tenants: tenants, purger: purger, log: log}
}

// Publish purges the scope of ev on every affected tenant that has edge-cache
// credentials. Tenants without credentials are skipped silently. An event
// with no tenant (a global snippet) reaches every configured tenant.
// Any failure is returned wrapping domain.ErrPurgeFailed.
func (inv *Invalidator) Publish(ctx context.Context, ev domain.ContentEvent) error {
	targets, err := inv.targets(ctx, ev)
	if err != nil {
		return inv.fail(ctx, ev, err)
	}
	scope := ScopeFor(ev)
	var errs []error
	for _, t := range targets {
		if err := inv.purger.Purge(ctx, t, scope); err != nil {
			errs = append(errs, fmt.Errorf("tenant %s: %w", t.Slug, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return inv.fail(ctx, ev, err)
	}
	return nil
}

func (inv *Invalidator) targets(ctx context.Context, ev domain.ContentEvent) ([]domain.Tenant, error) {
	if ev.TenantID == nil {
		all, err := inv.tenants.ListWithEdgeCache(ctx)
		if err != nil {
			return nil, err
		}
		return all, nil
	}
	t, err := inv.tenants.GetByID(ctx, *ev.TenantID)
	if err != nil {
		return nil, err
	}
	if !t.HasEdgeCache() {
		return nil, nil
	}
	return []domain.Tenant{t}, nil
}

func (inv *Invalidator) fail(ctx context.Context, ev domain.ContentEvent, err error) error {
	inv.log.ErrorContext(ctx, "edge cache purge failed",
		"entity", ev.Entity,
		"error", err,
	)
	return fmt.Errorf("%w: %w", domain.ErrPurgeFailed, err)
}
