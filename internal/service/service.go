// Package service contains the business logic of the webcomic server.
// Reader services assemble public views from the pipeline packages; editor
// services validate input, write through the repos and publish a
// ContentEvent once the write has committed.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/ads"
	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
)

// Notifier receives content events after a write has committed.
// edgecache.Invalidator and edgecache.Queue both satisfy it.
type Notifier interface {
	Publish(ctx context.Context, ev domain.ContentEvent) error
}

// nopNotifier discards events; used when no edge cache is wired.
type nopNotifier struct{}

func (nopNotifier) Publish(context.Context, domain.ContentEvent) error { return nil }

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}

// Validator checks editor input. *validation.Validator satisfies it.
type Validator interface {
	Validate(s any) error
}

// selectSlots fills the banner and popup slots. Each pin only fills the slot
// of its own kind.
func selectSlots(ctx context.Context, sel *ads.Selector, tenantID uuid.UUID, pins ...*uuid.UUID) (*domain.Ad, *domain.Ad, error) {
	slots, err := sel.SelectSlots(ctx, tenantID, pins...)
	if err != nil {
		return nil, nil, err
	}
	return slots.Banner, slots.Popup, nil
}

// checkAdOwner rejects an ad override that does not name one of the
// tenant's own ads.
func checkAdOwner(ctx context.Context, adRepo repo.AdRepo, tenantID uuid.UUID, adID *uuid.UUID) error {
	if adID == nil {
		return nil
	}
	ad, err := adRepo.GetByID(ctx, *adID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("%w: ad_override_id does not exist", domain.ErrValidation)
	case err != nil:
		return err
	case ad.TenantID != tenantID:
		return fmt.Errorf("%w: ad_override_id belongs to another comic", domain.ErrValidation)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
