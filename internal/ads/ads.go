// Package ads picks the advertisement shown in a slot for one request.
package ads

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
)

// AdStore is the read surface of repo.AdRepo used by the selector.
type AdStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Ad, error)
	ListActive(ctx context.Context, tenantID uuid.UUID, kind domain.AdKind) ([]domain.Ad, error)
}

// Selector draws ads independently on every call.
type Selector struct {
	ads  AdStore
	intn func(n int) int
}

// NewSelector returns a Selector. intn must return a value in [0, n); nil
// uses math/rand/v2.IntN.
func NewSelector(ads AdStore, intn func(n int) int) *Selector {
	if intn == nil {
		intn = rand.IntN
	}
	return &Selector{ads: ads, intn: intn}
}

// Select returns the ad for a kind slot on a tenant's page. Pins are tried in
// order, most specific first; the first that names an ad of this tenant and
// kind wins even when the ad is inactive. Without a usable pin an active ad
// is drawn uniformly. Returns nil when the pool is empty.
func (s *Selector) Select(ctx context.Context, tenantID uuid.UUID, kind domain.AdKind, pins ...*uuid.UUID) (*domain.Ad, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("ads.Selector.Select: %w: unknown ad kind %q", domain.ErrValidation, kind)
	}
	pinned, err := s.load(ctx, pins)
	if err != nil {
		return nil, fmt.Errorf("ads.Selector.Select: %w", err)
	}
	ad, err := s.pick(ctx, tenantID, kind, pinned)
	if err != nil {
		return nil, fmt.Errorf("ads.Selector.Select: %w", err)
	}
	return ad, nil
}

// Slots is the pair of ads shown on one page view.
type Slots struct {
	Banner *domain.Ad
	Popup  *domain.Ad
}

// SelectSlots fills both slots with the rules of Select, loading each pin
// once for the two slots.
func (s *Selector) SelectSlots(ctx context.Context, tenantID uuid.UUID, pins ...*uuid.UUID) (Slots, error) {
	pinned, err := s.load(ctx, pins)
	if err != nil {
		return Slots{}, fmt.Errorf("ads.Selector.SelectSlots: %w", err)
	}
	var out Slots
	if out.Banner, err = s.pick(ctx, tenantID, domain.AdBanner, pinned); err != nil {
		return Slots{}, fmt.Errorf("ads.Selector.SelectSlots: %w", err)
	}
	if out.Popup, err = s.pick(ctx, tenantID, domain.AdPopup, pinned); err != nil {
		return Slots{}, fmt.Errorf("ads.Selector.SelectSlots: %w", err)
	}
	return out, nil
}

// load fetches the pinned ads in pin order. Nil and dangling pins are
// skipped.
func (s *Selector) load(ctx context.Context, pins []*uuid.UUID) ([]domain.Ad, error) {
	var pinned []domain.Ad
	for _, pin := range pins {
		if pin == nil {
			continue
		}
		ad, err := s.ads.GetByID(ctx, *pin)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			continue
		case err != nil:
			return nil, fmt.Errorf("pinned: %w", err)
		}
		pinned = append(pinned, ad)
	}
	return pinned, nil
}

func (s *Selector) pick(ctx context.Context, tenantID uuid.UUID, kind domain.AdKind, pinned []domain.Ad) (*domain.Ad, error) {
	for _, ad := range pinned {
		if ad.TenantID == tenantID && ad.Kind == kind {
			return &ad, nil
		}
	}

	pool, err := s.ads.ListActive(ctx, tenantID, kind)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}
	ad := pool[s.intn(len(pool))]
	return &ad, nil
}
