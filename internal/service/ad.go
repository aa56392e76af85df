package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
)

// AdInput is the editor's view of an ad.
type AdInput struct {
	Kind   domain.AdKind `json:"kind" validate:"required,oneof=banner popup"`
	Image  string        `json:"image" validate:"required,max=500"`
	URL    string        `json:"url" validate:"required,url,max=500"`
	Active bool          `json:"active"`
}

// AdService implements the editor operations on ads. Ads appear on every
// reader view, so each change purges the whole tenant.
type AdService struct {
	ads      repo.AdRepo
	validate Validator
	notify   Notifier
}

// NewAdService constructs an AdService.
func NewAdService(adRepo repo.AdRepo, v Validator, n Notifier) *AdService {
	return &AdService{ads: adRepo, validate: v, notify: notifierOrNop(n)}
}

// Create validates and persists an ad.
func (s *AdService) Create(ctx context.Context, tenantID uuid.UUID, in AdInput) (domain.Ad, error) {
	if err := s.validate.Validate(in); err != nil {
		return domain.Ad{}, fmt.Errorf("service.AdService.Create: %w", err)
	}
	ad, err := s.ads.Create(ctx, domain.Ad{TenantID: tenantID, Kind: in.Kind, Image: in.Image, URL: in.URL, Active: in.Active})
	if err != nil {
		return domain.Ad{}, fmt.Errorf("service.AdService.Create: %w", err)
	}
	if err := s.publish(ctx, tenantID); err != nil {
		return ad, fmt.Errorf("service.AdService.Create: %w", err)
	}
	return ad, nil
}

// Update overwrites an ad.
func (s *AdService) Update(ctx context.Context, tenantID, id uuid.UUID, in AdInput) (domain.Ad, error) {
	if err := s.validate.Validate(in); err != nil {
		return domain.Ad{}, fmt.Errorf("service.AdService.Update: %w", err)
	}
	ad, err := s.ads.Update(ctx, domain.Ad{ID: id, TenantID: tenantID, Kind: in.Kind, Image: in.Image, URL: in.URL, Active: in.Active})
	if err != nil {
		return domain.Ad{}, fmt.Errorf("service.AdService.Update: %w", err)
	}
	if err := s.publish(ctx, tenantID); err != nil {
		return ad, fmt.Errorf("service.AdService.Update: %w", err)
	}
	return ad, nil
}

// Delete removes an ad. Overrides pointing at it are cleared by the schema.
func (s *AdService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.ads.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("service.AdService.Delete: %w", err)
	}
	if err := s.publish(ctx, tenantID); err != nil {
		return fmt.Errorf("service.AdService.Delete: %w", err)
	}
	return nil
}

func (s *AdService) publish(ctx context.Context, tenantID uuid.UUID) error {
	return s.notify.Publish(ctx, domain.ContentEvent{Entity: domain.EntityAd, TenantID: &tenantID})
}
