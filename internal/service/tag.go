package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
)

// TagTypeInput is the editor's view of a tag type.
type TagTypeInput struct {
	Title        string     `json:"title" validate:"required,title,max=100"`
	DefaultIcon  string     `json:"default_icon" validate:"max=500"`
	AdOverrideID *uuid.UUID `json:"ad_override_id"`
}

// TagInput is the editor's view of a tag.
type TagInput struct {
	TypeID       uuid.UUID  `json:"type_id" validate:"required"`
	Title        string     `json:"title" validate:"required,title,max=100"`
	Icon         string     `json:"icon" validate:"max=500"`
	Post         string     `json:"post"`
	AdOverrideID *uuid.UUID `json:"ad_override_id"`
}

// TagService implements the editor operations on tag types and tags.
// Titles must fit the <Type:Tag> reference grammar. Every change purges the
// tenant's whole edge cache since tags appear on many pages.
type TagService struct {
	tags     repo.TagRepo
	ads      repo.AdRepo
	validate Validator
	notify   Notifier
}

// NewTagService constructs a TagService.
func NewTagService(tags repo.TagRepo, adRepo repo.AdRepo, v Validator, n Notifier) *TagService {
	return &TagService{tags: tags, ads: adRepo, validate: v, notify: notifierOrNop(n)}
}

// CreateType validates and persists a tag type.
func (s *TagService) CreateType(ctx context.Context, tenantID uuid.UUID, in TagTypeInput) (domain.TagType, error) {
	if err := s.checkType(ctx, tenantID, in); err != nil {
		return domain.TagType{}, fmt.Errorf("service.TagService.CreateType: %w", err)
	}
	tt, err := s.tags.CreateType(ctx, domain.TagType{
		TenantID:     tenantID,
		Title:        in.Title,
		DefaultIcon:  in.DefaultIcon,
		AdOverrideID: in.AdOverrideID,
	})
	if err != nil {
		return domain.TagType{}, fmt.Errorf("service.TagService.CreateType: %w", err)
	}
	if err := s.publish(ctx, domain.EntityTagType, tenantID); err != nil {
		return tt, fmt.Errorf("service.TagService.CreateType: %w", err)
	}
	return tt, nil
}

// UpdateType overwrites a tag type.
func (s *TagService) UpdateType(ctx context.Context, tenantID, id uuid.UUID, in TagTypeInput) (domain.TagType, error) {
	if err := s.checkType(ctx, tenantID, in); err != nil {
		return domain.TagType{}, fmt.Errorf("service.TagService.UpdateType: %w", err)
	}
	tt, err := s.tags.UpdateType(ctx, domain.TagType{
		ID:           id,
		TenantID:     tenantID,
		Title:        in.Title,
		DefaultIcon:  in.DefaultIcon,
		AdOverrideID: in.AdOverrideID,
	})
	if err != nil {
		return domain.TagType{}, fmt.Errorf("service.TagService.UpdateType: %w", err)
	}
	if err := s.publish(ctx, domain.EntityTagType, tenantID); err != nil {
		return tt, fmt.Errorf("service.TagService.UpdateType: %w", err)
	}
	return tt, nil
}

// DeleteType removes a tag type and its tags.
func (s *TagService) DeleteType(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.tags.DeleteType(ctx, tenantID, id); err != nil {
		return fmt.Errorf("service.TagService.DeleteType: %w", err)
	}
	if err := s.publish(ctx, domain.EntityTagType, tenantID); err != nil {
		return fmt.Errorf("service.TagService.DeleteType: %w", err)
	}
	return nil
}

// Create validates and persists a tag under one of the tenant's types.
func (s *TagService) Create(ctx context.Context, tenantID uuid.UUID, in TagInput) (domain.Tag, error) {
	if err := s.checkTag(ctx, tenantID, in); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	t, err := s.tags.Create(ctx, tagFromInput(in))
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Create: %w", err)
	}
	if err := s.publish(ctx, domain.EntityTag, tenantID); err != nil {
		return t, fmt.Errorf("service.TagService.Create: %w", err)
	}
	return t, nil
}

// Update overwrites a tag. Editing only the icon still purges everything,
// once.
func (s *TagService) Update(ctx context.Context, tenantID, id uuid.UUID, in TagInput) (domain.Tag, error) {
	if err := s.checkTag(ctx, tenantID, in); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	if _, err := s.tags.GetByID(ctx, tenantID, id); err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	next := tagFromInput(in)
	next.ID = id
	t, err := s.tags.Update(ctx, next)
	if err != nil {
		return domain.Tag{}, fmt.Errorf("service.TagService.Update: %w", err)
	}
	if err := s.publish(ctx, domain.EntityTag, tenantID); err != nil {
		return t, fmt.Errorf("service.TagService.Update: %w", err)
	}
	return t, nil
}

// Delete removes a tag.
func (s *TagService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.tags.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	if err := s.publish(ctx, domain.EntityTag, tenantID); err != nil {
		return fmt.Errorf("service.TagService.Delete: %w", err)
	}
	return nil
}

func (s *TagService) checkType(ctx context.Context, tenantID uuid.UUID, in TagTypeInput) error {
	if err := s.validate.Validate(in); err != nil {
		return err
	}
	return checkAdOwner(ctx, s.ads, tenantID, in.AdOverrideID)
}

func (s *TagService) checkTag(ctx context.Context, tenantID uuid.UUID, in TagInput) error {
	if err := s.validate.Validate(in); err != nil {
		return err
	}
	if _, err := s.tags.GetTypeByID(ctx, tenantID, in.TypeID); err != nil {
		if isNotFound(err) {
			return fmt.Errorf("%w: type_id does not exist", domain.ErrValidation)
		}
		return err
	}
	return checkAdOwner(ctx, s.ads, tenantID, in.AdOverrideID)
}

func (s *TagService) publish(ctx context.Context, kind domain.EntityKind, tenantID uuid.UUID) error {
	return s.notify.Publish(ctx, domain.ContentEvent{Entity: kind, TenantID: &tenantID})
}

func tagFromInput(in TagInput) domain.Tag {
	return domain.Tag{
		TypeID:       in.TypeID,
		Title:        in.Title,
		Icon:         in.Icon,
		Post:         in.Post,
		AdOverrideID: in.AdOverrideID,
	}
}
