package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
)

// ChapterInput is the editor's view of a chapter.
type ChapterInput struct {
	Title    string  `json:"title" validate:"required,max=200"`
	Ordering float64 `json:"ordering"`
}

// ChapterService implements the editor operations on chapters. Chapters only
// appear in the archive, so only the archive is purged.
type ChapterService struct {
	chapters repo.ChapterRepo
	validate Validator
	notify   Notifier
}

// NewChapterService constructs a ChapterService.
func NewChapterService(chapters repo.ChapterRepo, v Validator, n Notifier) *ChapterService {
	return &ChapterService{chapters: chapters, validate: v, notify: notifierOrNop(n)}
}

// List returns the tenant's chapters by ordering.
func (s *ChapterService) List(ctx context.Context, tenantID uuid.UUID) ([]domain.Chapter, error) {
	chapters, err := s.chapters.List(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("service.ChapterService.List: %w", err)
	}
	return chapters, nil
}

// Create validates and persists a chapter.
func (s *ChapterService) Create(ctx context.Context, tenantID uuid.UUID, in ChapterInput) (domain.Chapter, error) {
	if err := s.validate.Validate(in); err != nil {
		return domain.Chapter{}, fmt.Errorf("service.ChapterService.Create: %w", err)
	}
	c, err := s.chapters.Create(ctx, domain.Chapter{TenantID: tenantID, Title: in.Title, Ordering: in.Ordering})
	if err != nil {
		return domain.Chapter{}, fmt.Errorf("service.ChapterService.Create: %w", err)
	}
	if err := s.publish(ctx, tenantID); err != nil {
		return c, fmt.Errorf("service.ChapterService.Create: %w", err)
	}
	return c, nil
}

// Update overwrites a chapter.
func (s *ChapterService) Update(ctx context.Context, tenantID, id uuid.UUID, in ChapterInput) (domain.Chapter, error) {
	if err := s.validate.Validate(in); err != nil {
		return domain.Chapter{}, fmt.Errorf("service.ChapterService.Update: %w", err)
	}
	c, err := s.chapters.Update(ctx, domain.Chapter{ID: id, TenantID: tenantID, Title: in.Title, Ordering: in.Ordering})
	if err != nil {
		return domain.Chapter{}, fmt.Errorf("service.ChapterService.Update: %w", err)
	}
	if err := s.publish(ctx, tenantID); err != nil {
		return c, fmt.Errorf("service.ChapterService.Update: %w", err)
	}
	return c, nil
}

// Delete removes a chapter.
func (s *ChapterService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.chapters.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("service.ChapterService.Delete: %w", err)
	}
	if err := s.publish(ctx, tenantID); err != nil {
		return fmt.Errorf("service.ChapterService.Delete: %w", err)
	}
	return nil
}

func (s *ChapterService) publish(ctx context.Context, tenantID uuid.UUID) error {
	return s.notify.Publish(ctx, domain.ContentEvent{Entity: domain.EntityChapter, TenantID: &tenantID})
}
