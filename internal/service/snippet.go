package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/repo"
)

// SnippetInput is the editor's view of a snippet. A nil TenantID makes the
// snippet global.
type SnippetInput struct {
	TenantID *uuid.UUID             `json:"tenant_id"`
	Location domain.SnippetLocation `json:"location" validate:"required,oneof=head_start body_end ad_header ad_content ad_info"`
	Code     string                 `json:"code" validate:"required"`
	Testing  bool                   `json:"testing"`
}

// SnippetService implements the editor operations on injected snippets.
// Changing a global snippet purges every tenant with an edge cache.
type SnippetService struct {
	snippets repo.SnippetRepo
	validate Validator
	notify   Notifier
}

// NewSnippetService constructs a SnippetService.
func NewSnippetService(snippets repo.SnippetRepo, v Validator, n Notifier) *SnippetService {
	return &SnippetService{snippets: snippets, validate: v, notify: notifierOrNop(n)}
}

// Create validates and persists a snippet.
func (s *SnippetService) Create(ctx context.Context, in SnippetInput) (domain.Snippet, error) {
	if err := s.validate.Validate(in); err != nil {
		return domain.Snippet{}, fmt.Errorf("service.SnippetService.Create: %w", err)
	}
	sn, err := s.snippets.Create(ctx, domain.Snippet{
		TenantID: in.TenantID,
		Location: in.Location,
		Code:     in.Code,
		Testing:  in.Testing,
	})
	if err != nil {
		return domain.Snippet{}, fmt.Errorf("service.SnippetService.Create: %w", err)
	}
	if err := s.publish(ctx, sn); err != nil {
		return sn, fmt.Errorf("service.SnippetService.Create: %w", err)
	}
	return sn, nil
}

// Update overwrites a snippet's location, code and testing flag. Its tenant
// cannot change.
func (s *SnippetService) Update(ctx context.Context, id uuid.UUID, in SnippetInput) (domain.Snippet, error) {
	if err := s.validate.Validate(in); err != nil {
		return domain.Snippet{}, fmt.Errorf("service.SnippetService.Update: %w", err)
	}
	sn, err := s.snippets.Update(ctx, domain.Snippet{ID: id, Location: in.Location, Code: in.Code, Testing: in.Testing})
	if err != nil {
		return domain.Snippet{}, fmt.Errorf("service.SnippetService.Update: %w", err)
	}
	if err := s.publish(ctx, sn); err != nil {
		return sn, fmt.Errorf("service.SnippetService.Update: %w", err)
	}
	return sn, nil
}

// Delete removes a snippet.
func (s *SnippetService) Delete(ctx context.Context, id uuid.UUID) error {
	sn, err := s.snippets.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service.SnippetService.Delete: %w", err)
	}
	if err := s.publish(ctx, sn); err != nil {
		return fmt.Errorf("service.SnippetService.Delete: %w", err)
	}
	return nil
}

func (s *SnippetService) publish(ctx context.Context, sn domain.Snippet) error {
	return s.notify.Publish(ctx, domain.ContentEvent{Entity: domain.EntitySnippet, TenantID: sn.TenantID})
}
