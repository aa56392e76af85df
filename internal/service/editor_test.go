package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/service"
	"github.com/pkordes/webcomics/internal/validation"
)

// ---- chapters --------------------------------------------------------------

func TestChapterService_Create_PublishesChapterEvent(t *testing.T) {
	n := &recordingNotifier{}
	chapters := &mockChapterRepo{create: func(_ context.Context, c domain.Chapter) (domain.Chapter, error) { return c, nil }}
	svc := service.NewChapterService(chapters, validation.New(), n)

	got, err := svc.Create(context.Background(), comic.ID, service.ChapterInput{Title: "Act I", Ordering: 0.5})

	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Ordering)
	require.Len(t, n.events, 1)
	assert.Equal(t, domain.EntityChapter, n.events[0].Entity)
}

func TestChapterService_Create_MissingTitle(t *testing.T) {
	svc := service.NewChapterService(&mockChapterRepo{}, validation.New(), &recordingNotifier{})

	_, err := svc.Create(context.Background(), comic.ID, service.ChapterInput{Ordering: 1})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- ads -------------------------------------------------------------------

func TestAdService_Create_PublishesAdEvent(t *testing.T) {
	n := &recordingNotifier{}
	adRepo := &mockAdRepo{create: func(_ context.Context, a domain.Ad) (domain.Ad, error) { return a, nil }}
	svc := service.NewAdService(adRepo, validation.New(), n)

	got, err := svc.Create(context.Background(), comic.ID, service.AdInput{
		Kind:  domain.AdPopup,
		Image: "/media/ad.png",
		URL:   "https://shop.example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, comic.ID, got.TenantID)
	require.Len(t, n.events, 1)
	assert.Equal(t, domain.EntityAd, n.events[0].Entity)
}

func TestAdService_Create_UnknownKind(t *testing.T) {
	svc := service.NewAdService(&mockAdRepo{}, validation.New(), &recordingNotifier{})

	_, err := svc.Create(context.Background(), comic.ID, service.AdInput{Kind: "sidebar", Image: "x", URL: "https://e.com"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- snippets --------------------------------------------------------------

func TestSnippetService_GlobalSnippetEventHasNoTenant(t *testing.T) {
	n := &recordingNotifier{}
	snippets := &mockSnippetRepo{create: func(_ context.Context, s domain.Snippet) (domain.Snippet, error) { return s, nil }}
	svc := service.NewSnippetService(snippets, validation.New(), n)

	_, err := svc.Create(context.Background(), service.SnippetInput{Location: domain.SnippetBodyEnd, Code: "<script></script>"})

	require.NoError(t, err)
	require.Len(t, n.events, 1)
	assert.Equal(t, domain.EntitySnippet, n.events[0].Entity)
	assert.Nil(t, n.events[0].TenantID)
}

func TestSnippetService_Delete_PublishesForOwner(t *testing.T) {
	n := &recordingNotifier{}
	owner := comic.ID
	snippets := &mockSnippetRepo{delete: func(_ context.Context, id uuid.UUID) (domain.Snippet, error) {
		return domain.Snippet{ID: id, TenantID: &owner}, nil
	}}
	svc := service.NewSnippetService(snippets, validation.New(), n)

	require.NoError(t, svc.Delete(context.Background(), uuid.New()))

	require.Len(t, n.events, 1)
	assert.Equal(t, owner, *n.events[0].TenantID)
}

func TestSnippetService_Create_BadLocation(t *testing.T) {
	svc := service.NewSnippetService(&mockSnippetRepo{}, validation.New(), nil)

	_, err := svc.Create(context.Background(), service.SnippetInput{Location: "footer", Code: "x"})

	assert.ErrorIs(t, err, domain.ErrValidation)
}
