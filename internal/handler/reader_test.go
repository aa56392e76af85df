package handler_test

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/webcomics/internal/domain"
	"github.com/pkordes/webcomics/internal/handler"
	"github.com/pkordes/webcomics/internal/service"
)

var comic = &domain.Tenant{ID: uuid.New(), Domain: "comic.example.com", Slug: "comic", Title: "The Comic"}

func pageFixture(slug string) domain.Page {
	return domain.Page{
		ID:       uuid.New(),
		TenantID: comic.ID,
		Slug:     slug,
		Title:    "Page " + slug,
		Image:    "/media/" + slug + ".png",
		PostedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

// ---- GET / -----------------------------------------------------------------

func TestIndex_TenantRedirectsToLatest(t *testing.T) {
	reader := &mockReader{latest: func(_ context.Context, tn domain.Tenant) (domain.Page, error) {
		assert.Equal(t, comic.ID, tn.ID)
		return pageFixture("page-9"), nil
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/comic/page-9", rec.Header().Get("Location"))
}

func TestIndex_TenantWithoutPages_404(t *testing.T) {
	reader := &mockReader{latest: func(context.Context, domain.Tenant) (domain.Page, error) {
		return domain.Page{}, domain.ErrNotFound
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)
}

func TestIndex_NoTenantListsComics(t *testing.T) {
	reader := &mockReader{comics: func(_ context.Context, p domain.PaginationParams) ([]domain.Tenant, int64, error) {
		assert.Equal(t, 2, p.Page)
		return []domain.Tenant{*comic}, 21, nil
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, nil), "/?page=2")

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.ListResponse[domain.Tenant]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, handler.Pagination{Page: 2, Limit: 20, Total: 21}, body.Pagination)
}

func TestIndex_BadPageParam_422(t *testing.T) {
	rec := get(publicHandler(handler.Services{Reader: &mockReader{}}, handler.Options{}, nil), "/?page=abc")

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

// ---- GET /comic/{slug} -----------------------------------------------------

func TestGetPage_200(t *testing.T) {
	p := pageFixture("two")
	banner := &domain.Ad{ID: uuid.New(), Kind: domain.AdBanner, URL: "https://shop.example.com"}
	reader := &mockReader{page: func(_ context.Context, _ domain.Tenant, slug string) (service.PageResult, error) {
		assert.Equal(t, "two", slug)
		return service.PageResult{View: &service.PageView{
			Page:       p,
			PostHTML:   "<p>hi</p>",
			PostText:   "hi",
			Navigation: domain.Navigation{First: &domain.PageRef{Slug: "one"}},
			Banner:     banner,
			Snippets:   service.Snippets{domain.SnippetBodyEnd: {"<script></script>"}},
		}}, nil
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/comic/two")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))
	var body handler.PageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "two", body.Page.Slug)
	assert.Equal(t, "<p>hi</p>", body.PostHTML)
	assert.Equal(t, "one", body.Navigation.First.Slug)
	assert.Nil(t, body.Navigation.Previous)
	require.NotNil(t, body.Banner)
	assert.Equal(t, banner.URL, body.Banner.URL)
	assert.Nil(t, body.Popup)
	assert.Equal(t, []string{"<script></script>"}, body.Snippets[domain.SnippetBodyEnd])
	assert.Equal(t, "/media/two.png", body.ShareImage)
}

func TestGetPage_ShareImageResizedBehindEdgeCache(t *testing.T) {
	cached := *comic
	cached.EdgeZone, cached.EdgeToken = "zone", "token"
	reader := &mockReader{page: func(context.Context, domain.Tenant, string) (service.PageResult, error) {
		return service.PageResult{View: &service.PageView{Page: pageFixture("two")}}, nil
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, &cached), "/comic/two")

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.PageResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "/cdn-cgi/image/width=1200,format=auto/media/two.png", body.ShareImage)
}

func TestGetPage_NonCanonicalSlugRedirects(t *testing.T) {
	reader := &mockReader{page: func(context.Context, domain.Tenant, string) (service.PageResult, error) {
		return service.PageResult{RedirectSlug: "Page-One"}, nil
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/comic/page-one")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/comic/Page-One", rec.Header().Get("Location"))
}

func TestGetPage_ScheduledOrMissing_404(t *testing.T) {
	reader := &mockReader{page: func(context.Context, domain.Tenant, string) (service.PageResult, error) {
		return service.PageResult{}, domain.ErrNotFound
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/comic/soon")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "page not found", decodeError(t, rec).Message)
}

func TestGetPage_NoTenantRedirectsToIndex(t *testing.T) {
	rec := get(publicHandler(handler.Services{Reader: &mockReader{}}, handler.Options{}, nil), "/comic/two")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestGetPage_RenderFailure_500(t *testing.T) {
	reader := &mockReader{page: func(context.Context, domain.Tenant, string) (service.PageResult, error) {
		return service.PageResult{}, assert.AnError
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/comic/two")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeError(t, rec).Code)
}

// ---- GET /data/{slug} ------------------------------------------------------

func TestGetPageData_Compact(t *testing.T) {
	p := pageFixture("two")
	reader := &mockReader{page: func(context.Context, domain.Tenant, string) (service.PageResult, error) {
		return service.PageResult{View: &service.PageView{
			Page:     p,
			PostHTML: "<p>hi</p>",
			Navigation: domain.Navigation{
				First:    &domain.PageRef{Slug: "one"},
				Previous: &domain.PageRef{Slug: "one"},
			},
		}}, nil
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/data/two")

	require.Equal(t, http.StatusOK, rec.Code)
	var body handler.PageDataResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "two", body.Slug)
	assert.Equal(t, "<p>hi</p>", body.Post)
	assert.Equal(t, "March 1, 2024", body.PostedAt)
	require.NotNil(t, body.Previous)
	assert.Equal(t, "one", *body.Previous)
	assert.Nil(t, body.Next)
	assert.Nil(t, body.Last)
}

func TestGetPageData_NonCanonicalSlugRedirectsWithinData(t *testing.T) {
	reader := &mockReader{page: func(context.Context, domain.Tenant, string) (service.PageResult, error) {
		return service.PageResult{RedirectSlug: "Two"}, nil
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/data/two")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/data/Two", rec.Header().Get("Location"))
}

// ---- GET /random, /swords/{slug} -------------------------------------------

func TestRandomPage_RedirectsWithShortCache(t *testing.T) {
	reader := &mockReader{random: func(context.Context, domain.Tenant) (domain.Page, error) {
		return pageFixture("lucky"), nil
	}}

	rec := get(publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic), "/random")

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/comic/lucky", rec.Header().Get("Location"))
	assert.Equal(t, "max-age=600", rec.Header().Get("Cache-Control"))
}

func TestRandomPage_RateLimited(t *testing.T) {
	reader := &mockReader{random: func(context.Context, domain.Tenant) (domain.Page, error) {
		return pageFixture("lucky"), nil
	}}
	h := publicHandler(handler.Services{Reader: reader}, handler.Options{RandomRateLimit: 1}, comic)

	assert.Equal(t, http.StatusFound, get(h, "/random").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(h, "/random").Code)
}

func TestLegacyPage_PermanentRedirect(t *testing.T) {
	rec := get(publicHandler(handler.Services{}, handler.Options{}, comic), "/swords/page-1?ref=x")

	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/comic/page-1?ref=x", rec.Header().Get("Location"))
}

// ---- GET /feed -------------------------------------------------------------

type feedDoc struct {
	Channel struct {
		Title string `xml:"title"`
		Link  string `xml:"link"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestFeed_RSS(t *testing.T) {
	reader := &mockReader{feed: func(context.Context, domain.Tenant) ([]service.FeedItem, error) {
		return []service.FeedItem{
			{Page: pageFixture("two"), PostHTML: "<p>new</p>"},
			{Page: pageFixture("one"), PostHTML: "<p>old</p>"},
		}, nil
	}}
	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	rec := httptest.NewRecorder()

	publicHandler(handler.Services{Reader: reader}, handler.Options{}, comic).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")
	var doc feedDoc
	require.NoError(t, xml.NewDecoder(rec.Body).Decode(&doc))
	assert.Equal(t, "The Comic", doc.Channel.Title)
	assert.Equal(t, "https://comic.example.com/", doc.Channel.Link)
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "https://comic.example.com/comic/two", doc.Channel.Items[0].Link)
	assert.Equal(t, "<p>new</p>", doc.Channel.Items[0].Description)
}

// ---- robots.txt / ads.txt --------------------------------------------------

func TestRobotsTxt(t *testing.T) {
	rec := get(publicHandler(handler.Services{}, handler.Options{}, nil), "/robots.txt")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "User-agent: *")
}

func TestAdsTxt(t *testing.T) {
	t.Run("redirects when configured", func(t *testing.T) {
		opts := handler.Options{AdsTxtURL: "https://ads.example.com/ads.txt"}
		rec := get(publicHandler(handler.Services{}, opts, comic), "/ads.txt")

		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "https://ads.example.com/ads.txt", rec.Header().Get("Location"))
	})
	t.Run("404 otherwise", func(t *testing.T) {
		rec := get(publicHandler(handler.Services{}, handler.Options{}, comic), "/ads.txt")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
