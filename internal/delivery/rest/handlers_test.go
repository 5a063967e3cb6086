package rest

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog-viewer/internal/config"
	"catalog-viewer/internal/domain"
	"catalog-viewer/internal/events"
	"catalog-viewer/internal/service"
)

type stubFetcher struct {
	products []domain.Product
}

func (f stubFetcher) FetchPage(_ context.Context, page, size int) (*domain.Page, error) {
	count := (len(f.products) + size - 1) / size
	if page > count {
		return nil, fmt.Errorf("%w: no page %d", domain.ErrFetch, page)
	}
	return &domain.Page{
		Result: f.products[(page-1)*size : min(page*size, len(f.products))],
		Meta:   domain.PaginationMeta{CurrentPage: page, PageSize: size, PageCount: count, Count: len(f.products)},
	}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *service.Service) {
	t.Helper()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	var products []domain.Product
	for i := range 8 {
		brand := "loom"
		if i%2 == 1 {
			brand = "adresse"
		}
		products = append(products, domain.Product{
			UUID:     fmt.Sprintf("u%d", i),
			Brand:    brand,
			Name:     fmt.Sprintf("item %d", i),
			Price:    domain.FlexiblePrice(40 + 20*i),
			Link:     fmt.Sprintf("https://shop.example/u%d", i),
			Released: domain.NewReleaseDate(now.Add(-time.Duration(i*3) * 24 * time.Hour)),
		})
	}

	broker := events.NewBroker()
	svc := service.NewService(config.CatalogConfig{DefaultPageSize: 4}, stubFetcher{products}, nil, broker, nil, "rest-test")
	svc.SetClock(func() time.Time { return now })
	svc.Start(context.Background())
	return NewRouter(svc, broker, nil), svc
}

func do(t *testing.T, h http.Handler, method, target string) (*httptest.ResponseRecorder, domain.View) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	var view domain.View
	if rec.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	}
	return rec, view
}

func TestActions(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, view := do(t, h, http.MethodGet, "/api/view")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, view.Products, 4)
	assert.Equal(t, []int{1, 2}, view.Pages)

	rec, view = do(t, h, http.MethodPost, "/api/page?page=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u4", view.Products[0].UUID)

	// page 2 does not exist with 8 per page: the last page is loaded
	rec, view = do(t, h, http.MethodPost, "/api/size?size=8")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, view.Pagination.CurrentPage)
	assert.Equal(t, 8, view.Pagination.PageSize)
	assert.Len(t, view.Products, 8)

	rec, view = do(t, h, http.MethodPost, "/api/brand?brand=adresse")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, view.Products, 4)

	rec, view = do(t, h, http.MethodPost, "/api/filters?price=true")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, view.Filter.Price)
	assert.False(t, view.Filter.Release)
	// adresse prices 60, 100, 140, 180
	assert.Len(t, view.Products, 2)

	rec, view = do(t, h, http.MethodPost, "/api/sort?key=price-desc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u3", view.Products[0].UUID)
	require.NotNil(t, view.Indicators)
	assert.Equal(t, "2024-05-29", view.Indicators.LastReleased.String())
}

func TestFavoritesEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)

	rec, view := do(t, h, http.MethodPut, "/api/favorites/u2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, view.Products[2].Favorite)

	rec, _ = do(t, h, http.MethodPut, "/api/favorites/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, view = do(t, h, http.MethodPost, "/api/filters?favorite=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, view.Products, 1)
	assert.Equal(t, "u2", view.Products[0].UUID)

	rec, view = do(t, h, http.MethodDelete, "/api/favorites/u2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, view.Products)
	assert.Nil(t, view.Indicators)
}

func TestBadRequests(t *testing.T) {
	h, _ := newTestRouter(t)

	for _, target := range []string{
		"/api/page",
		"/api/page?page=abc",
		"/api/page?page=0",
		"/api/size?size=-3",
		"/api/brand",
		"/api/sort?key=alphabetical",
		"/api/filters?price=maybe",
	} {
		rec, _ := do(t, h, http.MethodPost, target)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestOpsEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "catalogviewer_renders_total")
}

func TestStream(t *testing.T) {
	h, svc := newTestRouter(t)
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, []byte) {
		var name string
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			line = strings.TrimSuffix(line, "\n")
			if v, ok := strings.CutPrefix(line, "event: "); ok {
				name = v
			}
			if data, ok := strings.CutPrefix(line, "data: "); ok {
				return name, []byte(data)
			}
		}
	}

	name, data := readEvent()
	require.Equal(t, "view", name)
	var first domain.View
	require.NoError(t, json.Unmarshal(data, &first))
	assert.Equal(t, "all", first.Filter.Brand)

	svc.SetBrand(context.Background(), "loom")
	name, data = readEvent()
	require.Equal(t, "view", name)
	var next domain.View
	require.NoError(t, json.Unmarshal(data, &next))
	assert.Equal(t, "loom", next.Filter.Brand)

	// a fetched page produces both a view and a page event
	_, err = svc.SetPage(context.Background(), 2)
	require.NoError(t, err)
	got := map[string][]byte{}
	for range 2 {
		name, data := readEvent()
		got[name] = data
	}
	require.Contains(t, got, "page")
	require.Contains(t, got, "view")
	var meta domain.PaginationMeta
	require.NoError(t, json.Unmarshal(got["page"], &meta))
	assert.Equal(t, domain.PaginationMeta{CurrentPage: 2, PageSize: 4, PageCount: 2, Count: 8}, meta)
}
