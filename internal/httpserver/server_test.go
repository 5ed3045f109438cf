package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/otot/internal/browser"
	"github.com/MrSnakeDoc/otot/internal/domain"
	"github.com/MrSnakeDoc/otot/internal/httpserver/deps"
	"github.com/MrSnakeDoc/otot/internal/logger"
	"github.com/MrSnakeDoc/otot/internal/render"
	"github.com/MrSnakeDoc/otot/internal/resolver"
	"github.com/MrSnakeDoc/otot/internal/store/memory"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, mutate func(d *deps.Deps)) (http.Handler, *memory.Store, *browser.Recorder) {
	t.Helper()

	var records []*domain.Record
	for _, u := range []struct {
		url   string
		count int64
	}{
		{"https://github.com/rust-lang/rust", 10},
		{"https://github.com/golang/go", 3},
		{"https://docs.rs/serde", 1},
	} {
		r, err := domain.NewRecord(u.url, now.Add(-time.Hour))
		require.NoError(t, err)
		r.VisitCount = u.count
		records = append(records, r)
	}

	store := memory.NewFrom(records)
	opener := &browser.Recorder{}
	svc := resolver.New(store, opener, logger.Nop(), resolver.Options{
		Now: func() time.Time { return now },
	})

	d := deps.Deps{
		Logger:    logger.Nop(),
		StartTime: now,
		Version:   "test",
		Resolver:  svc,
		Readiness: map[string]deps.Pinger{"store": store},
	}
	if mutate != nil {
		mutate(&d)
	}
	return NewRouter(logger.Nop(), d), store, opener
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestSearchRedirectsAndRecords(t *testing.T) {
	h, store, opener := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/search?q=github/rust")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://github.com/rust-lang/rust", rec.Header().Get("Location"))

	r, err := store.FindByURL(context.Background(), "https://github.com/rust-lang/rust")
	require.NoError(t, err)
	assert.Equal(t, int64(11), r.VisitCount)
	assert.Empty(t, opener.Opened, "the server never launches a browser")
}

func TestSearchDirectURL(t *testing.T) {
	h, store, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/search?q=https://example.org/new")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.org/new", rec.Header().Get("Location"))
	assert.Equal(t, 4, store.Count())
}

func TestSearchErrors(t *testing.T) {
	h, _, _ := newTestRouter(t, nil)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"missing q", "/search", http.StatusBadRequest},
		{"blank q", "/search?q=%20%20", http.StatusBadRequest},
		{"no match", "/search?q=zzz", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, do(t, h, http.MethodGet, tt.target).Code)
		})
	}
}

func TestSearchStoreUnavailable(t *testing.T) {
	h, store, _ := newTestRouter(t, nil)
	require.NoError(t, store.Close())

	rec := do(t, h, http.MethodGet, "/search?q=github")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestQueryIsReadOnly(t *testing.T) {
	h, store, _ := newTestRouter(t, nil)

	before, err := store.LoadAll(context.Background())
	require.NoError(t, err)

	rec := do(t, h, http.MethodGet, "/query?q=github")
	require.Equal(t, http.StatusOK, rec.Code)

	var views []render.CandidateView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "https://github.com/rust-lang/rust", views[0].URL)
	assert.Equal(t, 1, views[0].Rank)

	after, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, before, after)
}

func TestQueryNoMatchIsEmptyArray(t *testing.T) {
	h, _, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/query?q=zzz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHealthz(t *testing.T) {
	h, _, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
	assert.EqualValues(t, 3, body["records"])
}

func TestHealthzOmitsRecordsWithoutResolver(t *testing.T) {
	h, _, _ := newTestRouter(t, func(d *deps.Deps) { d.Resolver = nil })

	rec := do(t, h, http.MethodGet, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotContains(t, body, "records")
}

func TestReadyz(t *testing.T) {
	h, _, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/readyz").Code)

	h, _, _ = newTestRouter(t, func(d *deps.Deps) {
		d.Readiness["redis"] = pingFunc(func(context.Context) error { return errors.New("connection refused") })
	})
	rec := do(t, h, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "connection refused")
}

func TestReload(t *testing.T) {
	h, _, _ := newTestRouter(t, nil)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/reload").Code)

	trigger := make(chan struct{}, 1)
	h, _, _ = newTestRouter(t, func(d *deps.Deps) { d.ImportTrigger = trigger })

	assert.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/reload").Code)
	assert.Equal(t, http.StatusConflict, do(t, h, http.MethodPost, "/reload").Code)
	assert.Len(t, trigger, 1)
}
