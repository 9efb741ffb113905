package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/related-posts/internal/core/domain"
)

type fixture struct {
	server    *Server
	recommend *mockRecommendService
	ingest    *mockIngestService
	index     *mockIndexService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		recommend: &mockRecommendService{},
		ingest:    &mockIngestService{},
		index:     &mockIndexService{},
	}
	srv, err := NewServer(&Services{
		Recommend: f.recommend,
		Ingest:    f.ingest,
		Index:     f.index,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
	})
	require.NoError(t, err)
	f.server = srv
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_ValidatesServices(t *testing.T) {
	_, err := NewServer(&Services{})
	assert.Error(t, err)

	_, err = NewServer(&Services{Recommend: &mockRecommendService{}})
	assert.Error(t, err)

	_, err = NewServer(&Services{Recommend: &mockRecommendService{}, Ingest: &mockIngestService{}})
	assert.Error(t, err)
}

func TestIngest(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/embeddings", `{"blogPath":"spin-v2"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "inserted embedding for spin-v2\n", rec.Body.String())
	assert.Equal(t, "spin-v2", f.ingest.lastKey)
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
}

func TestRecommend(t *testing.T) {
	f := newFixture(t)
	f.recommend.recs = []domain.Recommendation{
		{Key: "b", Title: "Post B"},
		{Key: "c", Title: "Post C"},
	}

	rec := f.do(http.MethodPost, "/recommendations", `{"blogPath":"a"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Headers"))
	assert.JSONEq(t, `[{"blogPath":"b","title":"Post B"},{"blogPath":"c","title":"Post C"}]`, rec.Body.String())
	assert.Equal(t, "a", f.recommend.lastKey)
}

func TestRecommend_EmptyIsArray(t *testing.T) {
	f := newFixture(t)
	f.recommend.recs = []domain.Recommendation{}

	rec := f.do(http.MethodPost, "/recommendations", `{"blogPath":"a"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRecommend_Preflight(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodOptions, "/recommendations", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"malformed body", `{`, nil, http.StatusBadRequest},
		{"empty path", `{"blogPath":"  "}`, nil, http.StatusBadRequest},
		{"not found", `{"blogPath":"x"}`, fmt.Errorf("get description: %w", domain.ErrNotFound), http.StatusNotFound},
		{"embedding down", `{"blogPath":"x"}`, domain.ErrEmbeddingUnavailable, http.StatusBadGateway},
		{"other", `{"blogPath":"x"}`, errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.recommend.err = tt.err

			rec := f.do(http.MethodPost, "/recommendations", tt.body)

			assert.Equal(t, tt.status, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestIngest_FetchFailure(t *testing.T) {
	f := newFixture(t)
	f.ingest.err = domain.ErrFetchFailed

	rec := f.do(http.MethodPost, "/embeddings", `{"blogPath":"x"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestListTable(t *testing.T) {
	f := newFixture(t)
	f.ingest.keys = []string{"a", "b"}

	rec := f.do(http.MethodGet, "/list-table", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["a","b"]`, rec.Body.String())
}

func TestIndexStatus(t *testing.T) {
	f := newFixture(t)
	f.index.report = domain.IndexReport{Records: 2, Entries: 1, Missing: []int64{2}}

	rec := f.do(http.MethodGet, "/index/status", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["consistent"])
	assert.InDelta(t, 2, body["records"], 0)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = f.do(http.MethodGet, "/metrics", "")
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestHealth_Check(t *testing.T) {
	tests := []struct {
		name     string
		checkErr error
		wantCode int
		wantBody string
	}{
		{"healthy", nil, http.StatusOK, `{"status":"ok"}`},
		{"embedding unreachable", errors.New("ollama unreachable"), http.StatusServiceUnavailable, `{"error":"ollama unreachable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv, err := NewServer(&Services{
				Recommend: &mockRecommendService{},
				Ingest:    &mockIngestService{},
				Index:     &mockIndexService{},
				Check: func(context.Context) error {
					calls++
					return tt.checkErr
				},
			})
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, 1, calls)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRequestID_Echoed(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(headerRequestID, "abc")
	rec := httptest.NewRecorder()

	f.server.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Header().Get(headerRequestID))
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodGet, "/embeddings", "")

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
