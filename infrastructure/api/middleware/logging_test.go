package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	method, route, status string
}

type fakeHTTPRecorder struct {
	mu   sync.Mutex
	seen []request
}

func (f *fakeHTTPRecorder) ObserveRequest(method, route, status string, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, request{method: method, route: route, status: status})
}

func TestLogging_RecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	recorder := &fakeHTTPRecorder{}

	router := chi.NewRouter()
	router.Use(Logging(logger, recorder))
	router.Post("/api/v1/capabilities/{name}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/capabilities/getNumberRange", nil))

	require.Len(t, recorder.seen, 1)
	assert.Equal(t, request{method: "POST", route: "/api/v1/capabilities/{name}", status: "202"}, recorder.seen[0])
	assert.Contains(t, buf.String(), `"msg":"request completed"`)
	assert.Contains(t, buf.String(), `"path":"/api/v1/capabilities/getNumberRange"`)
}

func TestLogging_UnmatchedRoute(t *testing.T) {
	recorder := &fakeHTTPRecorder{}

	router := chi.NewRouter()
	router.Use(Logging(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)), recorder))
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))

	require.Len(t, recorder.seen, 1)
	assert.Equal(t, "404", recorder.seen[0].status)
	assert.Equal(t, unmatchedRoute, recorder.seen[0].route)
}

func TestLogging_DefaultsStatusToOK(t *testing.T) {
	var buf bytes.Buffer
	handler := Logging(slog.New(slog.NewJSONHandler(&buf, nil)), nil)(
		http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}),
	)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Contains(t, buf.String(), `"status":200`)
}
