package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"Vidshelf/metrics"
)

func TestLoggingRecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logging)
	r.Get("/movies/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/movies/{id}", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/movies/7", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestLoggingDefaultsToOK(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Logging)
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/ping", "200")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, "pong", rec.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestIsAssetRoute(t *testing.T) {
	assert.True(t, isAssetRoute("/static/*"))
	assert.True(t, isAssetRoute("/media/*"))
	assert.False(t, isAssetRoute("/movies/{id}"))
}
