package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics("metrics-test"))
	r.Delete("/api/v1/cart/items/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	for _, id := range []string{"a-default", "b-default"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/cart/items/"+id, nil))
	}

	counter := httpRequestsTotal.WithLabelValues("metrics-test", http.MethodDelete, "/api/v1/cart/items/{itemId}", "204")
	assert.Equal(t, 2.0, testutil.ToFloat64(counter))
	assert.Equal(t, 0.0, testutil.ToFloat64(httpRequestsInFlight.WithLabelValues("metrics-test")))
}

func TestPrometheusMetrics_UnknownRoute(t *testing.T) {
	handler := PrometheusMetrics("metrics-unrouted")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anything", nil))

	counter := httpRequestsTotal.WithLabelValues("metrics-unrouted", http.MethodGet, "unknown", "418")
	assert.Equal(t, 1.0, testutil.ToFloat64(counter))
}
