package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObservabilityRecordsRoutePattern(t *testing.T) {
	extra := prometheus.NewRegistry()
	probe := prometheus.NewCounter(prometheus.CounterOpts{Name: "contest_probe_total", Help: "probe"})
	extra.MustRegister(probe)
	probe.Inc()

	obs := NewObservability(ObservabilityConfig{Gatherer: extra}, nil)
	r := chi.NewRouter()
	r.Use(RequestID, obs.Middleware)
	r.Get("/v1/contests/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Handle("/metrics", obs.MetricsHandler())

	for _, id := range []string{"1", "2"} {
		res := httptest.NewRecorder()
		r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/v1/contests/"+id, nil))
		require.Equal(t, http.StatusNotFound, res.Code)
		require.NotEmpty(t, res.Header().Get(RequestIDHeader))
	}
	require.Equal(t, float64(2), testutil.ToFloat64(obs.requests.WithLabelValues("/v1/contests/{id}", http.MethodGet, "404")))

	res := httptest.NewRecorder()
	r.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(body), "gateway_requests_total"))
	require.True(t, strings.Contains(string(body), "contest_probe_total"))
}

func TestRequestIDPropagatesCallerValue(t *testing.T) {
	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	require.Equal(t, "abc-123", seen)
	require.Equal(t, "abc-123", res.Header().Get(RequestIDHeader))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, seen, 36)
}
