package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"results":[]}`))
		})
		r.Get("/records/{kind}/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		r.Delete("/saved-searches/{id}", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		})
	})
	return r
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := newRouter()

	for _, id := range []string{"c-1", "c-2", "c-3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/records/contracts/"+id, http.NoBody)
		r.ServeHTTP(httptest.NewRecorder(), req)
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		http.MethodGet, "/api/v1/records/{kind}/{id}", "404",
	))
	if got < 3 {
		t.Errorf("requests_total = %v, want >= 3 under one route label", got)
	}
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodPost, "/api/v1/search", "200")) < 1 {
		t.Error("expected a 200 sample for a handler that never calls WriteHeader")
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected duration observations")
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/saved-searches/s1", http.NoBody)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodDelete, "/api/v1/saved-searches/{id}", "403")) < 1 {
		t.Error("expected a 403 sample")
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/wp-admin/setup.php", http.NoBody)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, "404")) < 1 {
		t.Error("expected unmatched requests under a single label")
	}
}

func TestMiddleware_InFlightReturnsToZero(t *testing.T) {
	r := newRouter()
	before := testutil.ToFloat64(httpInFlight)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/search", http.NoBody)
	r.ServeHTTP(httptest.NewRecorder(), req)

	if after := testutil.ToFloat64(httpInFlight); after != before {
		t.Errorf("in flight = %v, want %v", after, before)
	}
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", unmatchedRoute},
		{"/*", unmatchedRoute},
		{"/", "/"},
		{"/api/v1/saved-searches/", "/api/v1/saved-searches"},
		{"/api/v1/records/{kind}/batch", "/api/v1/records/{kind}/batch"},
	}

	for _, tc := range tests {
		if got := routeLabel(tc.input); got != tc.expected {
			t.Errorf("routeLabel(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestRegisterHTTPMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterHTTPMetrics(reg)
	RegisterHTTPMetrics(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "complydex_http_requests_in_flight" {
			found = true
		}
	}
	if !found {
		t.Error("complydex_http_requests_in_flight not registered")
	}
}
