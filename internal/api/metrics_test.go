package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/johnwards/leaddesk/internal/session"
)

func TestMetricsUsesRoutePattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/leads/{leadId}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	handler := Chain(mux, Metrics())

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "GET /api/v1/leads/{leadId}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/leads/"+id, http.NoBody))
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("requests counted = %v, want 2", got)
	}
}

func TestMetricsUnmatchedRoute(t *testing.T) {
	handler := Chain(http.NewServeMux(), Metrics())

	counter := httpRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", http.NoBody))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("requests counted = %v, want 1", got)
	}
}

func TestRecordLeadWrite(t *testing.T) {
	ok := leadWrites.WithLabelValues("save", "OK")
	conflict := leadWrites.WithLabelValues("save", CategoryConflict)
	okBefore, conflictBefore := testutil.ToFloat64(ok), testutil.ToFloat64(conflict)

	RecordLeadWrite("save", nil)
	RecordLeadWrite("save", session.ErrSaveInProgress)

	if got := testutil.ToFloat64(ok) - okBefore; got != 1 {
		t.Errorf("ok writes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(conflict) - conflictBefore; got != 1 {
		t.Errorf("conflicting writes = %v, want 1", got)
	}
}
