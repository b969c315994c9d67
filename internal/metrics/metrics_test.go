package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObservePostingLabelsResult(t *testing.T) {
	m := New()
	m.ObservePosting("post", nil)
	m.ObservePosting("post", errors.New("boom"))
	m.ObservePosting("post", nil)

	if got := testutil.ToFloat64(m.Postings.WithLabelValues("post", "ok")); got != 2 {
		t.Fatalf("expected 2 ok postings, got %v", got)
	}
	if got := testutil.ToFloat64(m.Postings.WithLabelValues("post", "error")); got != 1 {
		t.Fatalf("expected 1 failed posting, got %v", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObservePosting("post", nil)
	m.ObserveFloorHit()
	m.ObserveStatistics(true)
}

func TestHandlerExposesFloorHits(t *testing.T) {
	m := New()
	m.ObserveFloorHit()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "storeledger_stock_floor_hits_total 1") {
		t.Fatalf("expected floor hit counter in output, got %s", rec.Body.String())
	}
}
