package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRecordRequestExposedOnHandler(t *testing.T) {
	m := NewMetrics("floodaura-api")
	m.RecordRequest("POST", "/v1/routes/verdict", "200", 42*time.Millisecond)
	m.RecordRequest("POST", "/v1/routes/verdict", "200", 18*time.Millisecond)
	m.VerdictsTotal.WithLabelValues("safe").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("scrape status = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`floodaura_http_requests_total{endpoint="/v1/routes/verdict",method="POST",service="floodaura-api",status="200"} 2`,
		`floodaura_verdicts_total{route_status="safe"} 1`,
		"floodaura_http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}

func TestNewMetricsIsolatedRegistries(t *testing.T) {
	// Two instances must not collide; each owns a private registry.
	a := NewMetrics("a")
	b := NewMetrics("b")
	a.EventsIngested.Inc()

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if strings.Contains(rec.Body.String(), `service="a"`) {
		t.Error("registry leaked between instances")
	}
}
