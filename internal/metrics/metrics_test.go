package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_RecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTPRequest(http.MethodPost, "/auth/login", http.StatusOK, 25*time.Millisecond)
	c.RecordHTTPRequest(http.MethodPost, "/auth/login", http.StatusOK, 30*time.Millisecond)
	c.RecordHTTPRequest(http.MethodGet, "/auth", http.StatusOK, 5*time.Millisecond)

	got := testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "/auth/login", "200"))
	if got != 2 {
		t.Errorf("janken_http_requests_total{POST,/auth/login,200} = %v, want 2", got)
	}
	got = testutil.ToFloat64(c.httpRequests.WithLabelValues("GET", "/auth", "200"))
	if got != 1 {
		t.Errorf("janken_http_requests_total{GET,/auth,200} = %v, want 1", got)
	}
}

func TestCollector_RecordLogin_LabelsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLogin(true)
	c.RecordLogin(true)
	c.RecordLogin(false)

	if got := testutil.ToFloat64(c.logins.WithLabelValues("success")); got != 2 {
		t.Errorf("janken_logins_total{success} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.logins.WithLabelValues("failure")); got != 1 {
		t.Errorf("janken_logins_total{failure} = %v, want 1", got)
	}
}

func TestCollector_RecordRegistrationAndLogout(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordRegistration()
	c.RecordLogout()
	c.RecordLogout()

	if got := testutil.ToFloat64(c.registrations); got != 1 {
		t.Errorf("janken_registrations_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.logouts); got != 2 {
		t.Errorf("janken_logouts_total = %v, want 2", got)
	}
}

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordLogin(true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	Handler(reg).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	body := w.Body.String()
	if !strings.Contains(body, `janken_logins_total{result="success"} 1`) {
		t.Errorf("scrape output missing login counter, got:\n%s", body)
	}
}
