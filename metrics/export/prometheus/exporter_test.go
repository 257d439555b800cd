package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cdi-dev/sessionauth"
)

type fakeSource struct {
	counters map[sessionauth.MetricID]uint64
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() sessionauth.MetricsSnapshot {
	return sessionauth.MetricsSnapshot{Counters: f.counters}
}

func (f fakeSource) AuditDropped() uint64 {
	return f.dropped
}

func TestRender(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		counters: map[sessionauth.MetricID]uint64{
			sessionauth.MetricLoginSuccess:   7,
			sessionauth.MetricVerifyAccepted: 42,
		},
		dropped: 3,
	})

	out := exp.Render()

	checks := []string{
		"# TYPE sessionauth_login_success_total counter",
		"sessionauth_login_success_total 7",
		"sessionauth_verify_accepted_total 42",
		"sessionauth_login_failure_total 0",
		"sessionauth_audit_dropped_total 3",
	}
	for _, want := range checks {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output:\n%s", want, out)
		}
	}

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			t.Fatal("unexpected blank line")
		}
		if !strings.HasPrefix(line, "#") && !strings.HasPrefix(line, "sessionauth_") {
			t.Fatalf("unexpected line %q", line)
		}
	}
}

func TestHandler(t *testing.T) {
	exp := NewExporterFromSource(fakeSource{
		counters: map[sessionauth.MetricID]uint64{sessionauth.MetricLogout: 1},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "sessionauth_logout_total 1") {
		t.Fatalf("missing counter in body:\n%s", rec.Body.String())
	}
}

func TestRenderNilSource(t *testing.T) {
	var exp *Exporter
	if exp.Render() != "" {
		t.Fatal("nil exporter must render nothing")
	}
}
