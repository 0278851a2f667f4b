package prometheus

import (
	"net/http/httptest"
	"strings"
	"testing"

	auth "github.com/lumenweb/auth"
)

type fakeSource struct {
	snapshot auth.MetricsSnapshot
	dropped  uint64
}

func (f *fakeSource) MetricsSnapshot() auth.MetricsSnapshot { return f.snapshot }
func (f *fakeSource) AuditDropped() uint64                  { return f.dropped }

func TestRenderCounters(t *testing.T) {
	source := &fakeSource{
		snapshot: auth.MetricsSnapshot{
			Counters: map[auth.MetricID]uint64{
				auth.MetricLoginSuccess:        7,
				auth.MetricRotateReuseDetected: 2,
			},
			Histograms: map[auth.MetricID][]uint64{},
		},
		dropped: 3,
	}

	out := NewExporterFromSource(source).Render()

	for _, want := range []string{
		"# TYPE auth_login_success_total counter",
		"auth_login_success_total 7",
		"auth_rotate_reuse_detected_total 2",
		"auth_login_failure_total 0",
		"auth_audit_dropped_total 3",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHistogramIsCumulative(t *testing.T) {
	source := &fakeSource{
		snapshot: auth.MetricsSnapshot{
			Counters: map[auth.MetricID]uint64{},
			Histograms: map[auth.MetricID][]uint64{
				auth.MetricGateLatency: {4, 3, 0, 1, 0, 0, 0, 2},
			},
		},
	}

	out := NewExporterFromSource(source).Render()

	for _, want := range []string{
		`auth_gate_latency_ms_bucket{le="5"} 4`,
		`auth_gate_latency_ms_bucket{le="10"} 7`,
		`auth_gate_latency_ms_bucket{le="50"} 8`,
		`auth_gate_latency_ms_bucket{le="+Inf"} 10`,
		"auth_gate_latency_ms_count 10",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("exposition missing %q:\n%s", want, out)
		}
	}
}

func TestHandlerContentType(t *testing.T) {
	source := &fakeSource{snapshot: auth.MetricsSnapshot{
		Counters:   map[auth.MetricID]uint64{},
		Histograms: map[auth.MetricID][]uint64{},
	}}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	NewExporterFromSource(source).Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("unexpected content type %q", got)
	}
}
