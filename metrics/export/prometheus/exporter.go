package prometheus

import (
	"net/http"
	"strconv"
	"strings"

	auth "github.com/lumenweb/auth"
)

type metricsSource interface {
	MetricsSnapshot() auth.MetricsSnapshot
	AuditDropped() uint64
}

type counterDef struct {
	id   auth.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{auth.MetricLoginSuccess, "auth_login_success_total", "Successful logins."},
	{auth.MetricLoginFailure, "auth_login_failure_total", "Failed logins (unknown identifier or wrong password)."},
	{auth.MetricLoginRateLimited, "auth_login_rate_limited_total", "Logins rejected by the attempt throttle."},
	{auth.MetricRotateSuccess, "auth_rotate_success_total", "Successful secret rotations."},
	{auth.MetricRotateFailure, "auth_rotate_failure_total", "Failed rotations, excluding reuse detections."},
	{auth.MetricRotateReuseDetected, "auth_rotate_reuse_detected_total", "Rotations presenting an already-rotated secret; each destroys a session."},
	{auth.MetricRotateRateLimited, "auth_rotate_rate_limited_total", "Rotations rejected by the per-session throttle."},
	{auth.MetricSessionCreated, "auth_session_created_total", "Sessions created by login."},
	{auth.MetricSessionRevoked, "auth_session_revoked_total", "Sessions destroyed by logout, revocation, or theft detection."},
	{auth.MetricLogout, "auth_logout_total", "Logout calls."},
	{auth.MetricRevokeAll, "auth_revoke_all_total", "Bulk revocations."},
	{auth.MetricPasswordChange, "auth_password_change_total", "Completed password changes."},
	{auth.MetricCookieFallback, "auth_cookie_fallback_total", "Gate admissions attempted through the cookie pair."},
}

// Exporter renders service metrics in Prometheus text exposition format.
type Exporter struct {
	source metricsSource
}

// NewExporter creates an exporter reading from the given [auth.Service].
func NewExporter(svc *auth.Service) *Exporter {
	return &Exporter{source: svc}
}

// NewExporterFromSource creates an exporter from a custom snapshot source.
func NewExporterFromSource(source metricsSource) *Exporter {
	return &Exporter{source: source}
}

// Handler returns an http.Handler serving the exposition endpoint.
func (e *Exporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(e.Render()))
	})
}

// Render produces the current exposition text.
func (e *Exporter) Render() string {
	if e == nil || e.source == nil {
		return ""
	}

	snapshot := e.source.MetricsSnapshot()
	dropped := e.source.AuditDropped()

	var b strings.Builder
	b.Grow(4096)

	for _, def := range counterDefs {
		writeCounter(&b, def.name, def.help, snapshot.Counters[def.id])
	}

	if buckets, ok := snapshot.Histograms[auth.MetricGateLatency]; ok {
		writeHistogram(&b, "auth_gate_latency_ms", "Gate admission latency.", buckets)
	}

	writeCounter(&b, "auth_audit_dropped_total", "Audit events dropped under dispatcher backpressure.", dropped)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}

func writeHistogram(b *strings.Builder, name, help string, buckets []uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(escapeHelp(help))
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" histogram\n")

	var cumulative uint64
	for i, count := range buckets {
		cumulative += count

		le := "+Inf"
		if i < len(auth.HistogramBucketBoundsMS) {
			le = strconv.FormatInt(auth.HistogramBucketBoundsMS[i], 10)
		}

		b.WriteString(name)
		b.WriteString("_bucket{le=\"")
		b.WriteString(le)
		b.WriteString("\"} ")
		b.WriteString(strconv.FormatUint(cumulative, 10))
		b.WriteByte('\n')
	}

	b.WriteString(name)
	b.WriteString("_count ")
	b.WriteString(strconv.FormatUint(cumulative, 10))
	b.WriteByte('\n')

	// No sum is tracked in core snapshots; keep the field stable at zero.
	b.WriteString(name)
	b.WriteString("_sum 0\n")
}

func escapeHelp(help string) string {
	help = strings.ReplaceAll(help, "\\", "\\\\")
	help = strings.ReplaceAll(help, "\n", "\\n")
	return help
}
