package auth

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lumenweb/auth/internal/audit"
	"github.com/lumenweb/auth/internal/rate"
	"github.com/lumenweb/auth/password"
	"github.com/lumenweb/auth/session"
	"github.com/lumenweb/auth/token"
)

// Service is the session lifecycle manager. It owns login, rotation, logout,
// bulk revocation, and credential resolution for the gate middleware.
// Construct it through [New]; all methods are safe for concurrent use.
type Service struct {
	config Config

	tokens    *token.Manager
	store     *session.Store
	hasher    *password.Hasher
	directory UserDirectory
	limiter   *rate.Limiter
	audit     *audit.Dispatcher
	metrics   *Metrics

	closed atomic.Bool
}

// Close flushes the audit pipeline and marks the service unusable. Further
// operations return [ErrNotReady]. Safe to call more than once.
func (s *Service) Close() {
	s.closed.Store(true)
	s.audit.Close()
}

// MetricsSnapshot returns a point-in-time copy of all service counters.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	return s.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded under pressure.
func (s *Service) AuditDropped() uint64 {
	return s.audit.Dropped()
}

// Ping checks credential-store reachability and reports round-trip latency.
func (s *Service) Ping(ctx context.Context) (time.Duration, error) {
	if s.closed.Load() {
		return 0, ErrNotReady
	}
	return s.store.Ping(ctx)
}

// ObserveGateLatency records one gate admission latency sample.
func (s *Service) ObserveGateLatency(d time.Duration) {
	s.metrics.Observe(MetricGateLatency, d)
}

// NoteCookieFallback counts a request admitted (or attempted) through the
// cookie pair rather than a bearer token.
func (s *Service) NoteCookieFallback() {
	s.metrics.Inc(MetricCookieFallback)
}

func (s *Service) sessionLifetime() time.Duration {
	return s.config.Session.Lifetime
}

func (s *Service) metricInc(id MetricID) {
	s.metrics.Inc(id)
}
