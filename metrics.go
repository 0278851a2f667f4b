package auth

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one counter tracked by the service.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRateLimited
	MetricRotateSuccess
	MetricRotateFailure
	MetricRotateReuseDetected
	MetricRotateRateLimited
	MetricSessionCreated
	MetricSessionRevoked
	MetricLogout
	MetricRevokeAll
	MetricPasswordChange
	MetricCookieFallback
	MetricGateLatency
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricLoginSuccess:        "login_success",
	MetricLoginFailure:        "login_failure",
	MetricLoginRateLimited:    "login_rate_limited",
	MetricRotateSuccess:       "rotate_success",
	MetricRotateFailure:       "rotate_failure",
	MetricRotateReuseDetected: "rotate_reuse_detected",
	MetricRotateRateLimited:   "rotate_rate_limited",
	MetricSessionCreated:      "session_created",
	MetricSessionRevoked:      "session_revoked",
	MetricLogout:              "logout",
	MetricRevokeAll:           "revoke_all",
	MetricPasswordChange:      "password_change",
	MetricCookieFallback:      "cookie_fallback",
	MetricGateLatency:         "gate_latency",
}

// MetricName returns the stable exposition name for a metric ID.
func MetricName(id MetricID) string {
	if id >= metricIDCount {
		return ""
	}
	return metricNames[id]
}

// MetricIDCount returns the number of defined metrics, for exporters that
// iterate the full set.
func MetricIDCount() int {
	return int(metricIDCount)
}

// MetricsConfig controls counter collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

// HistogramBucketBoundsMS are the upper bounds, in milliseconds, of the
// gate latency buckets. The final bucket is unbounded.
var HistogramBucketBoundsMS = [histBucketCount - 1]int64{5, 10, 25, 50, 100, 250, 500}

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

// Counters get a cache line each so hot-path increments on different IDs do
// not contend.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed-size atomic counter set. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments a counter. No-op when metrics are disabled.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records a gate latency sample into the histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricGateLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value reads a single counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies every counter and histogram at once.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricGateLatency].buckets[i])
		}
		s.Histograms[MetricGateLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()
	for i, bound := range HistogramBucketBoundsMS {
		if ms <= bound {
			return i
		}
	}
	return histBucketCount - 1
}
