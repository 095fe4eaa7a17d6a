package blogauth

import "sync/atomic"

// MetricID identifies one engine counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful credential logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected credential logins (all causes).
	MetricLoginFailure
	// MetricLoginRateLimited counts logins rejected by the throttle.
	MetricLoginRateLimited
	// MetricRegisterSuccess counts created accounts.
	MetricRegisterSuccess
	// MetricRegisterDuplicate counts registrations rejected as duplicates.
	MetricRegisterDuplicate
	// MetricRefreshSuccess counts successful token refreshes.
	MetricRefreshSuccess
	// MetricRefreshFailure counts rejected token refreshes (all causes).
	MetricRefreshFailure
	// MetricTokenRejected counts request tokens that failed verification.
	MetricTokenRejected
	// MetricIdentityResolved counts requests that gained an identity.
	MetricIdentityResolved
	// MetricIdentityRejected counts verified tokens whose subject failed
	// resolution (deleted or disabled account).
	MetricIdentityRejected
	metricIDCount
)

const cacheLineSize = 64

// Counters are padded to a cache line each so concurrent requests bumping
// different counters do not contend.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds the engine's in-process counters. Immutable configuration,
// atomically updated values; safe for concurrent use.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// NewMetrics returns a counter set honoring cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Value reads one counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter. Counters are read individually, so the
// snapshot is not a single atomic cut across all of them.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}

	s := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricIDCount))}
	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return s
}
