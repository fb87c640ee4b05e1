package taskauth

import "sync/atomic"

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID uint16

const (
	// MetricLoginSuccess counts completed logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts credential rejections.
	MetricLoginFailure
	// MetricLoginThrottled counts login denials by the sliding window.
	MetricLoginThrottled
	// MetricLoginBlocked counts logins rejected on the blocked flag.
	MetricLoginBlocked
	// MetricAuthSuccess counts successful bearer-token authentications.
	MetricAuthSuccess
	// MetricAuthFailure counts rejected bearer-token authentications.
	MetricAuthFailure
	// MetricRegisterSuccess counts created accounts.
	MetricRegisterSuccess
	// MetricRegisterDuplicate counts registrations rejected on a taken email.
	MetricRegisterDuplicate
	// MetricRegisterInvalid counts registrations rejected by validation.
	MetricRegisterInvalid
	// MetricProfileUpdated counts applied profile updates.
	MetricProfileUpdated
	// MetricProfileUpdateRejected counts rejected profile updates.
	MetricProfileUpdateRejected
	// MetricResetRequested counts issued reset tokens (request and resend).
	MetricResetRequested
	// MetricResetDeliveryFailed counts reset links that could not be mailed.
	MetricResetDeliveryFailed
	// MetricResetConsumed counts passwords changed through a reset token.
	MetricResetConsumed
	// MetricResetRejected counts reset validations or consumes that failed.
	MetricResetRejected

	metricIDCount
)

// Metrics holds atomic counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates a Metrics instance configured by cfg.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of the counter for id.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= metricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot copies every counter into a fresh map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{Counters: make(map[MetricID]uint64, metricIDCount)}
	if m == nil || !m.enabled {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
