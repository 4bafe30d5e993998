package tokenward

import (
	"sync/atomic"
	"time"
)

// MetricID identifies one in-process counter. IDs are dense array indexes,
// not stable wire values; exporters map them to stable names.
type MetricID uint16

const (
	// MetricIssueSuccess counts issued token pairs.
	MetricIssueSuccess MetricID = iota
	// MetricIssueFailure counts issuance attempts that failed to persist.
	MetricIssueFailure
	// MetricAccessVerifySuccess counts accepted access tokens.
	MetricAccessVerifySuccess
	// MetricAccessVerifyFailure counts rejected access tokens of any kind.
	MetricAccessVerifyFailure
	// MetricAccessBlacklisted counts access tokens rejected by the blacklist.
	MetricAccessBlacklisted
	// MetricSessionRevokedHit counts access tokens rejected by a
	// revoked-session marker.
	MetricSessionRevokedHit
	// MetricRefreshSuccess counts completed rotations.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed rotations.
	MetricRefreshFailure
	// MetricRefreshReuseDetected counts refresh tokens presented after they
	// were rotated away or never stored.
	MetricRefreshReuseDetected
	// MetricRefreshRateLimited counts throttled rotation attempts.
	MetricRefreshRateLimited
	// MetricBlacklistWrite counts blacklist entries written.
	MetricBlacklistWrite
	// MetricRevokeSession counts single-session revocations.
	MetricRevokeSession
	// MetricRevokeAll counts coarse revoke-all operations.
	MetricRevokeAll
	// MetricStoreUnavailable counts store round trips that failed or timed out.
	MetricStoreUnavailable
	// MetricFailOpenAccepted counts tokens accepted while the store was
	// unreachable under the fail-open policy.
	MetricFailOpenAccepted
	// MetricVerifyLatency indexes the access-verification latency histogram.
	MetricVerifyLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed-size set of lock-free counters plus one latency
// histogram. A nil or disabled Metrics is a no-op on every method.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time copy of all counters and histograms.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a metrics set per the given configuration.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc adds one to the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records d into the verify-latency histogram.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id != MetricVerifyLatency {
		return
	}
	atomic.AddUint64(&m.histograms[id].buckets[bucketIndex(d)], 1)
}

// Value returns the current counter value for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot copies all counters and histograms. Counters are loaded
// individually, so a snapshot taken under concurrent traffic is
// per-counter accurate but not a global atomic cut.
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
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricVerifyLatency].buckets[i])
		}
		s.Histograms[MetricVerifyLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
