package metrics

import (
	"sync/atomic"
	"time"
)

// MetricID identifies a specific counter or histogram bucket slot.
type MetricID uint16

const (
	MetricLogin MetricID = iota
	MetricLogout
	MetricForcedLogoutExpiry
	MetricForcedLogoutIdle
	MetricIdleWarning
	MetricWarningExpired
	MetricRefreshSuccess
	MetricRefreshFailure
	MetricTokenReplaced
	MetricDecodeFailure
	MetricPeerTokenChange
	MetricPeerConfigChange
	MetricStoreDegraded
	MetricRefreshLatency

	// MetricIDCount is the number of defined metric IDs.
	MetricIDCount
)

// Config controls metric collection. When Enabled is false all operations
// are no-ops and Snapshot returns empty maps.
type Config struct {
	Enabled       bool
	EnableLatency bool
}

// histogram bucket upper bounds, in milliseconds: ≤5, 10, 25, 50, 100, 250,
// 500, +Inf. Fixed so the write path stays allocation-free.
var bucketBoundsMS = [8]int64{5, 10, 25, 50, 100, 250, 500, 1 << 62}

// paddedCounter occupies a full cache line so adjacent counters never
// false-share under concurrent increments.
type paddedCounter struct {
	v uint64
	_ [56]byte
}

// Metrics holds atomic counters and optional latency histograms. All write
// operations are lock-free and safe for concurrent use.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [MetricIDCount]paddedCounter
	histograms    [MetricIDCount][8]paddedCounter
}

// Snapshot is a point-in-time deep copy of all metrics.
type Snapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// New creates a [Metrics] instance. A nil return is valid when disabled;
// all methods tolerate nil receivers.
func New(cfg Config) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatency,
	}
}

// Inc atomically increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].v, 1)
}

// Observe records a latency sample into the histogram for id.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enableLatency || id >= MetricIDCount {
		return
	}

	ms := d.Milliseconds()
	for i, bound := range bucketBoundsMS {
		if ms <= bound {
			atomic.AddUint64(&m.histograms[id][i].v, 1)
			return
		}
	}
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || !m.enabled || id >= MetricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].v)
}

// Snapshot returns a deep copy of all non-zero counters and histograms.
func (m *Metrics) Snapshot() Snapshot {
	out := Snapshot{
		Counters:   map[MetricID]uint64{},
		Histograms: map[MetricID][]uint64{},
	}
	if m == nil || !m.enabled {
		return out
	}

	for id := MetricID(0); id < MetricIDCount; id++ {
		if v := atomic.LoadUint64(&m.counters[id].v); v > 0 {
			out.Counters[id] = v
		}
	}

	if m.enableLatency {
		for id := MetricID(0); id < MetricIDCount; id++ {
			var buckets []uint64
			var total uint64
			for i := range m.histograms[id] {
				v := atomic.LoadUint64(&m.histograms[id][i].v)
				total += v
				if buckets == nil && v > 0 {
					buckets = make([]uint64, len(m.histograms[id]))
				}
				if buckets != nil {
					buckets[i] = v
				}
			}
			if total > 0 {
				out.Histograms[id] = buckets
			}
		}
	}

	return out
}
