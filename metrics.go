package goSession

import (
	internalmetrics "github.com/MrEthical07/goSession/internal/metrics"
)

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLogin is an exported constant used by the session controller.
	MetricLogin = internalmetrics.MetricLogin
	// MetricLogout is an exported constant used by the session controller.
	MetricLogout = internalmetrics.MetricLogout
	// MetricForcedLogoutExpiry is an exported constant used by the session controller.
	MetricForcedLogoutExpiry = internalmetrics.MetricForcedLogoutExpiry
	// MetricForcedLogoutIdle is an exported constant used by the session controller.
	MetricForcedLogoutIdle = internalmetrics.MetricForcedLogoutIdle
	// MetricIdleWarning is an exported constant used by the session controller.
	MetricIdleWarning = internalmetrics.MetricIdleWarning
	// MetricWarningExpired is an exported constant used by the session controller.
	MetricWarningExpired = internalmetrics.MetricWarningExpired
	// MetricRefreshSuccess is an exported constant used by the session controller.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure is an exported constant used by the session controller.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricTokenReplaced is an exported constant used by the session controller.
	MetricTokenReplaced = internalmetrics.MetricTokenReplaced
	// MetricDecodeFailure is an exported constant used by the session controller.
	MetricDecodeFailure = internalmetrics.MetricDecodeFailure
	// MetricPeerTokenChange is an exported constant used by the session controller.
	MetricPeerTokenChange = internalmetrics.MetricPeerTokenChange
	// MetricPeerConfigChange is an exported constant used by the session controller.
	MetricPeerConfigChange = internalmetrics.MetricPeerConfigChange
	// MetricStoreDegraded is an exported constant used by the session controller.
	MetricStoreDegraded = internalmetrics.MetricStoreDegraded
	// MetricRefreshLatency is an exported constant used by the session controller.
	MetricRefreshLatency = internalmetrics.MetricRefreshLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
