package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session controller.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricLogin, Name: "gsession_login_total", Help: "Explicit login operations."},
	{ID: goSession.MetricLogout, Name: "gsession_logout_total", Help: "Explicit logout operations."},
	{ID: goSession.MetricForcedLogoutExpiry, Name: "gsession_forced_logout_expiry_total", Help: "Forced logouts caused by token expiry."},
	{ID: goSession.MetricForcedLogoutIdle, Name: "gsession_forced_logout_idle_total", Help: "Forced logouts caused by the idle timeout."},
	{ID: goSession.MetricIdleWarning, Name: "gsession_idle_warning_total", Help: "Idle warnings shown."},
	{ID: goSession.MetricWarningExpired, Name: "gsession_warning_expired_total", Help: "Idle warning countdowns that reached zero."},
	{ID: goSession.MetricRefreshSuccess, Name: "gsession_refresh_success_total", Help: "Successful silent refresh operations."},
	{ID: goSession.MetricRefreshFailure, Name: "gsession_refresh_failure_total", Help: "Failed silent refresh operations."},
	{ID: goSession.MetricTokenReplaced, Name: "gsession_token_replaced_total", Help: "Token replacement operations."},
	{ID: goSession.MetricDecodeFailure, Name: "gsession_decode_failure_total", Help: "Tokens whose claims could not be decoded."},
	{ID: goSession.MetricPeerTokenChange, Name: "gsession_peer_token_change_total", Help: "Token changes replayed from peer instances."},
	{ID: goSession.MetricPeerConfigChange, Name: "gsession_peer_config_change_total", Help: "Idle-timeout changes replayed from peer instances."},
	{ID: goSession.MetricStoreDegraded, Name: "gsession_store_degraded_total", Help: "Transitions of the durable store into degraded mode."},
}

// HistogramDefs is an exported constant or variable used by the session controller.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricRefreshLatency, Name: "gsession_refresh_latency_seconds", Help: "Silent refresh latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session controller.
var HistogramBounds = []string{
	"0.005",
	"0.01",
	"0.025",
	"0.05",
	"0.1",
	"0.25",
	"0.5",
	"+Inf",
}

// HistogramBoundSuffix is an exported constant or variable used by the session controller.
var HistogramBoundSuffix = []string{
	"0_005",
	"0_01",
	"0_025",
	"0_05",
	"0_1",
	"0_25",
	"0_5",
	"inf",
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
