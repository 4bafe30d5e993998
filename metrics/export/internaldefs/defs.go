// Package internaldefs holds the shared metric name/help definitions used
// by the Prometheus and OTel exporters so both expose identical series.
package internaldefs

import (
	tokenward "github.com/MrEthical07/tokenward"
)

// CounterDef maps one in-process counter to a stable exported name.
type CounterDef struct {
	ID   tokenward.MetricID
	Name string
	Help string
}

// HistogramDef maps one in-process histogram to a stable exported name.
type HistogramDef struct {
	ID   tokenward.MetricID
	Name string
	Help string
}

// CounterDefs lists every exported counter in exposition order.
var CounterDefs = []CounterDef{
	{ID: tokenward.MetricIssueSuccess, Name: "tokenward_issue_success_total", Help: "Issued token pairs."},
	{ID: tokenward.MetricIssueFailure, Name: "tokenward_issue_failure_total", Help: "Failed issuance attempts."},
	{ID: tokenward.MetricAccessVerifySuccess, Name: "tokenward_access_verify_success_total", Help: "Accepted access tokens."},
	{ID: tokenward.MetricAccessVerifyFailure, Name: "tokenward_access_verify_failure_total", Help: "Rejected access tokens."},
	{ID: tokenward.MetricAccessBlacklisted, Name: "tokenward_access_blacklisted_total", Help: "Access tokens rejected by the blacklist."},
	{ID: tokenward.MetricSessionRevokedHit, Name: "tokenward_session_revoked_hit_total", Help: "Access tokens rejected by a revoked-session marker."},
	{ID: tokenward.MetricRefreshSuccess, Name: "tokenward_refresh_success_total", Help: "Completed refresh rotations."},
	{ID: tokenward.MetricRefreshFailure, Name: "tokenward_refresh_failure_total", Help: "Failed refresh rotations."},
	{ID: tokenward.MetricRefreshReuseDetected, Name: "tokenward_refresh_reuse_detected_total", Help: "Detected refresh token reuses."},
	{ID: tokenward.MetricRefreshRateLimited, Name: "tokenward_refresh_rate_limited_total", Help: "Rate-limited refresh attempts."},
	{ID: tokenward.MetricBlacklistWrite, Name: "tokenward_blacklist_write_total", Help: "Blacklist entries written."},
	{ID: tokenward.MetricRevokeSession, Name: "tokenward_revoke_session_total", Help: "Single-session revocations."},
	{ID: tokenward.MetricRevokeAll, Name: "tokenward_revoke_all_total", Help: "Coarse revoke-all operations."},
	{ID: tokenward.MetricStoreUnavailable, Name: "tokenward_store_unavailable_total", Help: "Credential store round trips that failed or timed out."},
	{ID: tokenward.MetricFailOpenAccepted, Name: "tokenward_fail_open_accepted_total", Help: "Tokens accepted under the fail-open policy while the store was unreachable."},
}

// HistogramDefs lists every exported histogram.
var HistogramDefs = []HistogramDef{
	{ID: tokenward.MetricVerifyLatency, Name: "tokenward_verify_latency_seconds", Help: "Access verification latency histogram."},
}

// HistogramBounds are the bucket upper bounds in seconds, matching the
// core histogram's millisecond buckets.
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

// HistogramBoundSuffix gives OTel-safe instrument name suffixes for each bound.
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

// NormalizeBuckets pads or truncates a raw snapshot slice to the fixed
// bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus histograms expose.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
