package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	tokenward "github.com/MrEthical07/tokenward"
	"github.com/MrEthical07/tokenward/store"
)

type fakeSource struct {
	snapshot tokenward.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() tokenward.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                       { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: tokenward.MetricsSnapshot{
			Counters:   map[tokenward.MetricID]uint64{},
			Histograms: map[tokenward.MetricID][]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounterAndHistogram(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: tokenward.MetricsSnapshot{
			Counters: map[tokenward.MetricID]uint64{
				tokenward.MetricIssueSuccess:         7,
				tokenward.MetricRefreshReuseDetected: 2,
			},
			Histograms: map[tokenward.MetricID][]uint64{
				tokenward.MetricVerifyLatency: {1, 2, 3, 4, 5, 6, 7, 8},
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "tokenward_issue_success_total 7") {
		t.Fatalf("expected issue_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "tokenward_refresh_reuse_detected_total 2") {
		t.Fatalf("expected reuse counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "tokenward_verify_latency_seconds_bucket{le=\"0.005\"} 1") {
		t.Fatalf("expected first histogram bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "tokenward_verify_latency_seconds_bucket{le=\"+Inf\"} 36") {
		t.Fatalf("expected +Inf cumulative bucket in output, got:\n%s", out)
	}
	if !strings.Contains(out, "tokenward_verify_latency_seconds_count 36") {
		t.Fatalf("expected histogram count in output, got:\n%s", out)
	}
	if !strings.Contains(out, "tokenward_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: tokenward.MetricsSnapshot{
			Counters:   map[tokenward.MetricID]uint64{tokenward.MetricIssueSuccess: 1},
			Histograms: map[tokenward.MetricID][]uint64{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "tokenward_issue_success_total 1") {
		t.Fatalf("unexpected body:\n%s", rec.Body.String())
	}
}

func TestRenderFromLiveAuthority(t *testing.T) {
	cfg := tokenward.DefaultConfig()
	cfg.Tokens.AccessSecret = []byte("metrics-access-secret")
	cfg.Tokens.RefreshSecret = []byte("metrics-refresh-secret")
	cfg.Tokens.Issuer = "tokenward-test"
	cfg.Tokens.Audience = "test-clients"

	authority, err := tokenward.New().
		WithConfig(cfg).
		WithStore(store.NewMemoryStore()).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer authority.Close()

	exp := NewPrometheusExporter(authority)
	if !strings.Contains(exp.Render(), "tokenward_issue_success_total 0") {
		t.Fatalf("expected zeroed counters from a fresh authority, got:\n%s", exp.Render())
	}
}
