package tokenward

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/tokenward/store"
)

func BenchmarkMetricsInc(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricAccessVerifySuccess)
	}
}

func BenchmarkMetricsIncDisabled(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		m.Inc(MetricAccessVerifySuccess)
	}
}

func BenchmarkMetricsIncParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Inc(MetricAccessVerifySuccess)
		}
	})
}

func BenchmarkMetricsObserveLatencyParallel(b *testing.B) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	d := 12 * time.Millisecond
	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			m.Observe(MetricVerifyLatency, d)
		}
	})
}

func benchAuthority(b *testing.B) *Authority {
	b.Helper()

	cfg := DefaultConfig()
	cfg.Tokens.AccessSecret = []byte("bench-access-secret")
	cfg.Tokens.RefreshSecret = []byte("bench-refresh-secret")
	cfg.Tokens.Issuer = "tokenward-bench"
	cfg.Tokens.Audience = "bench-clients"

	authority, err := New().
		WithConfig(cfg).
		WithStore(store.NewMemoryStore()).
		Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	return authority
}

func BenchmarkVerifyAccess(b *testing.B) {
	authority := benchAuthority(b)
	defer authority.Close()

	ctx := context.Background()
	pair, err := authority.Issue(ctx, Identity{UserID: "u1", Email: "bench@example.com"})
	if err != nil {
		b.Fatalf("Issue failed: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := authority.VerifyAccess(ctx, pair.AccessToken); err != nil {
			b.Fatalf("VerifyAccess failed: %v", err)
		}
	}
}

func BenchmarkIssue(b *testing.B) {
	authority := benchAuthority(b)
	defer authority.Close()

	ctx := context.Background()
	identity := Identity{UserID: "u1", Email: "bench@example.com"}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := authority.Issue(ctx, identity); err != nil {
			b.Fatalf("Issue failed: %v", err)
		}
	}
}
