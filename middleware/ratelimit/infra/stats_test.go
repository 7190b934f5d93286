package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMemoryStatsStore_CountsByLimiterAndRoute(t *testing.T) {
	s := NewMemoryStatsStore(WithTrackKeys(true))
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Limiter: "redis", Key: "1.2.3.4", Allowed: true, Method: "GET", Path: "/api/notes"})
	_ = s.Record(ctx, domain.StatsEvent{Limiter: "redis", Key: "1.2.3.4", Allowed: false, Method: "GET", Path: "/api/notes"})
	_ = s.Record(ctx, domain.StatsEvent{Limiter: "local", Key: "5.6.7.8", Allowed: true, Method: "POST", Path: "/api/notes"})

	if got := s.Total(); got.Allowed != 2 || got.Denied != 1 {
		t.Fatalf("unexpected total: %+v", got)
	}
	if got := s.ByLimiter()["redis"]; got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("unexpected redis counters: %+v", got)
	}
	if got := s.ByRoute()["POST /api/notes"]; got.Allowed != 1 {
		t.Fatalf("unexpected route counters: %+v", got)
	}
	if got := s.ByKey()["1.2.3.4"]; got.Denied != 1 {
		t.Fatalf("unexpected key counters: %+v", got)
	}
}

func TestRedisStatsStore_WritesHashes(t *testing.T) {
	mr, rdb := newTestRedis(t)
	s := NewRedisStatsStore(rdb, WithStatsPrefix("stats:"), WithStatsTTL(time.Hour))

	at := time.Date(2025, 8, 9, 10, 30, 0, 0, time.UTC)
	err := s.Record(context.Background(), domain.StatsEvent{
		Limiter: "redis", Key: "1.2.3.4", Allowed: false, Method: "GET", Path: "/api/notes", At: at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := mr.HGet("stats:total", "denied"); got != "1" {
		t.Fatalf("expected total denied=1, got %q", got)
	}
	if got := mr.HGet("stats:limiter", "redis:denied"); got != "1" {
		t.Fatalf("expected limiter redis:denied=1, got %q", got)
	}
	if got := mr.HGet("stats:minute:202508091030", "denied"); got != "1" {
		t.Fatalf("expected minute bucket denied=1, got %q", got)
	}
	if got := mr.HGet("stats:route", "GET /api/notes:denied"); got != "1" {
		t.Fatalf("expected route denied=1, got %q", got)
	}
	if mr.Exists("stats:key:1.2.3.4") {
		t.Fatalf("expected per-key hash only when trackKeys is on")
	}
}

func TestPrometheusStats_CountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheusStats(reg, "thinkboard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_ = p.Record(context.Background(), domain.StatsEvent{Limiter: "local", Allowed: true})
	_ = p.Record(context.Background(), domain.StatsEvent{Limiter: "local", Allowed: false})
	_ = p.Record(context.Background(), domain.StatsEvent{Limiter: "local", Allowed: false})

	if got := testutil.ToFloat64(p.decisions.WithLabelValues("local", "denied")); got != 2 {
		t.Fatalf("expected 2 denied, got %v", got)
	}
	if _, err := NewPrometheusStats(reg, "thinkboard"); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

type failingStats struct{ calls int }

func (f *failingStats) Record(context.Context, domain.StatsEvent) error {
	f.calls++
	return errors.New("boom")
}

func TestMultiStats_FansOutAndKeepsFirstError(t *testing.T) {
	mem := NewMemoryStatsStore()
	bad := &failingStats{}
	m := MultiStats{bad, nil, mem}

	if err := m.Record(context.Background(), domain.StatsEvent{Allowed: true}); err == nil {
		t.Fatalf("expected error")
	}
	if bad.calls != 1 || mem.Total().Allowed != 1 {
		t.Fatalf("expected every store to receive the event")
	}
}

func TestMemoryStatsStore_Snapshot(t *testing.T) {
	s := NewMemoryStatsStore()
	ctx := context.Background()

	_ = s.Record(ctx, domain.StatsEvent{Limiter: "local", Key: "1.2.3.4", Allowed: true, Method: "GET", Path: "/"})
	_ = s.Record(ctx, domain.StatsEvent{Limiter: "local", Key: "1.2.3.4", Allowed: false, Method: "GET", Path: "/"})

	snap := s.Snapshot()
	if snap.Total.Allowed != 1 || snap.Total.Denied != 1 {
		t.Fatalf("unexpected total: %+v", snap.Total)
	}
	if got := snap.ByRoute["GET /"]; got.Denied != 1 {
		t.Fatalf("unexpected route counters: %+v", got)
	}
	if snap.ByKey != nil {
		t.Fatalf("expected no per-key counters without trackKeys")
	}

	// o snapshot é uma cópia
	snap.ByLimiter["local"] = Counters{}
	if got := s.ByLimiter()["local"]; got.Allowed != 1 {
		t.Fatalf("snapshot must not alias internal maps")
	}
}
