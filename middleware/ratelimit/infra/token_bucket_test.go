package infra

import (
	"testing"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

func TestTokenBucketStore_GetSameKeyReturnsSameLimiter(t *testing.T) {
	s := NewTokenBucketStore(10, 1)

	l1 := s.Get(domain.Key("k"))
	l2 := s.Get(domain.Key("k"))
	if l1 != l2 {
		t.Fatalf("expected same limiter pointer for same key")
	}
}

func TestTokenBucketStore_LowBurstRejectsSecondImmediateAllow(t *testing.T) {
	s := NewTokenBucketStore(0.02, 1)

	lim := s.Get(domain.Key("k"))
	if !lim.Allow() {
		t.Fatalf("expected first Allow to be true")
	}
	if lim.Allow() {
		t.Fatalf("expected second immediate Allow to be false (burst=1)")
	}
}

func TestTokenBucketStore_ForWindowUsesLimitAsBurst(t *testing.T) {
	s := NewTokenBucketStoreForWindow(25, 100*time.Minute)
	if s.Burst() != 25 {
		t.Fatalf("expected burst=25, got %d", s.Burst())
	}
	want := 25.0 / 6000.0
	if got := s.RPS(); got != want {
		t.Fatalf("expected rps=%v, got %v", want, got)
	}
}

func TestTokenBucketStore_CleanupRemovesIdleEntries(t *testing.T) {
	clock := &manualClock{now: time.Unix(6000, 0)}
	s := NewTokenBucketStore(10, 1, WithIdleTTL(time.Minute), WithCleanupEvery(0), WithBucketClock(clock.Now))

	before := s.Get(domain.Key("idle"))
	clock.Advance(30 * time.Second)
	_ = s.Get(domain.Key("busy"))
	clock.Advance(45 * time.Second)

	if n := s.Cleanup(); n != 1 {
		t.Fatalf("expected 1 idle bucket removed, got %d", n)
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("expected busy bucket to survive, got %d buckets", got)
	}
	if after := s.Get(domain.Key("idle")); before == after {
		t.Fatalf("expected limiter to be recreated after cleanup")
	}
}

func TestTokenBucketStore_ForWindowKeepsBucketsForAWindow(t *testing.T) {
	clock := &manualClock{now: time.Unix(6000, 0)}
	s := NewTokenBucketStoreForWindow(25, 100*time.Minute, WithIdleTTL(time.Minute), WithBucketClock(clock.Now))

	_ = s.Get(domain.SharedKey)
	clock.Advance(99 * time.Minute)
	if n := s.Cleanup(); n != 0 {
		t.Fatalf("expected bucket to be kept within the window, removed %d", n)
	}
}
