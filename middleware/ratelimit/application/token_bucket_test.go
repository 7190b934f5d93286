package application

import (
	"context"
	"testing"
	"time"

	"github.com/DjSurgeon/mern-thinkboard/middleware/ratelimit/domain"
)

type fakeLimiter struct {
	allow  bool
	tokens float64
}

func (f fakeLimiter) Allow() bool     { return f.allow }
func (f fakeLimiter) Tokens() float64 { return f.tokens }

type fakeStore struct {
	lim  domain.Limiter
	keys []domain.Key
}

func (s *fakeStore) Get(k domain.Key) domain.Limiter {
	s.keys = append(s.keys, k)
	return s.lim
}

func TestTokenBucketService_AllowsWhenNoStore(t *testing.T) {
	svc := TokenBucketService{}
	dec, err := svc.Decide(context.Background(), "k")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.RetryAfter != 0 {
		t.Fatalf("expected RetryAfter=0 when allowed, got %s", dec.RetryAfter)
	}
}

func TestTokenBucketService_ReportsRemainingTokens(t *testing.T) {
	store := &fakeStore{lim: fakeLimiter{allow: true, tokens: 3.7}}
	svc := TokenBucketService{Store: store, Burst: 5}
	dec, _ := svc.Decide(context.Background(), "k")
	if !dec.Allowed {
		t.Fatalf("expected allowed")
	}
	if dec.Limit != 5 || dec.Remaining != 3 {
		t.Fatalf("expected limit=5 remaining=3, got limit=%d remaining=%d", dec.Limit, dec.Remaining)
	}
}

func TestTokenBucketService_BlocksWithRetryAfterDefault(t *testing.T) {
	svc := TokenBucketService{Store: &fakeStore{lim: fakeLimiter{allow: false, tokens: -0.5}}}
	dec, _ := svc.Decide(context.Background(), "k")
	if dec.Allowed {
		t.Fatalf("expected blocked")
	}
	if dec.Remaining != 0 {
		t.Fatalf("expected remaining=0, got %d", dec.Remaining)
	}
	if dec.RetryAfter != 1*time.Second {
		t.Fatalf("expected default RetryAfter=1s, got %s", dec.RetryAfter)
	}
}

func TestTokenBucketService_SharedUsesSingleLimiter(t *testing.T) {
	store := &fakeStore{lim: fakeLimiter{allow: true, tokens: 1}}
	svc := TokenBucketService{Store: store, Shared: true, RetryAfter: 2500 * time.Millisecond}
	_, _ = svc.Decide(context.Background(), "10.0.0.1")
	_, _ = svc.Decide(context.Background(), "10.0.0.2")
	for _, k := range store.keys {
		if k != domain.SharedKey {
			t.Fatalf("expected shared key, got %q", k)
		}
	}
}
