package infra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisCounter_IncrementsAndSetsTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	clock := &manualClock{now: time.Unix(6030, 0)}
	c := NewRedisCounter(rdb, WithCounterPrefix("test:rl:"), WithCounterClock(clock.Now))

	for i := int64(1); i <= 3; i++ {
		n, reset, err := c.Increment(context.Background(), "1.2.3.4", time.Minute)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != i {
			t.Fatalf("expected count=%d, got %d", i, n)
		}
		if want := time.Unix(6060, 0); !reset.Equal(want) {
			t.Fatalf("expected reset=%s, got %s", want, reset)
		}
	}

	key := "test:rl:1.2.3.4:100"
	if got, err := mr.Get(key); err != nil || got != "3" {
		t.Fatalf("expected %s=3, got %q (err=%v)", key, got, err)
	}
	// 30s até o fim da janela + 1s de folga
	if ttl := mr.TTL(key); ttl != 31*time.Second {
		t.Fatalf("expected ttl=31s, got %s", ttl)
	}
}

func TestRedisCounter_NewWindowUsesNewKey(t *testing.T) {
	_, rdb := newTestRedis(t)
	clock := &manualClock{now: time.Unix(6000, 0)}
	c := NewRedisCounter(rdb, WithCounterClock(clock.Now))

	_, _, _ = c.Increment(context.Background(), "k", time.Minute)
	_, _, _ = c.Increment(context.Background(), "k", time.Minute)

	clock.Advance(time.Minute)
	n, _, err := c.Increment(context.Background(), "k", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected new window to start at 1, got %d", n)
	}
}

func TestRedisCounter_ReturnsStoreErrors(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := NewRedisCounter(rdb)

	mr.SetError("LOADING Redis is loading the dataset in memory")
	if _, _, err := c.Increment(context.Background(), "k", time.Minute); err == nil {
		t.Fatalf("expected error from redis")
	}
}

func TestRedisCounter_ReturnsErrorWhenUnreachable(t *testing.T) {
	mr, rdb := newTestRedis(t)
	c := NewRedisCounter(rdb)
	mr.Close()

	if _, _, err := c.Increment(context.Background(), "k", time.Minute); err == nil {
		t.Fatalf("expected error when redis is down")
	}
}
