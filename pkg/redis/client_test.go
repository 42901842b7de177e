package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type fakeStore struct {
	values  map[string]string
	counts  map[string]int64
	expires map[string]time.Duration
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		values:  map[string]string{},
		counts:  map[string]int64{},
		expires: map[string]time.Duration{},
	}
}

func (f *fakeStore) Ping(ctx context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeStore) Get(ctx context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeStore) Incr(ctx context.Context, key string) *redis.IntCmd {
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeStore) Expire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeStore) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	var removed int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			delete(f.values, key)
			removed++
		}
	}
	return redis.NewIntResult(removed, nil)
}

func TestSessionKeyNamespacing(t *testing.T) {
	c := &Client{store: newFakeStore()}
	if got := c.SessionKey("abc"); got != "lc:session:abc" {
		t.Errorf("SessionKey = %s", got)
	}
	if got := c.RateLimitKey("login:ip:127.0.0.1"); got != "lc:rate_limit:login:ip:127.0.0.1" {
		t.Errorf("RateLimitKey = %s", got)
	}
}

func TestFixedWindowAllow(t *testing.T) {
	store := newFakeStore()
	c := &Client{store: store}

	for i := 0; i < 3; i++ {
		allowed, count, err := c.FixedWindowAllow(context.Background(), "login:u:root", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed, count %d", i+1, count)
		}
	}

	allowed, count, err := c.FixedWindowAllow(context.Background(), "login:u:root", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed {
		t.Errorf("fourth request should be denied, count %d", count)
	}
	if store.expires[c.RateLimitKey("login:u:root")] != time.Minute {
		t.Error("expected ttl applied on first increment")
	}
}

func TestSetGetDel(t *testing.T) {
	c := &Client{store: newFakeStore()}
	ctx := context.Background()

	if err := c.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Fatalf("get = %q, %v", got, err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := c.Get(ctx, "k"); err != redis.Nil {
		t.Errorf("expected redis.Nil after delete, got %v", err)
	}
}
