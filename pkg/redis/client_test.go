package redis

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/noorvia/noorvia-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestFixedWindowAllow(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	clock := time.Unix(1_700_000_000, 0)
	client := &Client{cmd: mock, now: func() time.Time { return clock }}

	allowed, count, err := client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 1 {
		t.Fatalf("expected first request allowed with count 1, got allowed=%v count=%d", allowed, count)
	}
	wantKey := "noorvia:rate_limit:login:ip:1.2.3.4:1700000000"
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].key != wantKey || mock.expireCalls[0].ttl != time.Second {
		t.Fatalf("expected expire on %s for first increment, got %+v", wantKey, mock.expireCalls)
	}

	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed || count != 2 {
		t.Fatalf("unexpected second call state allowed=%v count=%d", allowed, count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}

	allowed, _, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if allowed {
		t.Fatalf("expected limit reached")
	}

	clock = clock.Add(time.Second)
	allowed, count, err = client.FixedWindowAllow(ctx, "login:ip:1.2.3.4", 2, time.Second)
	if err != nil || !allowed || count != 1 {
		t.Fatalf("next window should start over, got allowed=%v count=%d err=%v", allowed, count, err)
	}
}

func TestFixedWindowAllowCountsWhenExpireFails(t *testing.T) {
	mock := newMockCmdable()
	mock.expireErr = errors.New("readonly replica")
	client := &Client{cmd: mock}

	allowed, count, err := client.FixedWindowAllow(context.Background(), "register:ip:1.2.3.4", 5, time.Minute)
	if err == nil {
		t.Fatalf("expected expire error to surface")
	}
	if !allowed || count != 1 {
		t.Fatalf("the hit should still be counted, got allowed=%v count=%d", allowed, count)
	}
	if _, _, err := client.FixedWindowAllow(context.Background(), "x", 1, 0); err == nil {
		t.Fatalf("expected error for a zero window")
	}
}

func TestGetMissAndDelete(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmd: newMockCmdable()}

	if _, err := client.Get(ctx, client.ContentKey("hero")); !IsMiss(err) {
		t.Fatalf("expected miss, got %v", err)
	}
	if err := client.Set(ctx, client.ContentKey("hero"), "{}", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, err := client.Get(ctx, client.ContentKey("hero")); err != nil || v != "{}" {
		t.Fatalf("expected stored value, got %q (%v)", v, err)
	}
	if err := client.Del(ctx, client.ContentKey("hero")); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, client.ContentKey("hero")); !IsMiss(err) {
		t.Fatalf("expected miss after delete, got %v", err)
	}
}

func TestUninitializedClientFails(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); !errors.Is(err, errNotInitialized) {
		t.Fatalf("expected not initialized error, got %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on empty client should be a no-op, got %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.IdempotencyKey("POST:/api/orders", "abc"); got != "noorvia:idempotency:POST:/api/orders:abc" {
		t.Fatalf("unexpected idempotency key %s", got)
	}
	if got := client.rateLimitKey("scope", 42); got != "noorvia:rate_limit:scope:42" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := (&Client{keys: "staging"}).ContentKey("about"); got != "staging:content:about" {
		t.Fatalf("namespace not applied, got %s", got)
	}
	if got := client.AccessSessionKey("jti-1"); got != "noorvia:session:access:jti-1" {
		t.Fatalf("unexpected session key %s", got)
	}
	if got := client.ContentKey(" hero "); got != "noorvia:content:hero" {
		t.Fatalf("unexpected content key %s", got)
	}
	if got := client.IdempotencyKey("scope", ""); got != "noorvia:idempotency:scope" {
		t.Fatalf("empty parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}

	opts, err = optionsFromConfig(config.RedisConfig{Address: "cache:6379", DB: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "cache:6379" || opts.DB != 3 {
		t.Fatalf("unexpected address options %+v", opts)
	}

	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error without url or address")
	}
}

type mockCmdable struct {
	data        map[string]string
	incr        map[string]int64
	expireCalls []expireCall
	expireErr   error
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		data: make(map[string]string),
		incr: make(map[string]int64),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(_ context.Context, key string, value any, _ time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(_ context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) Expire(_ context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	return redis.NewBoolResult(m.expireErr == nil, m.expireErr)
}

func (m *mockCmdable) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
