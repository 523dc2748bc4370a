package infra

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 18, 10, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestCachePutGet(t *testing.T) {
	c := NewCache(time.Minute)
	key := Key{Op: OpSnapshot, Symbol: "RELIANCE.NS"}

	c.Put(key, "value1")
	v, ok := c.Get(key)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if v != "value1" {
		t.Fatalf("got %v, want value1", v)
	}
}

func TestCacheMiss(t *testing.T) {
	c := NewCache(time.Minute)
	if _, ok := c.Get(Key{Op: OpSnapshot, Symbol: "NOPE"}); ok {
		t.Fatal("expected cache miss for nonexistent key")
	}
}

func TestCacheKeyParamsDistinguish(t *testing.T) {
	c := NewCache(time.Minute)
	day := Key{Op: OpChart, Symbol: "BTC", Params: "1d:5m"}
	month := Key{Op: OpChart, Symbol: "BTC", Params: "1mo:1h"}

	c.Put(day, 1)
	c.Put(month, 2)

	if v, _ := c.Get(day); v != 1 {
		t.Errorf("Get(%s) = %v, want 1", day, v)
	}
	if v, _ := c.Get(month); v != 2 {
		t.Errorf("Get(%s) = %v, want 2", month, v)
	}
}

func TestCacheExpiryWithFakeClock(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(time.Hour,
		WithClock(clock.Now),
		WithTTL(OpSnapshot, 5*time.Minute),
		WithTTL(OpChart, 2*time.Minute),
	)
	snap := Key{Op: OpSnapshot, Symbol: "TCS.NS"}
	chart := Key{Op: OpChart, Symbol: "TCS.NS", Params: "1d"}
	c.Put(snap, "s")
	c.Put(chart, "c")

	clock.Advance(2*time.Minute - time.Nanosecond)
	if _, ok := c.Get(chart); !ok {
		t.Fatal("chart entry expired before its TTL")
	}

	clock.Advance(time.Nanosecond)
	if _, ok := c.Get(chart); ok {
		t.Fatal("chart entry still valid at TTL")
	}
	if _, ok := c.Get(snap); !ok {
		t.Fatal("snapshot entry expired with the chart TTL")
	}

	clock.Advance(3 * time.Minute)
	if _, ok := c.Get(snap); ok {
		t.Fatal("expected snapshot miss after TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after lazy eviction", c.Len())
	}
}

func TestCacheOverwriteResetsAge(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(time.Minute, WithClock(clock.Now))
	key := Key{Op: OpSnapshot, Symbol: "INFY.NS"}

	c.Put(key, "old")
	clock.Advance(50 * time.Second)
	c.Put(key, "new")
	clock.Advance(50 * time.Second)

	v, ok := c.Get(key)
	if !ok || v != "new" {
		t.Fatalf("Get() = %v, %v; want new, true", v, ok)
	}
}

func TestCacheInvalidateAndFlush(t *testing.T) {
	c := NewCache(time.Hour)
	a := Key{Op: OpSnapshot, Symbol: "A"}
	b := Key{Op: OpSnapshot, Symbol: "B"}
	c.Put(a, 1)
	c.Put(b, 2)

	c.Invalidate(a)
	if _, ok := c.Get(a); ok {
		t.Fatal("expected cache miss after invalidation")
	}

	c.Flush()
	if _, ok := c.Get(b); ok {
		t.Fatal("expected all entries flushed")
	}
}

func TestCacheCleanup(t *testing.T) {
	clock := newFakeClock()
	c := NewCache(time.Minute, WithClock(clock.Now), WithShards(4))
	c.Put(Key{Op: OpSnapshot, Symbol: "expired"}, "val")
	clock.Advance(2 * time.Minute)
	c.Put(Key{Op: OpSnapshot, Symbol: "fresh"}, "val2")

	if removed := c.Cleanup(); removed != 1 {
		t.Errorf("Cleanup() = %d, want 1", removed)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := NewCache(time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := Key{Op: OpSnapshot, Symbol: fmt.Sprintf("SYM%d", i%10)}
			c.Put(key, i)
			c.Get(key)
		}(i)
	}
	wg.Wait()
	if c.Len() != 10 {
		t.Errorf("Len() = %d, want 10", c.Len())
	}
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(3, time.Second)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait() #%d failed: %v", i, err)
		}
	}
	if rl.Allow() {
		t.Fatal("expected bucket to be empty after burst")
	}
}

func TestRateLimiterCancelledContext(t *testing.T) {
	rl := NewRateLimiter(1, time.Hour)
	ctx := context.Background()

	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first Wait() failed: %v", err)
	}

	ctx2, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx2); err == nil {
		t.Fatal("expected error from expired context")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Second)
	if rl != nil {
		t.Fatal("expected nil limiter for zero tokens")
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("nil limiter Wait() = %v", err)
	}
	if !rl.Allow() {
		t.Fatal("nil limiter should always allow")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info("dropped")
	logger.Warn("kept", "source", "nse")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"source":"nse"`) {
		t.Errorf("expected JSON attribute in output, got %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.input); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
