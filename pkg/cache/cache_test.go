package cache

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache should never hit")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

// exercise runs the behaviour every backend shares.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v1"), 0); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get(k) = %q, %v, %v", data, hit, err)
	}
	if err := c.Set(ctx, "k", []byte("v2"), time.Hour); err != nil {
		t.Fatalf("Set overwrite error: %v", err)
	}
	if data, _, _ := c.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("overwrite: got %q", data)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete(missing) error: %v", err)
	}

	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)
	if err := Clear(ctx, c); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	for _, k := range []string{"a", "b"} {
		if _, hit, _ := c.Get(ctx, k); hit {
			t.Errorf("%s survived Clear", k)
		}
	}
}

func TestMemoryCache(t *testing.T) {
	exercise(t, NewMemoryCache(0))
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); !hit {
		t.Fatal("expected hit before expiry")
	}
	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expected miss after expiry")
	}
	if c.Len() != 0 {
		t.Errorf("expired entry kept, Len() = %d", c.Len())
	}
}

func TestMemoryCacheEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(2)
	now := time.Unix(1000, 0)
	c.now = func() time.Time { now = now.Add(time.Second); return now }

	_ = c.Set(ctx, "old", []byte("1"), 0)
	_ = c.Set(ctx, "new", []byte("2"), 0)
	_ = c.Set(ctx, "newest", []byte("3"), 0)

	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("oldest entry should be evicted")
	}
	if _, hit, _ := c.Get(ctx, "newest"); !hit {
		t.Error("newest entry missing")
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	exercise(t, c)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, "k", []byte("v"), 0)
	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("ARBOR_REDIS_ADDR")
	if addr == "" {
		t.Skip("ARBOR_REDIS_ADDR not set")
	}
	c, err := NewRedisCache(context.Background(), RedisConfig{Addr: addr, Prefix: "arbor-test:"})
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should hash differently")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h1))
	}

	a, _ := HashJSON(map[string]int{"a": 1, "b": 2})
	b, _ := HashJSON(map[string]int{"b": 2, "a": 1})
	if a != b {
		t.Error("HashJSON should not depend on map order")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := FeatureKeyOpts{Target: "morphology", NeuriteType: "axon"}
	k1 := k.FeatureKey("fp", "total_length", base)
	if k1 != k.FeatureKey("fp", "total_length", base) {
		t.Error("FeatureKey should be deterministic")
	}

	tests := []struct {
		name string
		key  string
	}{
		{"fingerprint", k.FeatureKey("other", "total_length", base)},
		{"feature", k.FeatureKey("fp", "total_area", base)},
		{"neurite type", k.FeatureKey("fp", "total_length", FeatureKeyOpts{Target: "morphology", NeuriteType: "basal_dendrite"})},
		{"params", k.FeatureKey("fp", "total_length", FeatureKeyOpts{Target: "morphology", NeuriteType: "axon", Params: map[string]any{"step_size": 5}})},
		{"registry", k.FeatureKey("fp", "total_length", FeatureKeyOpts{Registry: "other", Target: "morphology", NeuriteType: "axon"})},
	}
	for _, tt := range tests {
		if tt.key == k1 {
			t.Errorf("changing %s should change the key", tt.name)
		}
	}

	if k.StatsKey("fp", "cfg1") == k.StatsKey("fp", "cfg2") {
		t.Error("StatsKey should depend on the config hash")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "scope:")
	opts := FeatureKeyOpts{Target: "neurite"}

	want := "scope:" + inner.FeatureKey("fp", "total_length", opts)
	if got := scoped.FeatureKey("fp", "total_length", opts); got != want {
		t.Errorf("FeatureKey = %q, want %q", got, want)
	}
	want = "scope:" + inner.StatsKey("fp", "cfg")
	if got := scoped.StatsKey("fp", "cfg"); got != want {
		t.Errorf("StatsKey = %q, want %q", got, want)
	}
	if NewScopedKeyer(nil, "x:").StatsKey("a", "b") == "" {
		t.Error("nil inner should fall back to the default keyer")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}

	t.Run("succeeds after transient errors", func(t *testing.T) {
		calls := 0
		err := fast.Retry(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("transient"))
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err %v, calls %d", err, calls)
		}
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		perm := errors.New("permanent")
		err := fast.Retry(ctx, func() error {
			calls++
			return perm
		})
		if !errors.Is(err, perm) || calls != 1 {
			t.Errorf("err %v, calls %d", err, calls)
		}
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := fast.Retry(ctx, func() error {
			calls++
			return Retryable(errors.New("down"))
		})
		if !IsRetryable(err) || calls != 3 {
			t.Errorf("err %v, calls %d", err, calls)
		}
	})

	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
}
