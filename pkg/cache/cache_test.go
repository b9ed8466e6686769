package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/commitgraph/pkg/core/bek"
	"github.com/matzehuels/commitgraph/pkg/core/permanent"
	"github.com/matzehuels/commitgraph/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = (%q, %v, %v), want a miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestFingerprint(t *testing.T) {
	base := []permanent.Commit[string]{
		{ID: "b", Parents: []string{"a"}, Timestamp: 2},
		{ID: "a", Timestamp: 1},
	}
	fp := Fingerprint(base, 0)
	if fp != Fingerprint(base, 0) {
		t.Fatal("Fingerprint should be deterministic")
	}

	variants := map[string][]permanent.Commit[string]{
		"timestamp": {{ID: "b", Parents: []string{"a"}, Timestamp: 3}, {ID: "a", Timestamp: 1}},
		"parents":   {{ID: "b", Timestamp: 2}, {ID: "a", Timestamp: 1}},
		"order":     {{ID: "a", Timestamp: 1}, {ID: "b", Parents: []string{"a"}, Timestamp: 2}},
		"boundary":  {{ID: "ba", Timestamp: 2}, {ID: "", Timestamp: 1}},
	}
	for name, commits := range variants {
		if Fingerprint(commits, 0) == fp {
			t.Errorf("%s: fingerprint unchanged", name)
		}
	}

	missing := []permanent.Commit[string]{{ID: "a"}}
	if Fingerprint(missing, 5) != Fingerprint([]permanent.Commit[string]{{ID: "a", Timestamp: 5}}, 0) {
		t.Error("missing timestamp not substituted")
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get on empty cache = (%v, %v), want miss", hit, err)
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || !hit || string(data) != "value" {
		t.Errorf("Get = (%q, %v, %v), want value", data, hit, err)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "key"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	if err := c.Set(ctx, "short", []byte("x"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "forever", []byte("y"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "key"); hit || err != nil {
		t.Errorf("Get = (%v, %v), want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCachePruneAndClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	now := time.Unix(1000, 0)
	c.now = func() time.Time { return now }

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), time.Minute); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Set(ctx, "keep", []byte("k"), 0); err != nil {
		t.Fatal(err)
	}

	now = now.Add(time.Hour)
	n, err := c.Prune(ctx)
	if err != nil || n != 3 {
		t.Errorf("Prune = (%d, %v), want 3", n, err)
	}
	n, err = c.Clear(ctx)
	if err != nil || n != 1 {
		t.Errorf("Clear = (%d, %v), want 1", n, err)
	}
}

func TestKeyers(t *testing.T) {
	k := NewDefaultKeyer()
	if got := k.OrderKey("abc"); got != "order:v1:abc" {
		t.Errorf("OrderKey = %q", got)
	}
	for _, scope := range []string{"repo:x", "repo:x:"} {
		if got := NewScopedKeyer(nil, scope).OrderKey("abc"); got != "repo:x:order:v1:abc" {
			t.Errorf("scope %q: OrderKey = %q", scope, got)
		}
	}
}

type countingHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets int
}

func (h *countingHooks) OnCacheHit(context.Context, string)      { h.hits++ }
func (h *countingHooks) OnCacheMiss(context.Context, string)     { h.misses++ }
func (h *countingHooks) OnCacheSet(context.Context, string, int) { h.sets++ }

func TestOrderStore(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	store := NewOrderStore(c, time.Hour)

	if _, ok, err := store.LoadOrder(ctx, "k"); ok || err != nil {
		t.Fatalf("LoadOrder on empty store = (%v, %v)", ok, err)
	}

	want := new(bek.Order)
	if err := want.UnmarshalBinary([]byte{3, 2, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreOrder(ctx, "k", want); err != nil {
		t.Fatalf("StoreOrder: %v", err)
	}
	got, ok, err := store.LoadOrder(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("LoadOrder = (%v, %v)", ok, err)
	}
	for row := 0; row < want.Len(); row++ {
		if got.NodeID(row) != want.NodeID(row) {
			t.Errorf("row %d: node %d, want %d", row, got.NodeID(row), want.NodeID(row))
		}
	}
	if hooks.hits != 1 || hooks.misses != 1 || hooks.sets != 1 {
		t.Errorf("hooks = %d hits, %d misses, %d sets", hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestOrderStoreCorrupt(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set(ctx, "k", []byte("garbage"), 0); err != nil {
		t.Fatal(err)
	}
	store := NewOrderStore(c, 0)
	_, ok, err := store.LoadOrder(ctx, "k")
	if ok || !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadOrder = (%v, %v), want ErrCorrupt", ok, err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("corrupt order not deleted")
	}
}

func TestBackoff(t *testing.T) {
	ctx := context.Background()
	b := backoff{attempts: 3, delay: time.Millisecond}
	plain := errors.New("boom")

	tests := []struct {
		name      string
		failures  int // calls failing before success
		err       error
		wantErr   error
		wantCalls int
	}{
		{"recovers", 2, ErrUnavailable, nil, 3},
		{"not retried", 5, plain, plain, 1},
		{"exhausted", 5, ErrUnavailable, ErrUnavailable, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.do(ctx, func() error {
				if calls++; calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := backoff{attempts: 3, delay: time.Hour}
	err := b.do(ctx, func() error { return ErrUnavailable })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClassify(t *testing.T) {
	if err := classify(redis.Nil); err != redis.Nil {
		t.Errorf("classify(redis.Nil) = %v", err)
	}
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("refused")}
	if err := classify(opErr); !errors.Is(err, ErrUnavailable) || !errors.Is(err, opErr) {
		t.Errorf("classify(net error) = %v, want ErrUnavailable", err)
	}
	if err := classify(plainErr); err != plainErr {
		t.Errorf("classify(plain) = %v", err)
	}
	if classify(nil) != nil {
		t.Error("classify(nil) != nil")
	}
}

var plainErr = errors.New("WRONGTYPE")

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisCache succeeded against a closed port")
	}
}
