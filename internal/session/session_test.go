package session

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/comptoir-labs/comptoir/internal/domain"
	"github.com/redis/go-redis/v9"
)

func newTestManager(t *testing.T) (*Manager, *Memory) {
	t.Helper()
	mem := NewMemory()
	return NewManager(mem, nil), mem
}

func TestGetOrCreate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, mem := newTestManager(t)

	s, err := mgr.GetOrCreate(ctx, "anon_x:tab1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if s.MessageCount != 0 || s.Unlocked {
		t.Fatalf("new session should be empty and locked: %+v", s)
	}

	s.MessageCount = 3
	if err := mgr.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	again, err := mgr.GetOrCreate(ctx, "anon_x:tab1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if again.MessageCount != 3 {
		t.Fatalf("expected saved count 3, got %d", again.MessageCount)
	}
	if mem.Len() != 1 {
		t.Fatalf("expected 1 stored session, got %d", mem.Len())
	}
}

func TestMemoryReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mem := NewMemory()

	s := domain.NewSession("k", time.Now())
	if err := mem.Save(ctx, s); err != nil {
		t.Fatal(err)
	}

	loaded, err := mem.Load(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	loaded.MessageCount = 99
	loaded.Messages = append(loaded.Messages, domain.NewMessage(domain.RoleVisitor, "hi", time.Now()))

	fresh, err := mem.Load(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.MessageCount != 0 || len(fresh.Messages) != 0 {
		t.Fatalf("unsaved mutation leaked into the store: %+v", fresh)
	}
}

func TestReset(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, mem := newTestManager(t)

	if _, err := mgr.GetOrCreate(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, err := mem.Load(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after reset, got %v", err)
	}
	if err := mgr.Reset(ctx, "k"); err != nil {
		t.Fatalf("resetting a missing session should succeed, got %v", err)
	}
}

func TestTryLock(t *testing.T) {
	t.Parallel()
	mgr, _ := newTestManager(t)

	release, ok := mgr.TryLock("k")
	if !ok {
		t.Fatal("first TryLock should succeed")
	}
	if _, ok := mgr.TryLock("k"); ok {
		t.Fatal("second TryLock on a busy session should fail")
	}
	if _, ok := mgr.TryLock("other"); !ok {
		t.Fatal("locks must be per session")
	}
	if !mgr.Busy("k") {
		t.Fatal("expected k to be busy")
	}

	release()
	release()

	if mgr.Busy("k") {
		t.Fatal("expected k to be free after release")
	}
	if _, ok := mgr.TryLock("k"); !ok {
		t.Fatal("TryLock after release should succeed")
	}
}

func TestTryLockConcurrent(t *testing.T) {
	t.Parallel()
	mgr, _ := newTestManager(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	start := make(chan struct{})
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := mgr.TryLock("k"); ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if winners != 1 {
		t.Fatalf("expected exactly one lock holder, got %d", winners)
	}
}

func TestSweepDropsIdleSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, mem := newTestManager(t)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	stale := domain.NewSession("stale", base.Add(-2*time.Hour))
	fresh := domain.NewSession("fresh", base.Add(-5*time.Minute))
	for _, s := range []*domain.Session{stale, fresh} {
		if err := mem.Save(ctx, s); err != nil {
			t.Fatal(err)
		}
	}

	mgr.now = func() time.Time { return base }

	var expired []string
	n := mgr.sweep(ctx, mem, time.Hour, func(key string) { expired = append(expired, key) })
	if n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if len(expired) != 1 || expired[0] != "stale" {
		t.Fatalf("unexpected expiry callbacks: %v", expired)
	}
	if _, err := mem.Load(ctx, "fresh"); err != nil {
		t.Fatalf("fresh session should survive: %v", err)
	}
}

func TestSweepSkipsBusySessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, mem := newTestManager(t)

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for _, key := range []string{"idle", "streaming"} {
		if err := mem.Save(ctx, domain.NewSession(key, base.Add(-2*time.Hour))); err != nil {
			t.Fatal(err)
		}
	}
	mgr.now = func() time.Time { return base }

	release, ok := mgr.TryLock("streaming")
	if !ok {
		t.Fatal("TryLock failed")
	}
	defer release()

	var expired []string
	mgr.sweep(ctx, mem, time.Hour, func(key string) { expired = append(expired, key) })
	if len(expired) != 1 || expired[0] != "idle" {
		t.Fatalf("unexpected expiry callbacks: %v", expired)
	}
	if _, err := mem.Load(ctx, "streaming"); err != nil {
		t.Fatalf("session with a running turn was swept: %v", err)
	}
}

func TestResetRejectsBusySession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	mgr, mem := newTestManager(t)

	if _, err := mgr.GetOrCreate(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	release, ok := mgr.TryLock("k")
	if !ok {
		t.Fatal("TryLock failed")
	}
	if err := mgr.Reset(ctx, "k"); !errors.Is(err, ErrBusy) {
		t.Fatalf("Reset = %v, want ErrBusy", err)
	}
	if _, err := mem.Load(ctx, "k"); err != nil {
		t.Fatalf("busy session was deleted: %v", err)
	}

	release()
	if err := mgr.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset after release: %v", err)
	}
	if mgr.Busy("k") {
		t.Fatal("Reset left the lock held")
	}
}

func TestKey(t *testing.T) {
	t.Parallel()
	if got := Key("anon_abc", "tab-1"); got != "anon_abc:tab-1" {
		t.Fatalf("Key = %q", got)
	}
}

// TestRedisRoundTrip runs against a live server when REDIS_ADDR is set.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedis(client, time.Minute)
	if err := store.Ping(ctx); err != nil {
		t.Skipf("redis unreachable: %v", err)
	}

	key := "test:" + t.Name()
	s := domain.NewSession(key, time.Now().UTC())
	s.MessageCount = 2
	s.Unlocked = true
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	t.Cleanup(func() { _ = store.Delete(ctx, key) })

	got, err := store.Load(ctx, key)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.MessageCount != 2 || !got.Unlocked {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Load(ctx, key); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
