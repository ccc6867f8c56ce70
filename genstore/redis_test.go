package genstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisGenStore, *miniredis.Miniredis) {
	t.Helper()
	mini := miniredis.RunT(t)
	s := NewRedisGenStore(RedisConfig{
		Client:      redis.NewClient(&redis.Options{Addr: mini.Addr()}),
		Namespace:   "test",
		TTL:         ttl,
		CloseClient: true,
	})
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s, mini
}

func TestRedisBumpAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s, mini := newRedisStore(t, 0)

	if g, err := s.Snapshot(ctx, "a"); err != nil || g != 0 {
		t.Fatalf("Snapshot(missing) = %d, %v", g, err)
	}
	for want := uint64(1); want <= 3; want++ {
		g, err := s.Bump(ctx, "a")
		if err != nil {
			t.Fatal(err)
		}
		if g != want {
			t.Fatalf("Bump = %d, want %d", g, want)
		}
	}
	if g, _ := s.Snapshot(ctx, "a"); g != 3 {
		t.Fatalf("Snapshot = %d, want 3", g)
	}
	if !mini.Exists("gen:test:a") {
		t.Fatal("generation key not namespaced")
	}
}

func TestRedisGenerationExpires(t *testing.T) {
	ctx := context.Background()
	s, mini := newRedisStore(t, time.Minute)

	if _, err := s.Bump(ctx, "a"); err != nil {
		t.Fatal(err)
	}
	if ttl := mini.TTL("gen:test:a"); ttl != time.Minute {
		t.Fatalf("TTL = %v, want 1m", ttl)
	}
	mini.FastForward(2 * time.Minute)
	if g, _ := s.Snapshot(ctx, "a"); g != 0 {
		t.Fatalf("expired generation should read 0, got %d", g)
	}
}

func TestRedisSnapshotParseError(t *testing.T) {
	s, mini := newRedisStore(t, 0)
	if err := mini.Set("gen:test:a", "nope"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Snapshot(context.Background(), "a"); err == nil {
		t.Fatal("expected parse error")
	}
}
