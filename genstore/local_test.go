package genstore

import (
	"context"
	"testing"
	"time"
)

func TestLocalBumpAndSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(0, 0)
	t.Cleanup(func() { _ = s.Close(ctx) })

	if g, _ := s.Snapshot(ctx, "a"); g != 0 {
		t.Fatalf("missing id should be gen 0, got %d", g)
	}
	for want := uint64(1); want <= 2; want++ {
		g, err := s.Bump(ctx, "a")
		if err != nil {
			t.Fatal(err)
		}
		if g != want {
			t.Fatalf("Bump = %d, want %d", g, want)
		}
	}
	if g, _ := s.Snapshot(ctx, "a"); g != 2 {
		t.Fatalf("Snapshot = %d, want 2", g)
	}
	if g, _ := s.Snapshot(ctx, "b"); g != 0 {
		t.Fatalf("ids must be independent, got %d", g)
	}
}

func TestLocalCleanupPrunesOld(t *testing.T) {
	ctx := context.Background()
	s := NewLocalGenStore(0, time.Second) // no sweeper; manual cleanup
	t.Cleanup(func() { _ = s.Close(ctx) })

	if _, err := s.Bump(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(50 * time.Millisecond)
	s.Cleanup(10 * time.Millisecond)

	g, err := s.Snapshot(ctx, "old")
	if err != nil {
		t.Fatal(err)
	}
	if g != 0 {
		t.Fatalf("expected pruned -> 0, got %d", g)
	}
}

func TestLocalSweeperStopsOnClose(t *testing.T) {
	s := NewLocalGenStore(5*time.Millisecond, time.Millisecond)
	if _, err := s.Bump(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		if g, _ := s.Snapshot(context.Background(), "x"); g == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sweeper never pruned x")
		}
		time.Sleep(5 * time.Millisecond)
	}
	_ = s.Close(context.Background())
	_ = s.Close(context.Background()) // idempotent
}
