package registry

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestSweepExpiredRemovesIdleSessions(t *testing.T) {
	store := NewStore(24*time.Hour, zaptest.NewLogger(t))
	store.Create("stale")
	store.Create("fresh")
	store.Create("recent")
	backdate(t, store, "stale", time.Now().Add(-25*time.Hour))
	backdate(t, store, "recent", time.Now().Add(-23*time.Hour))

	if removed := store.SweepExpired(); removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	if store.Exists("stale") {
		t.Fatalf("stale session should be gone")
	}
	if !store.Exists("fresh") || !store.Exists("recent") {
		t.Fatalf("sessions inside the ttl window must be retained")
	}
}

func TestSweepFallsBackToCreatedAt(t *testing.T) {
	store := NewStore(24*time.Hour, zaptest.NewLogger(t))
	store.Create("legacy")

	store.mu.Lock()
	store.sessions["legacy"].LastActiveAt = time.Time{}
	store.sessions["legacy"].CreatedAt = time.Now().Add(-25 * time.Hour)
	store.mu.Unlock()

	if removed := store.SweepExpired(); removed != 1 {
		t.Fatalf("legacy record should expire via CreatedAt, removed=%d", removed)
	}
}

func TestUpdateResetsExpiryClock(t *testing.T) {
	store := NewStore(24*time.Hour, zaptest.NewLogger(t))
	store.Create("s1")
	backdate(t, store, "s1", time.Now().Add(-25*time.Hour))

	if err := store.UpdateCode("s1", "still here"); err != nil {
		t.Fatalf("update code: %v", err)
	}
	if removed := store.SweepExpired(); removed != 0 {
		t.Fatalf("updated session must not be swept, removed=%d", removed)
	}
	if !store.Exists("s1") {
		t.Fatalf("session should survive the sweep after an update")
	}
}

func TestStartSweeperRunsUntilCancelled(t *testing.T) {
	store := NewStore(10*time.Millisecond, zaptest.NewLogger(t))
	store.Create("short-lived")

	ctx, cancel := context.WithCancel(context.Background())
	store.StartSweeper(ctx, 5*time.Millisecond)

	deadline := time.After(2 * time.Second)
	for store.Count() != 0 {
		select {
		case <-deadline:
			t.Fatalf("sweeper never removed the expired session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	// Give the loop a moment to observe cancellation, then verify no
	// further sweeps happen.
	time.Sleep(20 * time.Millisecond)
	store.Create("survivor")
	backdate(t, store, "survivor", time.Now().Add(-time.Hour))
	time.Sleep(30 * time.Millisecond)
	if !store.Exists("survivor") {
		t.Fatalf("sweeper kept running after cancellation")
	}
}
