package viewer

import (
	"context"
	"testing"
	"time"
)

func TestCleanupServiceSweepsIdleSessions(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(Options{IdleTTL: time.Hour})
	s.now = func() time.Time { return now }
	_, _ = s.Load(1, numberTable(1, 1))
	_, _ = s.Load(2, numberTable(1, 1))

	later := now.Add(2 * time.Hour)
	s.now = func() time.Time { return later }

	svc := NewCleanupService(s, time.Millisecond)
	svc.Start(context.Background())
	svc.Start(context.Background())
	if !svc.Running() {
		t.Fatal("service should be running after Start")
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("sessions not swept, len = %d", s.Len())
		}
		time.Sleep(time.Millisecond)
	}

	svc.Stop()
	svc.Stop()
	if svc.Running() {
		t.Fatal("service should be stopped")
	}
}

func TestCleanupServiceDefaultInterval(t *testing.T) {
	svc := NewCleanupService(NewStore(Options{}), 0)
	if svc.interval != DefaultCleanupInterval {
		t.Fatalf("interval = %v, want %v", svc.interval, DefaultCleanupInterval)
	}
	svc.Stop()
}
