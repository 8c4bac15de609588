package core

import (
	"context"
	"testing"
	"time"
)

func TestStartSyncScheduler_RunOnStart(t *testing.T) {
	store := newMemStore()
	src := &fakeSource{name: sheetsSource, sheet: trackerSheet(2)}
	svc := newTestService(store, src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.StartSyncScheduler(ctx, SchedulerConfig{Interval: time.Hour, RunOnStart: true})
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for src.Calls() == 0 {
		select {
		case <-deadline:
			t.Fatal("scheduler did not run on start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	if len(store.runs) != 1 || store.runs[0].Trigger != TriggerSchedule {
		t.Errorf("runs = %+v, want one scheduled run", store.runs)
	}
}

func TestStartSyncScheduler_Ticks(t *testing.T) {
	src := &fakeSource{name: sheetsSource, sheet: trackerSheet(1)}
	svc := newTestService(newMemStore(), src)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	svc.StartSyncScheduler(ctx, SchedulerConfig{Interval: 20 * time.Millisecond})

	if src.Calls() < 2 {
		t.Errorf("source fetched %d times, want at least 2", src.Calls())
	}
}
