package storage

import (
	"path/filepath"
	"testing"
	"time"

	"rankwatch/models"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_RunLifecycle(t *testing.T) {
	store := newTestSQLite(t)

	run := &models.CycleRun{ID: "run-1", StartedAt: time.Now(), Status: models.RunStatusRunning, Targets: 2}
	if err := store.CreateRun(run); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	finished := time.Now()
	run.FinishedAt = &finished
	run.Status = models.RunStatusCompleted
	run.NewItems = 1
	if err := store.UpdateRun(run); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Status != models.RunStatusCompleted || got.NewItems != 1 || got.FinishedAt == nil {
		t.Fatalf("unexpected run %+v", got)
	}

	missing, err := store.GetRun("nope")
	if err != nil || missing != nil {
		t.Fatalf("expected nil run, got %+v / %v", missing, err)
	}
}

func TestSQLiteStore_RecentChangesNewestFirst(t *testing.T) {
	store := newTestSQLite(t)
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, name := range []string{"Camera A", "Camera B", "Camera C"} {
		ev := &models.ChangeEvent{
			ID:          name,
			RunID:       "run-1",
			TargetKey:   "Shop_Camera",
			NewName:     name,
			Fingerprint: "00000000",
			Price:       "1000",
			URL:         "https://example.com",
			DetectedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.RecordChange(ev); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	events, err := store.RecentChanges(2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].NewName != "Camera C" || events[1].NewName != "Camera B" {
		t.Fatalf("unexpected order: %s, %s", events[0].NewName, events[1].NewName)
	}
}

func TestSQLiteStore_Logs(t *testing.T) {
	store := newTestSQLite(t)
	runID := "run-9"

	if err := store.Log(&runID, models.LogLevelWarn, "too few listings", "Shop_Camera"); err != nil {
		t.Fatalf("log failed: %v", err)
	}
	logs, err := store.GetLogs(runID)
	if err != nil {
		t.Fatalf("get logs failed: %v", err)
	}
	if len(logs) != 1 || logs[0].Level != models.LogLevelWarn || logs[0].TargetKey != "Shop_Camera" {
		t.Fatalf("unexpected logs %+v", logs)
	}
}
