package services

import (
	"errors"
	"testing"
	"time"

	"rankwatch/models"
)

type recordingSaver struct {
	saved []*models.Stats
	err   error
}

func (r *recordingSaver) Save(stats *models.Stats) error {
	r.saved = append(r.saved, stats)
	return r.err
}

func TestStatsManager_Update(t *testing.T) {
	now := time.Date(2025, 3, 1, 14, 5, 0, 0, jst)
	saver := &recordingSaver{}
	m := NewStatsManager(nil, saver, fixedClock(now))

	m.Update(0)
	m.Update(2)

	s := m.Snapshot()
	if s.TotalChecks != 2 || s.TotalNewItems != 2 {
		t.Fatalf("unexpected totals %+v", s)
	}
	if s.HourlyNewItems[14] != 2 || m.HourlyCount(14) != 2 {
		t.Fatalf("expected 2 new items in hour 14, got %d", s.HourlyNewItems[14])
	}
	if s.LastNewItemTime == nil || !s.LastNewItemTime.Equal(now) {
		t.Fatalf("unexpected last new item time %v", s.LastNewItemTime)
	}
	if len(saver.saved) != 2 {
		t.Fatalf("expected a save per update, got %d", len(saver.saved))
	}
}

func TestStatsManager_NoNewItemsKeepsTimestamp(t *testing.T) {
	m := NewStatsManager(nil, nil, nil)
	m.Update(0)
	if m.Snapshot().LastNewItemTime != nil {
		t.Fatalf("expected no last new item time")
	}
}

func TestStatsManager_RecordErrorSurvivesSaveFailure(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, jst)
	saver := &recordingSaver{err: errors.New("disk full")}
	m := NewStatsManager(models.NewStats(), saver, fixedClock(now))

	m.RecordError()
	m.RecordError()

	s := m.Snapshot()
	if s.ErrorCount != 2 {
		t.Fatalf("expected 2 errors, got %d", s.ErrorCount)
	}
	if s.LastErrorTime == nil || !s.LastErrorTime.Equal(now) {
		t.Fatalf("unexpected last error time %v", s.LastErrorTime)
	}
}

func TestStatsManager_SnapshotIsCopy(t *testing.T) {
	m := NewStatsManager(nil, nil, nil)
	s := m.Snapshot()
	s.HourlyNewItems[3] = 99
	if m.HourlyCount(3) != 0 {
		t.Fatalf("snapshot must not alias the live document")
	}
}

func TestStatsManager_RepairsNullBuckets(t *testing.T) {
	m := NewStatsManager(&models.Stats{}, nil, nil)
	m.Update(1)
	if m.Snapshot().TotalNewItems != 1 {
		t.Fatalf("expected update to succeed on a document without buckets")
	}
}
