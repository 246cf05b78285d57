package services

import (
	"sync"
	"time"

	"rankwatch/models"
)

// StatsSaver persists the stats document.
type StatsSaver interface {
	Save(stats *models.Stats) error
}

// StatsManager owns the stats document. Mutations happen on the cycle
// goroutine; the mutex only guards readers such as the cron reporter.
type StatsManager struct {
	mu    sync.Mutex
	stats *models.Stats
	store StatsSaver
	now   func() time.Time
}

func NewStatsManager(stats *models.Stats, store StatsSaver, now func() time.Time) *StatsManager {
	if stats == nil {
		stats = models.NewStats()
	}
	if stats.HourlyNewItems == nil {
		stats.HourlyNewItems = models.NewStats().HourlyNewItems
	}
	if now == nil {
		now = time.Now
	}
	return &StatsManager{stats: stats, store: store, now: now}
}

// Update records one finished check cycle and saves the document.
func (m *StatsManager) Update(newItems int) {
	m.mu.Lock()
	now := m.now()
	m.stats.HourlyNewItems[now.Hour()] += newItems
	m.stats.TotalChecks++
	m.stats.TotalNewItems += newItems
	if newItems > 0 {
		m.stats.LastNewItemTime = &now
	}
	m.mu.Unlock()

	m.save()
}

// RecordError counts a caught failure and saves the document.
func (m *StatsManager) RecordError() {
	m.mu.Lock()
	now := m.now()
	m.stats.ErrorCount++
	m.stats.LastErrorTime = &now
	m.mu.Unlock()

	m.save()
}

// HourlyCount returns the new-item count recorded for hour (0-23).
func (m *StatsManager) HourlyCount(hour int) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.HourlyNewItems[hour]
}

// Snapshot returns a copy of the current document.
func (m *StatsManager) Snapshot() *models.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats.Clone()
}

func (m *StatsManager) save() {
	if m.store == nil {
		return
	}
	// Save logs its own failures; the in-memory document is kept either way
	_ = m.store.Save(m.Snapshot())
}
