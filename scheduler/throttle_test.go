package scheduler

import (
	"testing"
	"time"

	"rankwatch/config"
)

type fixedCounter map[int]int

func (c fixedCounter) HourlyCount(hour int) int { return c[hour] }

var jst = time.FixedZone("JST", 9*60*60)

func monitorConfig() config.MonitorConfig {
	return config.MonitorConfig{
		CheckInterval:     30 * time.Second,
		IdleInterval:      60 * time.Second,
		SleepStart:        1,
		SleepEnd:          8,
		ActivityThreshold: 3,
	}
}

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, jst)
}

func TestNextInterval_SleepWindowBoundaries(t *testing.T) {
	th := NewThrottle(monitorConfig(), fixedCounter{})

	tests := []struct {
		now      time.Time
		skip     bool
		interval time.Duration
		reason   string
	}{
		{at(0, 59), false, 30 * time.Second, ReasonNormal},
		{at(1, 0), true, 60 * time.Second, ReasonSleep},
		{at(4, 30), true, 60 * time.Second, ReasonSleep},
		{at(7, 59), true, 60 * time.Second, ReasonSleep},
		{at(8, 0), false, 30 * time.Second, ReasonNormal},
		{at(23, 0), false, 30 * time.Second, ReasonNormal},
	}

	for _, tt := range tests {
		d := th.NextInterval(tt.now)
		if d.ShouldSkip != tt.skip || d.Interval != tt.interval || d.Reason != tt.reason {
			t.Fatalf("at %s: got %+v, want skip=%t interval=%s reason=%s",
				tt.now.Format("15:04"), d, tt.skip, tt.interval, tt.reason)
		}
	}
}

func TestNextInterval_ActiveHourKeepsInterval(t *testing.T) {
	th := NewThrottle(monitorConfig(), fixedCounter{14: 3, 15: 2})

	active := th.NextInterval(at(14, 10))
	if active.Reason != ReasonActive || active.Interval != 30*time.Second || active.ShouldSkip {
		t.Fatalf("unexpected decision for busy hour: %+v", active)
	}

	normal := th.NextInterval(at(15, 10))
	if normal.Reason != ReasonNormal || normal.Interval != active.Interval {
		t.Fatalf("unexpected decision below threshold: %+v", normal)
	}
}

func TestNextInterval_UsesLocalHourOfZone(t *testing.T) {
	th := NewThrottle(monitorConfig(), nil)

	// 18:00 UTC is 03:00 JST
	utc := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	if d := th.NextInterval(utc.In(jst)); !d.ShouldSkip {
		t.Fatalf("expected JST 03:00 to be in the sleep window, got %+v", d)
	}
	if d := th.NextInterval(utc); d.ShouldSkip {
		t.Fatalf("expected UTC 18:00 to be outside the window, got %+v", d)
	}
}

func TestInSleepWindow_InvertedWindowNeverMatches(t *testing.T) {
	cfg := monitorConfig()
	cfg.SleepStart, cfg.SleepEnd = 22, 6
	th := NewThrottle(cfg, nil)

	for hour := 0; hour < 24; hour++ {
		if th.InSleepWindow(hour) {
			t.Fatalf("hour %d matched an inverted window", hour)
		}
	}
}
