package scheduler

import (
	"time"

	"rankwatch/config"
)

const (
	ReasonSleep  = "sleep window"
	ReasonActive = "active"
	ReasonNormal = "normal"
)

// HourlyCounter reports how many new items were seen in a given hour.
type HourlyCounter interface {
	HourlyCount(hour int) int
}

// Decision is what the loop does next: wait Interval, and skip the check
// entirely when ShouldSkip is set.
type Decision struct {
	Interval   time.Duration
	Reason     string
	ShouldSkip bool
}

type Throttle struct {
	cfg     config.MonitorConfig
	counter HourlyCounter
}

func NewThrottle(cfg config.MonitorConfig, counter HourlyCounter) *Throttle {
	return &Throttle{cfg: cfg, counter: counter}
}

// InSleepWindow reports whether hour lies in [SleepStart, SleepEnd). A window
// whose start is not before its end never matches.
func (t *Throttle) InSleepWindow(hour int) bool {
	return hour >= t.cfg.SleepStart && hour < t.cfg.SleepEnd
}

// NextInterval decides from the hour of now, which must already be in the
// monitor's time zone.
func (t *Throttle) NextInterval(now time.Time) Decision {
	hour := now.Hour()
	if t.InSleepWindow(hour) {
		return Decision{Interval: t.cfg.IdleInterval, Reason: ReasonSleep, ShouldSkip: true}
	}

	// Busy hours keep the same cadence; the reason is only reported.
	if t.counter != nil && t.counter.HourlyCount(hour) >= t.cfg.ActivityThreshold {
		return Decision{Interval: t.cfg.CheckInterval, Reason: ReasonActive}
	}
	return Decision{Interval: t.cfg.CheckInterval, Reason: ReasonNormal}
}
