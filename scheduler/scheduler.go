package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"rankwatch/config"
	"rankwatch/models"
	"rankwatch/services"
)

// statsLogEvery is how many completed checks pass between summary logs.
const statsLogEvery = 10

// CycleRunner runs one check over all targets.
type CycleRunner interface {
	RunCycle(ctx context.Context) int
}

type Scheduler struct {
	cfg          *config.Config
	orchestrator CycleRunner
	throttle     *Throttle
	stats        *services.StatsManager
	cron         *cron.Cron
	stopCh       chan struct{}
	stopOnce     sync.Once

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config, orchestrator CycleRunner, throttle *Throttle, stats *services.StatsManager) *Scheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	s := &Scheduler{
		cfg:          cfg,
		orchestrator: orchestrator,
		throttle:     throttle,
		stats:        stats,
		cron:         cron.New(cron.WithLocation(loc)),
		stopCh:       make(chan struct{}),
		now:          cfg.Now,
	}
	s.wait = s.sleep
	return s
}

// Start registers the periodic stats report when STATS_CRON is set.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.cfg.StatsCron == "" {
		return nil
	}

	log.Info().Str("cron", s.cfg.StatsCron).Msg("Starting stats reporter")
	_, err := s.cron.AddFunc(s.cfg.StatsCron, func() {
		LogStats(s.stats.Snapshot())
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	s.cron.Start()
	return nil
}

// Run drives check cycles until ctx is cancelled or Stop is called. A cycle
// that has started always finishes; cancellation is seen between cycles.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		default:
		}

		next := s.step(ctx)
		if err := s.wait(ctx, next); err != nil {
			return
		}
	}
}

// RunOnce runs a single cycle regardless of the sleep window.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	return s.orchestrator.RunCycle(context.WithoutCancel(ctx))
}

func (s *Scheduler) step(ctx context.Context) (next time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Dur("cooldown", s.cfg.Monitor.ErrorCooldown).Msg("Cycle failed")
			s.stats.RecordError()
			next = s.cfg.Monitor.ErrorCooldown
		}
	}()

	now := s.now()
	decision := s.throttle.NextInterval(now)

	if decision.ShouldSkip {
		log.Info().
			Int("hour", now.Hour()).
			Int("sleep_start", s.cfg.Monitor.SleepStart).
			Int("sleep_end", s.cfg.Monitor.SleepEnd).
			Msg("Sleep window, skipping check")
	} else {
		s.orchestrator.RunCycle(context.WithoutCancel(ctx))

		stats := s.stats.Snapshot()
		if stats.TotalChecks > 0 && stats.TotalChecks%statsLogEvery == 0 {
			LogStats(stats)
		}
	}

	log.Info().
		Str("next_run", now.Add(decision.Interval).Format("15:04:05")).
		Dur("interval", decision.Interval).
		Str("reason", decision.Reason).
		Msg("Waiting for next check")
	return decision.Interval
}

func (s *Scheduler) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-s.stopCh:
		return context.Canceled
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cron != nil {
			<-s.cron.Stop().Done()
		}
		close(s.stopCh)
	})
}

// LogStats writes the stats summary at info level.
func LogStats(stats *models.Stats) {
	ev := log.Info().
		Int("total_checks", stats.TotalChecks).
		Int("total_new_items", stats.TotalNewItems).
		Int("errors", stats.ErrorCount)
	if stats.LastNewItemTime != nil {
		ev = ev.Time("last_new_item", *stats.LastNewItemTime)
	}
	if stats.LastErrorTime != nil {
		ev = ev.Time("last_error", *stats.LastErrorTime)
	}
	ev.Msg("Stats")
}
