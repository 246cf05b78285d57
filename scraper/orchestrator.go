package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rankwatch/config"
	"rankwatch/identity"
	"rankwatch/models"
	"rankwatch/services"
)

type ListingExtractor interface {
	Extract(ctx context.Context, target models.WatchTarget) []models.Listing
}

type Notifier interface {
	Notify(ctx context.Context, target models.WatchTarget, listings []models.Listing) bool
}

type SnapshotSaver interface {
	Save(doc models.SnapshotMap) error
}

// HistoryRecorder is the audit trail; storage.SQLiteStore implements it.
type HistoryRecorder interface {
	CreateRun(run *models.CycleRun) error
	UpdateRun(run *models.CycleRun) error
	RecordChange(ev *models.ChangeEvent) error
	Log(runID *string, level models.LogLevel, message, targetKey string) error
}

type Orchestrator struct {
	targets     []models.WatchTarget
	targetDelay time.Duration

	extractor ListingExtractor
	detector  *services.ChangeDetector
	notifier  Notifier
	snapshots SnapshotSaver
	stats     *services.StatsManager
	history   HistoryRecorder

	now  func() time.Time
	wait func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(
	cfg *config.Config,
	extractor ListingExtractor,
	detector *services.ChangeDetector,
	notifier Notifier,
	snapshots SnapshotSaver,
	stats *services.StatsManager,
) *Orchestrator {
	return &Orchestrator{
		targets:     cfg.Targets,
		targetDelay: cfg.Monitor.TargetDelay,
		extractor:   extractor,
		detector:    detector,
		notifier:    notifier,
		snapshots:   snapshots,
		stats:       stats,
		now:         cfg.Now,
		wait:        Wait,
	}
}

// SetHistory enables the SQLite audit trail. Without it cycles only log.
func (o *Orchestrator) SetHistory(h HistoryRecorder) {
	o.history = h
}

// RunCycle checks every target once, in order, and returns how many new
// rank-1 items were found. It only returns early if ctx is cancelled while
// waiting between targets.
func (o *Orchestrator) RunCycle(ctx context.Context) int {
	run := &models.CycleRun{
		ID:        uuid.New().String(),
		StartedAt: o.now(),
		Status:    models.RunStatusRunning,
		Targets:   len(o.targets),
	}
	if o.history != nil {
		if err := o.history.CreateRun(run); err != nil {
			log.Warn().Err(err).Msg("Failed to record cycle start")
		}
	}

	o.log(run, models.LogLevelInfo, "", fmt.Sprintf("Cycle started: %d targets", len(o.targets)))

	for i, target := range o.targets {
		found, err := o.processTarget(ctx, run, target)
		if err != nil {
			o.log(run, models.LogLevelError, target.Key(), fmt.Sprintf("Target failed: %v", err))
			o.stats.RecordError()
			run.Errors++
		}
		run.NewItems += found

		if i < len(o.targets)-1 {
			if err := o.wait(ctx, o.targetDelay); err != nil {
				break
			}
		}
	}

	if err := o.snapshots.Save(o.detector.Snapshots()); err != nil {
		log.Warn().Err(err).Msg("Snapshot not persisted, keeping in-memory state")
	}
	o.stats.Update(run.NewItems)

	now := o.now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	if run.Errors > 0 && run.Errors == run.Targets {
		run.Status = models.RunStatusFailed
	}
	if o.history != nil {
		if err := o.history.UpdateRun(run); err != nil {
			log.Warn().Err(err).Msg("Failed to record cycle finish")
		}
	}

	o.log(run, models.LogLevelInfo, "", fmt.Sprintf("Cycle finished: %d new items, %d errors", run.NewItems, run.Errors))
	return run.NewItems
}

func (o *Orchestrator) processTarget(ctx context.Context, run *models.CycleRun, target models.WatchTarget) (found int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	key := target.Key()
	o.log(run, models.LogLevelInfo, key, fmt.Sprintf("Checking %s", target.URL))

	listings := o.extractor.Extract(ctx, target)
	if len(listings) == 0 {
		o.log(run, models.LogLevelWarn, key, "Failed to fetch listings")
		return 0, nil
	}

	var oldName string
	if snap, ok := o.detector.Snapshot(key); ok {
		oldName = snap.TopName
	}

	changed := o.detector.Detect(key, listings)
	if len(changed) == 0 {
		o.log(run, models.LogLevelInfo, key, "No change at rank 1")
		return 0, nil
	}

	notified := o.notifier.Notify(ctx, target, changed)
	o.recordChange(run, key, oldName, changed[0], notified)
	o.log(run, models.LogLevelInfo, key, fmt.Sprintf("New rank-1 item: %s (notified: %t)", changed[0].Name, notified))

	return len(changed), nil
}

func (o *Orchestrator) recordChange(run *models.CycleRun, key, oldName string, top models.Listing, notified bool) {
	if o.history == nil {
		return
	}
	ev := &models.ChangeEvent{
		ID:          uuid.New().String(),
		RunID:       run.ID,
		TargetKey:   key,
		OldName:     oldName,
		NewName:     top.Name,
		Fingerprint: identity.ListingFingerprint(top),
		Price:       top.Price,
		URL:         top.URL,
		DetectedAt:  o.now(),
		Notified:    notified,
	}
	if err := o.history.RecordChange(ev); err != nil {
		log.Warn().Err(err).Str("target", key).Msg("Failed to record change event")
	}
}

func (o *Orchestrator) log(run *models.CycleRun, level models.LogLevel, targetKey, message string) {
	var ev *zerolog.Event
	switch level {
	case models.LogLevelWarn:
		ev = log.Warn()
	case models.LogLevelError:
		ev = log.Error()
	default:
		ev = log.Info()
	}
	ev.Str("cycle", run.ID[:8]).Str("target", targetKey).Msg(message)

	if o.history != nil {
		o.history.Log(&run.ID, level, message, targetKey)
	}
}
