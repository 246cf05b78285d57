package services

import (
	"time"

	"github.com/rs/zerolog/log"

	"rankwatch/identity"
	"rankwatch/models"
)

// ChangeDetector compares the current rank-1 listing of a target with the
// stored snapshot. It owns the snapshot map between loads and saves.
type ChangeDetector struct {
	snapshots models.SnapshotMap
	now       func() time.Time
}

func NewChangeDetector(snapshots models.SnapshotMap, now func() time.Time) *ChangeDetector {
	if snapshots == nil {
		snapshots = models.NewSnapshotMap()
	}
	if now == nil {
		now = time.Now
	}
	return &ChangeDetector{snapshots: snapshots, now: now}
}

// Snapshots returns the live map for persistence.
func (d *ChangeDetector) Snapshots() models.SnapshotMap {
	return d.snapshots
}

func (d *ChangeDetector) Snapshot(key string) (*models.Snapshot, bool) {
	snap, ok := d.snapshots[key]
	return snap, ok && snap != nil
}

// Detect returns the new rank-1 listing when it differs from the stored one,
// otherwise nothing. The first observation of a target only seeds a baseline.
func (d *ChangeDetector) Detect(key string, listings []models.Listing) []models.Listing {
	if len(listings) == 0 {
		log.Warn().Str("target", key).Msg("Listing is empty, nothing to compare")
		return nil
	}

	top := listings[0]
	fp := identity.ListingFingerprint(top)

	stored, ok := d.Snapshot(key)
	if !ok {
		d.snapshots[key] = &models.Snapshot{
			Fingerprint:   fp,
			TopName:       top.Name,
			LastCheckTime: d.now(),
		}
		log.Info().Str("target", key).Str("name", top.Name).Msg("First run, recorded rank-1 baseline")
		return nil
	}

	if fp == stored.Fingerprint {
		stored.LastCheckTime = d.now()
		return nil
	}

	log.Info().
		Str("target", key).
		Str("old", stored.TopName).
		Str("new", top.Name).
		Msg("Rank-1 changed")

	d.snapshots[key] = &models.Snapshot{
		Fingerprint:   fp,
		TopName:       top.Name,
		LastCheckTime: d.now(),
	}
	return []models.Listing{top}
}
