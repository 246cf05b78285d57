package models

import "time"

// Snapshot is the last known rank-1 item of a target. The JSON names are kept
// compatible with snapshot files written by the previous monitor.
type Snapshot struct {
	Fingerprint   string    `json:"firstProductKey"`
	TopName       string    `json:"firstProductName"`
	LastCheckTime time.Time `json:"lastCheckTime"`
}

// SnapshotMap holds one Snapshot per WatchTarget key.
type SnapshotMap map[string]*Snapshot

func NewSnapshotMap() SnapshotMap {
	return make(SnapshotMap)
}
