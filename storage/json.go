package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"rankwatch/models"
)

// JSONFile persists one whole document as indented JSON. Every save rewrites
// the full file; there is no append log.
type JSONFile[T any] struct {
	path     string
	fallback func() T
}

func NewJSONFile[T any](path string, fallback func() T) *JSONFile[T] {
	return &JSONFile[T]{path: path, fallback: fallback}
}

func (f *JSONFile[T]) Path() string {
	return f.path
}

// Load returns the stored document, or the fallback document when the file is
// missing or cannot be parsed.
func (f *JSONFile[T]) Load() T {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("file", f.path).Msg("No saved document, starting fresh")
		} else {
			log.Error().Err(err).Str("file", f.path).Msg("Failed to read document, starting fresh")
		}
		return f.fallback()
	}

	doc := f.fallback()
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Error().Err(err).Str("file", f.path).Msg("Failed to parse document, starting fresh")
		return f.fallback()
	}
	return doc
}

// Save writes doc through a temp file and rename. Failures are logged and
// returned; callers keep their in-memory state and retry on the next save.
func (f *JSONFile[T]) Save(doc T) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		log.Error().Err(err).Str("file", f.path).Msg("Failed to encode document")
		return fmt.Errorf("encode %s: %w", f.path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp*")
	if err != nil {
		log.Error().Err(err).Str("file", f.path).Msg("Failed to save document")
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		log.Error().Err(err).Str("file", f.path).Msg("Failed to save document")
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		log.Error().Err(err).Str("file", f.path).Msg("Failed to save document")
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		log.Error().Err(err).Str("file", f.path).Msg("Failed to save document")
		return fmt.Errorf("save %s: %w", f.path, err)
	}
	return nil
}

// SnapshotStore holds the per-target rank-1 snapshots.
type SnapshotStore = JSONFile[models.SnapshotMap]

// StatsStore holds the aggregate counters.
type StatsStore = JSONFile[*models.Stats]

func NewSnapshotStore(path string) *SnapshotStore {
	return NewJSONFile(path, models.NewSnapshotMap)
}

func NewStatsStore(path string) *StatsStore {
	return NewJSONFile(path, models.NewStats)
}
