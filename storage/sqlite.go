package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"rankwatch/models"
)

// SQLiteStore keeps an audit trail of cycles, rank-1 changes and log lines.
// It is not read by the monitoring loop; the JSON documents stay authoritative.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cycle_runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		targets INTEGER,
		new_items INTEGER,
		errors INTEGER
	);

	CREATE TABLE IF NOT EXISTS rank_changes (
		id TEXT PRIMARY KEY,
		run_id TEXT,
		target_key TEXT NOT NULL,
		old_name TEXT,
		new_name TEXT,
		fingerprint TEXT,
		price TEXT,
		url TEXT,
		detected_at DATETIME,
		notified BOOLEAN DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS scrape_logs (
		id INTEGER PRIMARY KEY,
		run_id TEXT,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		target_key TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_changes_target ON rank_changes(target_key, detected_at);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON cycle_runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON scrape_logs(run_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateRun(run *models.CycleRun) error {
	_, err := s.db.Exec(`
		INSERT INTO cycle_runs (id, started_at, status, targets, new_items, errors)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt, run.Status, run.Targets, run.NewItems, run.Errors)
	return err
}

func (s *SQLiteStore) UpdateRun(run *models.CycleRun) error {
	_, err := s.db.Exec(`
		UPDATE cycle_runs SET finished_at = ?, status = ?, new_items = ?, errors = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.NewItems, run.Errors, run.ID)
	return err
}

func (s *SQLiteStore) GetRun(id string) (*models.CycleRun, error) {
	row := s.db.QueryRow(`
		SELECT id, started_at, finished_at, status, targets, new_items, errors
		FROM cycle_runs WHERE id = ?`, id)

	var run models.CycleRun
	var finished sql.NullTime
	err := row.Scan(&run.ID, &run.StartedAt, &finished, &run.Status, &run.Targets, &run.NewItems, &run.Errors)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}

func (s *SQLiteStore) RecordChange(ev *models.ChangeEvent) error {
	_, err := s.db.Exec(`
		INSERT INTO rank_changes (id, run_id, target_key, old_name, new_name, fingerprint, price, url, detected_at, notified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.RunID, ev.TargetKey, ev.OldName, ev.NewName, ev.Fingerprint, ev.Price, ev.URL, ev.DetectedAt, ev.Notified)
	return err
}

// RecentChanges returns the newest change events first.
func (s *SQLiteStore) RecentChanges(limit int) ([]models.ChangeEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, target_key, old_name, new_name, fingerprint, price, url, detected_at, notified
		FROM rank_changes ORDER BY detected_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.ChangeEvent
	for rows.Next() {
		var ev models.ChangeEvent
		var runID, oldName sql.NullString
		if err := rows.Scan(&ev.ID, &runID, &ev.TargetKey, &oldName, &ev.NewName,
			&ev.Fingerprint, &ev.Price, &ev.URL, &ev.DetectedAt, &ev.Notified); err != nil {
			return nil, err
		}
		ev.RunID = runID.String
		ev.OldName = oldName.String
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *SQLiteStore) Log(runID *string, level models.LogLevel, message, targetKey string) error {
	_, err := s.db.Exec(`
		INSERT INTO scrape_logs (run_id, timestamp, level, message, target_key)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, targetKey)
	return err
}

func (s *SQLiteStore) GetLogs(runID string) ([]models.ScrapeLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, target_key
		FROM scrape_logs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.ScrapeLog
	for rows.Next() {
		var l models.ScrapeLog
		var run sql.NullString
		if err := rows.Scan(&l.ID, &run, &l.Timestamp, &l.Level, &l.Message, &l.TargetKey); err != nil {
			return nil, err
		}
		if run.Valid {
			l.RunID = &run.String
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
