package history

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates the history database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT,
		records INTEGER NOT NULL DEFAULT 0,
		files INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS build_stages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL REFERENCES builds(build_id),
		stage TEXT NOT NULL,
		duration_ms INTEGER NOT NULL,
		result TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	CREATE INDEX IF NOT EXISTS idx_stages_build ON build_stages(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a build and its stages in one transaction.
func (s *SQLiteStore) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO builds (build_id, started_at, duration_ms, outcome, error, records, files) VALUES (?, ?, ?, ?, ?, ?, ?)",
		e.BuildID, e.StartedAt.UnixMilli(), e.Duration.Milliseconds(), e.Outcome, e.Error, e.Records, e.Files,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	for _, st := range e.Stages {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO build_stages (build_id, stage, duration_ms, result) VALUES (?, ?, ?, ?)",
			e.BuildID, st.Name, st.Duration.Milliseconds(), st.Result,
		)
		if err != nil {
			return fmt.Errorf("insert stage %s: %w", st.Name, err)
		}
	}
	return tx.Commit()
}

// Get returns one build with its stages in execution order.
func (s *SQLiteStore) Get(ctx context.Context, buildID string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT build_id, started_at, duration_ms, outcome, error, records, files FROM builds WHERE build_id = ?",
		buildID,
	)
	e, err := scanEntry(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, buildID)
	}
	if err != nil {
		return Entry{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT stage, duration_ms, result FROM build_stages WHERE build_id = ? ORDER BY id",
		buildID,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var st StageEntry
		var ms int64
		if err := rows.Scan(&st.Name, &ms, &st.Result); err != nil {
			return Entry{}, fmt.Errorf("scan stage: %w", err)
		}
		st.Duration = time.Duration(ms) * time.Millisecond
		e.Stages = append(e.Stages, st)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, fmt.Errorf("iterate stages: %w", err)
	}
	return e, nil
}

// Recent lists the newest builds.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT build_id, started_at, duration_ms, outcome, error, records, files FROM builds ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var started, ms int64
	var errText sql.NullString
	if err := row.Scan(&e.BuildID, &started, &ms, &e.Outcome, &errText, &e.Records, &e.Files); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan build: %w", err)
	}
	e.StartedAt = time.UnixMilli(started)
	e.Duration = time.Duration(ms) * time.Millisecond
	e.Error = errText.String
	return e, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
