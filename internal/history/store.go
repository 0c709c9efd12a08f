// Package history persists a summary of every build: its outcome and the
// duration of each stage.
package history

import (
	"context"
	stderrors "errors"
	"time"
)

// ErrNotFound is returned when a build id is unknown.
var ErrNotFound = stderrors.New("build not found")

// StageEntry is the recorded timing of one stage.
type StageEntry struct {
	Name     string
	Duration time.Duration
	Result   string
}

// Entry is the recorded summary of one build.
type Entry struct {
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration
	Outcome   string
	Error     string
	Records   int
	Files     int
	Stages    []StageEntry
}

// Store records and lists build summaries.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Get(ctx context.Context, buildID string) (Entry, error)
	// Recent returns up to limit builds, newest first, without stages.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}
