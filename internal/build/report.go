package build

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/version"
)

// Outcome is the typed enumeration of final build result states.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Report captures the result of one build or check run.
type Report struct {
	BuildID string
	Start   time.Time
	End     time.Time
	Check   bool

	// StageOrder lists the stages that ran, in order.
	StageOrder     []StageName
	StageDurations map[string]time.Duration
	StageResults   map[StageName]StageResult

	Outcome Outcome
	// Err is the terminal *StageError of a failed build.
	Err      error
	Warnings []error

	Records       int
	PerCollection map[string]int
	Pages         int
	Files         int
}

func newReport(buildID string, check bool, now time.Time) *Report {
	return &Report{
		BuildID:        buildID,
		Start:          now,
		Check:          check,
		StageDurations: make(map[string]time.Duration),
		StageResults:   make(map[StageName]StageResult),
		PerCollection:  make(map[string]int),
	}
}

func (r *Report) recordStage(stage StageName, d time.Duration, res StageResult) {
	r.StageOrder = append(r.StageOrder, stage)
	r.StageDurations[string(stage)] = d
	r.StageResults[stage] = res
}

// AddWarning records a non-fatal issue.
func (r *Report) AddWarning(err error) {
	r.Warnings = append(r.Warnings, err)
}

// Duration returns the wall time of the run.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// deriveOutcome sets Outcome from Err and Warnings.
func (r *Report) deriveOutcome() {
	if r.Err != nil {
		var se *StageError
		if stderrors.As(r.Err, &se) && se.Kind == StageErrorCanceled {
			r.Outcome = OutcomeCanceled
			return
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("build=%s records=%d pages=%d files=%d duration=%s warnings=%d stages=%d outcome=%s",
		r.BuildID, r.Records, r.Pages, r.Files, r.Duration().Truncate(time.Millisecond), len(r.Warnings), len(r.StageOrder), r.Outcome)
}

// History converts the report into a history entry.
func (r *Report) History() history.Entry {
	e := history.Entry{
		BuildID:   r.BuildID,
		StartedAt: r.Start,
		Duration:  r.Duration(),
		Outcome:   string(r.Outcome),
		Records:   r.Records,
		Files:     r.Files,
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	for _, s := range r.StageOrder {
		e.Stages = append(e.Stages, history.StageEntry{
			Name:     string(s),
			Duration: r.StageDurations[string(s)],
			Result:   string(r.StageResults[s]),
		})
	}
	return e
}

// ReportFile is the name Persist writes.
const ReportFile = "build-report.json"

type reportJSON struct {
	BuildID        string                   `json:"build_id"`
	Version        string                   `json:"version"`
	Start          time.Time                `json:"start"`
	End            time.Time                `json:"end"`
	Check          bool                     `json:"check,omitempty"`
	Outcome        string                   `json:"outcome"`
	Error          string                   `json:"error,omitempty"`
	FailedStage    string                   `json:"failed_stage,omitempty"`
	FailedPath     string                   `json:"failed_path,omitempty"`
	Warnings       []string                 `json:"warnings"`
	Stages         []string                 `json:"stages"`
	StageDurations map[string]time.Duration `json:"stage_durations"`
	StageResults   map[string]string        `json:"stage_results"`
	Records        int                      `json:"records"`
	PerCollection  map[string]int           `json:"per_collection"`
	Pages          int                      `json:"pages"`
	Files          int                      `json:"files"`
}

// MarshalJSON renders errors as strings for external consumers.
func (r *Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		BuildID:        r.BuildID,
		Version:        version.Version,
		Start:          r.Start,
		End:            r.End,
		Check:          r.Check,
		Outcome:        string(r.Outcome),
		Warnings:       make([]string, len(r.Warnings)),
		Stages:         make([]string, len(r.StageOrder)),
		StageDurations: r.StageDurations,
		StageResults:   make(map[string]string, len(r.StageResults)),
		Records:        r.Records,
		PerCollection:  r.PerCollection,
		Pages:          r.Pages,
		Files:          r.Files,
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
		var se *StageError
		if stderrors.As(r.Err, &se) {
			out.FailedStage = string(se.Stage)
			out.FailedPath = se.Path
		}
	}
	for i, w := range r.Warnings {
		out.Warnings[i] = w.Error()
	}
	for i, s := range r.StageOrder {
		out.Stages[i] = string(s)
	}
	for k, v := range r.StageResults {
		out.StageResults[string(k)] = string(v)
	}
	return json.Marshal(out)
}

// Persist writes the report as JSON into dir atomically.
func (r *Report) Persist(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("ensure report directory: %w", err)
	}
	jb, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	p := filepath.Join(dir, ReportFile)
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, jb, 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	return nil
}
