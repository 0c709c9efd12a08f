package build

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportOutcome(t *testing.T) {
	r := newReport("id", false, time.Now())
	r.deriveOutcome()
	assert.Equal(t, OutcomeSuccess, r.Outcome)

	r.AddWarning(stderrors.New("careful"))
	r.deriveOutcome()
	assert.Equal(t, OutcomeWarning, r.Outcome)

	r.Err = newFatalStageError(StageEmitPages, "a.md", stderrors.New("boom"))
	r.deriveOutcome()
	assert.Equal(t, OutcomeFailed, r.Outcome)

	r.Err = newCanceledStageError(StageEmitPages, stderrors.New("stop"))
	r.deriveOutcome()
	assert.Equal(t, OutcomeCanceled, r.Outcome)
}

func TestReportPersist(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r := newReport("b-1", false, start)
	r.recordStage(StageParseContent, 3*time.Millisecond, StageResultFatal)
	r.Err = newFatalStageError(StageParseContent, "content/posts/a.md", stderrors.New("bad front matter"))
	r.End = start.Add(time.Second)
	r.deriveOutcome()

	dir := t.TempDir()
	require.NoError(t, r.Persist(dir))
	data, err := os.ReadFile(filepath.Join(dir, ReportFile))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "b-1", got["build_id"])
	assert.Equal(t, "failed", got["outcome"])
	assert.Equal(t, "parse_content", got["failed_stage"])
	assert.Equal(t, "content/posts/a.md", got["failed_path"])
	assert.Equal(t, []any{"parse_content"}, got["stages"])
	assert.NoFileExists(t, filepath.Join(dir, ReportFile+".tmp"))

	assert.Contains(t, r.Summary(), "outcome=failed")
	h := r.History()
	assert.Equal(t, "failed", h.Outcome)
	require.Len(t, h.Stages, 1)
	assert.Equal(t, "fatal", h.Stages[0].Result)
}
