package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	assert.NotPanics(t, func() {
		r.ObserveStageDuration("parse_content", time.Second)
		r.ObserveBuildDuration(time.Second)
		r.IncStageResult("parse_content", ResultSuccess)
		r.IncBuildOutcome(BuildOutcomeSuccess)
		r.AddRecords("posts", "en", 3)
		r.IncWarning("missing_translation")
	})
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var p *PrometheusRecorder
	assert.NotPanics(t, func() {
		p.ObserveStageDuration("x", time.Millisecond)
		p.IncBuildOutcome(BuildOutcomeFailed)
		p.AddRecords("posts", "en", 1)
	})
}
