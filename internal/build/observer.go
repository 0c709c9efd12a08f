package build

import (
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// Observer receives callbacks around stage execution and build lifecycle.
type Observer interface {
	OnStageStart(stage StageName)
	OnStageComplete(stage StageName, duration time.Duration, result StageResult)
	OnBuildComplete(report *Report)
}

// NoopObserver is a no-op implementation.
type NoopObserver struct{}

func (NoopObserver) OnStageStart(StageName)                                {}
func (NoopObserver) OnStageComplete(StageName, time.Duration, StageResult) {}
func (NoopObserver) OnBuildComplete(*Report)                               {}

// RecorderObserver adapts metrics.Recorder into an Observer.
type RecorderObserver struct{ Recorder metrics.Recorder }

func (r RecorderObserver) OnStageStart(StageName) {}

func (r RecorderObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveStageDuration(string(stage), d)
	r.Recorder.IncStageResult(string(stage), resultLabel(res))
}

func (r RecorderObserver) OnBuildComplete(report *Report) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.ObserveBuildDuration(report.Duration())
	r.Recorder.IncBuildOutcome(metrics.BuildOutcomeLabel(report.Outcome))
}

func resultLabel(res StageResult) metrics.ResultLabel {
	switch res {
	case StageResultWarning:
		return metrics.ResultWarning
	case StageResultFatal:
		return metrics.ResultFatal
	case StageResultCanceled:
		return metrics.ResultCanceled
	default:
		return metrics.ResultSuccess
	}
}

// LogObserver logs stage progress at debug level.
type LogObserver struct{ Logger *slog.Logger }

func (l LogObserver) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}

func (l LogObserver) OnStageStart(stage StageName) {
	l.logger().Debug("Stage started", logfields.Stage(string(stage)))
}

func (l LogObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	l.logger().Debug("Stage complete",
		logfields.Stage(string(stage)),
		logfields.Duration(d),
		logfields.Outcome(string(res)))
}

func (l LogObserver) OnBuildComplete(report *Report) {
	l.logger().Info("Build complete",
		logfields.BuildID(report.BuildID),
		logfields.Outcome(string(report.Outcome)),
		logfields.Duration(report.Duration()),
		logfields.Count(report.Records))
}

// multiObserver fans callbacks out in order.
type multiObserver []Observer

func (m multiObserver) OnStageStart(stage StageName) {
	for _, o := range m {
		o.OnStageStart(stage)
	}
}

func (m multiObserver) OnStageComplete(stage StageName, d time.Duration, res StageResult) {
	for _, o := range m {
		o.OnStageComplete(stage, d, res)
	}
}

func (m multiObserver) OnBuildComplete(report *Report) {
	for _, o := range m {
		o.OnBuildComplete(report)
	}
}
