package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// runStages executes stages in order, recording timing and stopping on the
// first fatal error. Timings of completed stages are kept on failure.
func runStages(ctx context.Context, st *State, stages []StageDef, obs Observer) error {
	for _, def := range stages {
		select {
		case <-ctx.Done():
			se := newCanceledStageError(def.Name, ctx.Err())
			st.report.recordStage(def.Name, 0, StageResultCanceled)
			obs.OnStageComplete(def.Name, 0, StageResultCanceled)
			return se
		default:
		}

		obs.OnStageStart(def.Name)
		warnings := len(st.report.Warnings)

		t0 := time.Now()
		err := def.Fn(ctx, st)
		dur := time.Since(t0)

		out := classifyStageResult(def.Name, err)
		if out.Error != nil && !out.Abort {
			st.report.AddWarning(out.Error)
		}
		if out.Result == StageResultSuccess && len(st.report.Warnings) > warnings {
			out.Result = StageResultWarning
		}
		st.report.recordStage(def.Name, dur, out.Result)
		obs.OnStageComplete(def.Name, dur, out.Result)

		if out.Abort {
			slog.Error("Stage failed",
				logfields.Stage(string(def.Name)),
				logfields.Path(out.Error.Path),
				logfields.Error(out.Error.Err))
			return out.Error
		}
	}
	return nil
}
