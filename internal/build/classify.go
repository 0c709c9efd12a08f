package build

import (
	"context"
	stderrors "errors"
	"io/fs"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/macro"
	"git.home.luguber.info/inful/sitegen/internal/paths"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// stageOutcome is the normalized result of one stage execution.
type stageOutcome struct {
	Stage  StageName
	Error  *StageError
	Result StageResult
	Abort  bool
}

func resultFromStageErrorKind(k StageErrorKind) StageResult {
	switch k {
	case StageErrorWarning:
		return StageResultWarning
	case StageErrorCanceled:
		return StageResultCanceled
	default:
		return StageResultFatal
	}
}

// classifyStageResult converts the raw error returned by a stage into an outcome.
// Plain errors are fatal; context errors become cancellations.
func classifyStageResult(stage StageName, err error) stageOutcome {
	if err == nil {
		return stageOutcome{Stage: stage, Result: StageResultSuccess}
	}

	var se *StageError
	if !stderrors.As(err, &se) {
		if isCanceled(err) {
			se = newCanceledStageError(stage, err)
		} else {
			se = newFatalStageError(stage, "", err)
		}
	}
	if se.Kind == StageErrorFatal && isCanceled(se.Err) {
		se = &StageError{Kind: StageErrorCanceled, Stage: se.Stage, Path: se.Path, Err: se.Err}
	}
	return stageOutcome{
		Stage:  stage,
		Error:  se,
		Result: resultFromStageErrorKind(se.Kind),
		Abort:  se.Kind != StageErrorWarning,
	}
}

func isCanceled(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// Classify maps a terminal build error onto a ClassifiedError category so the
// CLI can pick an exit code. The *StageError stays reachable via errors.As.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	category := errors.CategoryBuild
	var (
		fmErr     *content.FrontmatterError
		unknown   *macro.UnknownMacroError
		unclosed  *macro.UnclosedBodyError
		syntaxErr *macro.SyntaxError
		tmplErr   *macro.TemplateError
		collision *paths.SlugCollisionError
		renderErr *render.Error
		pathErr   *fs.PathError
		stageErr  *StageError
	)
	switch {
	case isCanceled(err):
		category = errors.CategoryCanceled
	case stderrors.As(err, &fmErr):
		category = errors.CategoryContent
	case stderrors.As(err, &unknown), stderrors.As(err, &unclosed),
		stderrors.As(err, &syntaxErr), stderrors.As(err, &tmplErr):
		category = errors.CategoryMacro
	case stderrors.As(err, &collision):
		category = errors.CategorySlug
	case stderrors.As(err, &renderErr):
		category = errors.CategoryRender
	case stderrors.As(err, &pathErr):
		category = errors.CategoryFileSystem
	}

	b := errors.WrapError(err, category, "build failed").Fatal()
	if stderrors.As(err, &stageErr) {
		b = b.WithContext("stage", string(stageErr.Stage))
		if stageErr.Path != "" {
			b = b.WithContext("path", stageErr.Path)
		}
	}
	return b.Build()
}
