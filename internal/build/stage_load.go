package build

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitegen/internal/datafiles"
	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/gitinfo"
	"git.home.luguber.info/inful/sitegen/internal/i18n"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/macro"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

func stagePrepareOutput(_ context.Context, st *State) error {
	if err := st.beginStaging(); err != nil {
		return newFatalStageError(StagePrepareOutput, stagingDir(st.outDir), err)
	}
	st.writer = output.NewWriter(st.stageDir)
	return nil
}

func stageLoadTemplates(_ context.Context, st *State) error {
	if st.engine == nil {
		dir := st.cfg.Resolve(st.cfg.Paths.Templates)
		eng, err := render.NewHTMLEngine(dir)
		if err != nil {
			return newFatalStageError(StageLoadTemplates, dir,
				errors.WrapError(err, errors.CategoryRender, "parse templates").Fatal().Build())
		}
		if o := eng.Overridden(); len(o) > 0 {
			slog.Debug("Project templates loaded", logfields.Count(len(o)), slog.Any("templates", o))
		}
		st.engine = eng
	}

	dir := st.cfg.Resolve(st.cfg.Paths.Macros)
	reg, err := macro.NewRegistry(dir)
	if err != nil {
		return newFatalStageError(StageLoadTemplates, dir,
			errors.WrapError(err, errors.CategoryMacro, "load macros").Fatal().Build())
	}
	st.macros = reg
	slog.Debug("Macro registry loaded", logfields.Count(reg.Len()))

	dir = st.cfg.Resolve(st.cfg.Paths.I18n)
	table, err := i18n.LoadStrings(dir, st.langs)
	if err != nil {
		return newFatalStageError(StageLoadTemplates, dir,
			errors.WrapError(err, errors.CategoryI18n, "load UI strings").Fatal().Build())
	}
	st.strings = table
	return nil
}

func stageLoadData(_ context.Context, st *State) error {
	dir := st.cfg.Resolve(st.cfg.Paths.Data)
	data, err := datafiles.Load(dir)
	if err != nil {
		return newFatalStageError(StageLoadData, dir, err)
	}
	st.data = data

	if !st.cfg.Build.GitInfo {
		return nil
	}
	repo, err := gitinfo.Open(st.cfg.Root())
	if err != nil {
		return newWarnStageError(StageLoadData, err)
	}
	if repo == nil {
		slog.Info("git_info enabled but the project is not a git repository", logfields.Path(st.cfg.Root()))
		return nil
	}
	st.git = repo
	return nil
}

func stageFinalizeOutput(_ context.Context, st *State) error {
	if err := st.finalizeStaging(); err != nil {
		return newFatalStageError(StageFinalizeOutput, st.outDir, err)
	}
	return nil
}
