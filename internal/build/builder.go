package build

import (
	"context"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/i18n"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// Options narrows and tunes one build. Zero values fall back to the site
// configuration.
type Options struct {
	// Collections limits the build to the named collections; empty means all.
	Collections []string
	// Languages limits the build to the given language codes; empty means all.
	Languages     []string
	IncludeDrafts bool
	// OutputDir overrides build.output_dir.
	OutputDir   string
	Concurrency int
	// Check runs parsing, URL checks, translation linking and organization
	// without writing anything.
	Check bool

	Renderer markdown.Renderer
	// Engine replaces the template engine loaded from the templates directory.
	Engine   render.Engine
	Images   output.ImageProcessor
	Recorder metrics.Recorder
	Observer Observer
	History  history.Store
	// ReportDir receives build-report.json when set.
	ReportDir string
	// Now supplies the build time exposed to templates.
	Now func() time.Time
}

// Builder runs builds of one site.
type Builder struct {
	cfg    *config.Config
	opts   Options
	stages []StageDef
}

// New validates the options against cfg and assembles the stage pipeline.
func New(cfg *config.Config, opts Options) (*Builder, error) {
	if cfg == nil {
		return nil, errors.ValidationError("configuration is required").Build()
	}
	for _, name := range opts.Collections {
		if _, ok := cfg.Collection(name); !ok {
			return nil, errors.ValidationError("unknown collection").
				WithContext("collection", name).
				Build()
		}
	}
	langs := cfg.Langs()
	for _, code := range opts.Languages {
		if !langs.IsConfigured(code) {
			return nil, errors.ValidationError("unknown language").
				WithContext("language", code).
				Build()
		}
	}

	stages, err := pipeline(opts.Check).Build()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryInternal, "assemble build pipeline").Fatal().Build()
	}

	if opts.Renderer == nil {
		opts.Renderer = markdown.NewGoldmark()
	}
	if opts.Images == nil {
		opts.Images = output.MissingImageChecker{}
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Builder{cfg: cfg, opts: opts, stages: stages}, nil
}

// Stages returns the names of the stages a build runs, in order.
func (b *Builder) Stages() []StageName {
	names := make([]StageName, len(b.stages))
	for i, d := range b.stages {
		names[i] = d.Name
	}
	return names
}

// OutputDir returns the directory a successful build promotes into.
func (b *Builder) OutputDir() string {
	dir := b.opts.OutputDir
	if dir == "" {
		dir = b.cfg.Resolve(b.cfg.Build.OutputDir)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// Build runs the pipeline once. The report is always returned; on failure
// Report.Err holds the *StageError and the returned error is its classified
// form. A failed build leaves the previous output directory untouched.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	st := b.newState()
	obs := multiObserver{LogObserver{}, RecorderObserver{Recorder: st.recorder}}
	if b.opts.Observer != nil {
		obs = append(obs, b.opts.Observer)
	}

	slog.Info("Build started",
		logfields.BuildID(st.report.BuildID),
		slog.Bool("check", b.opts.Check),
		logfields.Count(len(st.collections)))

	err := runStages(ctx, st, b.stages, obs)
	if err != nil {
		st.report.Err = err
		st.abortStaging()
	}
	st.report.End = time.Now()
	if st.writer != nil {
		st.report.Files += st.writer.Count()
	}
	st.report.deriveOutcome()
	for _, w := range st.report.Warnings {
		st.recorder.IncWarning(warningKind(w))
	}
	obs.OnBuildComplete(st.report)

	b.persist(context.WithoutCancel(ctx), st.report)
	return st.report, Classify(err)
}

func (b *Builder) newState() *State {
	cfg := b.cfg
	st := &State{
		cfg:           cfg,
		langs:         cfg.Langs(),
		report:        newReport(uuid.NewString(), b.opts.Check, time.Now()),
		now:           b.opts.Now(),
		recorder:      b.opts.Recorder,
		includeDrafts: b.opts.IncludeDrafts || cfg.Build.IncludeDrafts,
		concurrency:   b.opts.Concurrency,
		outDir:        b.OutputDir(),
		renderer:      b.opts.Renderer,
		engine:        b.opts.Engine,
		images:        b.opts.Images,
		sites:         make(map[string]*render.Site),
	}
	if st.concurrency <= 0 {
		st.concurrency = cfg.Build.Concurrency
	}
	for _, c := range cfg.Collections {
		if len(b.opts.Collections) == 0 || slices.Contains(b.opts.Collections, c.Name) {
			st.collections = append(st.collections, c)
		}
	}
	for _, code := range st.langs.Codes() {
		if len(b.opts.Languages) == 0 || slices.Contains(b.opts.Languages, code) {
			st.languages = append(st.languages, code)
		}
	}
	return st
}

// persist writes the optional report file and history entry. Failures are
// logged; they never change the build outcome.
func (b *Builder) persist(ctx context.Context, r *Report) {
	if b.opts.ReportDir != "" {
		if err := r.Persist(b.opts.ReportDir); err != nil {
			slog.Warn("Failed to write build report", logfields.Path(b.opts.ReportDir), logfields.Error(err))
		}
	}
	if b.opts.History != nil {
		if err := b.opts.History.Record(ctx, r.History()); err != nil {
			slog.Warn("Failed to record build history", logfields.BuildID(r.BuildID), logfields.Error(err))
		}
	}
}

func warningKind(err error) string {
	switch err.(type) {
	case *StageError:
		return "stage"
	case output.ImageWarning:
		return "missing_image"
	case i18n.MissingTranslationWarning:
		return "missing_translation"
	case staticOverride:
		return "static_override"
	default:
		return "other"
	}
}
