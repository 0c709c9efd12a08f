package build

import (
	"context"
	stderrors "errors"
	"fmt"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in pipeline order.
const (
	StagePrepareOutput    StageName = "prepare_output"
	StageLoadTemplates    StageName = "load_templates"
	StageLoadData         StageName = "load_data"
	StageParseContent     StageName = "parse_content"
	StageCheckURLs        StageName = "check_urls"
	StageLinkTranslations StageName = "link_translations"
	StageOrganize         StageName = "organize_collections"
	StageEmitPages        StageName = "emit_pages"
	StageEmitMirrors      StageName = "emit_mirrors"
	StageEmitIndexes      StageName = "emit_indexes"
	StageEmitFeeds        StageName = "emit_feeds"
	StageEmitSitemap      StageName = "emit_sitemap"
	StageEmitDiscovery    StageName = "emit_discovery"
	StageEmitSearchIndex  StageName = "emit_search_index"
	StageCopyStatic       StageName = "copy_static"
	StageProcessImages    StageName = "process_images"
	StagePostProcessHTML  StageName = "post_process_html"
	StageFinalizeOutput   StageName = "finalize_output"
)

// Artifact names a piece of build state passed between stages.
type Artifact string

const (
	ArtifactStaging      Artifact = "staging_dir"
	ArtifactTemplates    Artifact = "templates"
	ArtifactMacros       Artifact = "macros"
	ArtifactStrings      Artifact = "ui_strings"
	ArtifactData         Artifact = "data"
	ArtifactRecords      Artifact = "records"
	ArtifactCheckedURLs  Artifact = "checked_urls"
	ArtifactTranslations Artifact = "translations"
	ArtifactViews        Artifact = "views"
	ArtifactPages        Artifact = "pages"
	ArtifactIndexes      Artifact = "indexes"
	ArtifactStatic       Artifact = "static"
	ArtifactSite         Artifact = "site"
)

// StageFunc is a discrete unit of work in the site build.
type StageFunc func(ctx context.Context, st *State) error

// StageDef pairs a stage name with its declared inputs, outputs and function.
type StageDef struct {
	Name     StageName
	Needs    []Artifact
	Produces []Artifact
	Fn       StageFunc
}

// StageErrorKind classifies the outcome of a stage.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Build must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError is the terminal error of a failed build. Path names the content
// file at fault when the failure belongs to one item.
type StageError struct {
	Kind  StageErrorKind
	Stage StageName
	Path  string
	Err   error
}

func (e *StageError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s stage %s (%s): %v", e.Kind, e.Stage, e.Path, e.Err)
	}
	return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// StageResult captures the high-level outcome of a stage.
type StageResult string

const (
	StageResultSuccess  StageResult = "success"
	StageResultWarning  StageResult = "warning"
	StageResultFatal    StageResult = "fatal"
	StageResultCanceled StageResult = "canceled"
)

func newFatalStageError(stage StageName, path string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Path: path, Err: err}
}

func newWarnStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}

func newCanceledStageError(stage StageName, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

// ErrInvalidPipeline reports a stage list whose declared artifacts do not line up.
var ErrInvalidPipeline = stderrors.New("invalid pipeline")

// Pipeline is a fluent builder for ordered stage definitions.
type Pipeline struct{ Defs []StageDef }

// NewPipeline creates an empty pipeline.
func NewPipeline() *Pipeline { return &Pipeline{Defs: make([]StageDef, 0, 18)} }

// Add appends a stage unconditionally.
func (p *Pipeline) Add(def StageDef) *Pipeline {
	p.Defs = append(p.Defs, def)
	return p
}

// AddIf appends a stage only if cond is true.
func (p *Pipeline) AddIf(cond bool, def StageDef) *Pipeline {
	if cond {
		p.Add(def)
	}
	return p
}

// Build validates the pipeline and returns a copy of its definitions. Every
// Need must be produced by an earlier stage, and stage names are unique.
func (p *Pipeline) Build() ([]StageDef, error) {
	produced := make(map[Artifact]StageName)
	seen := make(map[StageName]bool, len(p.Defs))
	for _, d := range p.Defs {
		if d.Fn == nil {
			return nil, fmt.Errorf("%w: stage %s has no function", ErrInvalidPipeline, d.Name)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("%w: duplicate stage %s", ErrInvalidPipeline, d.Name)
		}
		seen[d.Name] = true
		for _, need := range d.Needs {
			if _, ok := produced[need]; !ok {
				return nil, fmt.Errorf("%w: stage %s needs %s, which no earlier stage produces", ErrInvalidPipeline, d.Name, need)
			}
		}
		for _, out := range d.Produces {
			if prev, ok := produced[out]; ok {
				return nil, fmt.Errorf("%w: %s is produced by both %s and %s", ErrInvalidPipeline, out, prev, d.Name)
			}
			produced[out] = d.Name
		}
	}
	out := make([]StageDef, len(p.Defs))
	copy(out, p.Defs)
	return out, nil
}
