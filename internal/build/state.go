package build

import (
	"time"

	"git.home.luguber.info/inful/sitegen/internal/collection"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/gitinfo"
	"git.home.luguber.info/inful/sitegen/internal/i18n"
	"git.home.luguber.info/inful/sitegen/internal/macro"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

type viewKey struct {
	Collection string
	Language   string
}

// htmlOutput is one written HTML file awaiting post-processing.
type htmlOutput struct {
	Rel        string
	Language   string
	Alternates []content.Alternate
}

// State is the mutable build state shared by stages. Stages run one at a
// time; parallel work inside a stage writes into pre-sized slices by index.
type State struct {
	cfg      *config.Config
	langs    config.Languages
	report   *Report
	now      time.Time
	recorder metrics.Recorder

	collections   []config.CollectionConfig
	languages     []string
	includeDrafts bool
	concurrency   int

	outDir   string
	stageDir string
	writer   *output.Writer

	renderer markdown.Renderer
	engine   render.Engine
	images   output.ImageProcessor
	macros   *macro.Registry
	strings  *i18n.Table
	data     map[string]any
	git      *gitinfo.Repo

	records      []content.Record
	translations map[i18n.Key]*i18n.TranslationSet
	views        map[viewKey]collection.View
	sites        map[string]*render.Site
	html         []htmlOutput
}

// site returns the template context of a language. Sites are built by the
// organize stage and only read afterwards.
func (st *State) site(lang string) *render.Site { return st.sites[lang] }

func (st *State) collectionNamed(name string) config.CollectionConfig {
	for _, c := range st.collections {
		if c.Name == name {
			return c
		}
	}
	c, _ := st.cfg.Collection(name)
	return c
}

// recordsOf returns pointers into st.records for one collection and language,
// in traversal order.
func (st *State) recordsOf(coll, lang string) []*content.Record {
	var out []*content.Record
	for i := range st.records {
		r := &st.records[i]
		if r.Collection == coll && r.Language == lang {
			out = append(out, r)
		}
	}
	return out
}

func (st *State) addHTML(outs []htmlOutput) {
	st.html = append(st.html, outs...)
	st.report.Pages += len(outs)
}
