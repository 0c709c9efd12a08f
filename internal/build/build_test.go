package build

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/history"
	"git.home.luguber.info/inful/sitegen/internal/macro"
	"git.home.luguber.info/inful/sitegen/internal/paths"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

const siteConfig = `
title: Example
base_url: https://example.com
languages:
  es: {}
collections:
  - name: posts
    sort_by: date
    paginate: 2
  - name: pages
    url_prefix: /
`

var firstPost = "---\ntitle: First\ndate: 2024-01-01\ntags: [intro]\n---\nPress {{< kbd(keys=\"Ctrl+C\") >}} now.\n"

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

func newSite(t *testing.T, cfgYAML string) (string, *config.Config) {
	t.Helper()
	root := t.TempDir()
	cfg, err := config.LoadBytes([]byte(cfgYAML), root)
	require.NoError(t, err)
	cfg.Build.Concurrency = 4
	return root, cfg
}

func writeBlog(t *testing.T, root string) {
	t.Helper()
	writeFile(t, root, "content/posts/2024-01-01-first.md", firstPost)
	writeFile(t, root, "content/posts/2024-01-01-first.es.md", "---\ntitle: Primero\ndate: 2024-01-01\n---\nHola.\n")
	for i, name := range []string{"second", "third", "fourth", "fifth"} {
		writeFile(t, root, "content/posts/2024-01-0"+string(rune('2'+i))+"-"+name+".md",
			"---\ntitle: "+name+"\ndate: 2024-01-0"+string(rune('2'+i))+"\n---\nBody of "+name+".\n")
	}
	writeFile(t, root, "content/posts/wip.md", "---\ntitle: WIP\ndate: 2024-02-01\ndraft: true\n---\nnot yet\n")
	writeFile(t, root, "content/pages/about.md", "---\ntitle: About\n---\nAbout us.\n")
}

func fixedNow() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }

func build(t *testing.T, cfg *config.Config, opts Options) (*Report, error) {
	t.Helper()
	opts.Now = fixedNow
	b, err := New(cfg, opts)
	require.NoError(t, err)
	return b.Build(context.Background())
}

func readOut(t *testing.T, cfg *config.Config, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.Resolve(cfg.Build.OutputDir), filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestPipelineValidation(t *testing.T) {
	noop := func(context.Context, *State) error { return nil }

	_, err := NewPipeline().
		Add(StageDef{Name: "a", Needs: []Artifact{ArtifactRecords}, Fn: noop}).
		Build()
	require.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = NewPipeline().
		Add(StageDef{Name: "a", Fn: noop}).
		Add(StageDef{Name: "a", Fn: noop}).
		Build()
	require.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = NewPipeline().Add(StageDef{Name: "a"}).Build()
	require.ErrorIs(t, err, ErrInvalidPipeline)

	_, err = NewPipeline().
		Add(StageDef{Name: "a", Produces: []Artifact{ArtifactData}, Fn: noop}).
		Add(StageDef{Name: "b", Produces: []Artifact{ArtifactData}, Fn: noop}).
		Build()
	require.ErrorIs(t, err, ErrInvalidPipeline)

	full, err := pipeline(false).Build()
	require.NoError(t, err)
	assert.Len(t, full, 18)
	assert.Equal(t, StagePrepareOutput, full[0].Name)
	assert.Equal(t, StageFinalizeOutput, full[len(full)-1].Name)

	check, err := pipeline(true).Build()
	require.NoError(t, err)
	assert.Len(t, check, 6)
}

func TestNewRejectsUnknownSelections(t *testing.T) {
	_, cfg := newSite(t, siteConfig)

	_, err := New(cfg, Options{Collections: []string{"nope"}})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))

	_, err = New(cfg, Options{Languages: []string{"de"}})
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
}

func TestBuildSite(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeBlog(t, root)

	report, err := build(t, cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.Len(t, report.StageOrder, 18)
	assert.Len(t, report.StageDurations, 18)
	assert.Equal(t, 7, report.Records)
	assert.Equal(t, 6, report.PerCollection["posts"])
	assert.NotEmpty(t, report.BuildID)

	out := cfg.Resolve(cfg.Build.OutputDir)
	for _, rel := range []string{
		"index.html", "es/index.html",
		"posts/first.html", "posts/first.md", "es/posts/first.html", "es/posts/first.md",
		"about.html", "about.md",
		"posts/index.html", "posts/page/2.html", "posts/page/3.html", "es/posts/index.html",
		"posts/index.xml", "es/posts/index.xml",
		"sitemap.xml", "robots.txt", "llms.txt", "search-index.json", "es/search-index.json",
	} {
		assert.FileExists(t, filepath.Join(out, filepath.FromSlash(rel)))
	}
	assert.NoFileExists(t, filepath.Join(out, "posts", "wip.html"))
	assert.NoFileExists(t, filepath.Join(out, "posts", "page", "4.html"))
	assert.NoDirExists(t, stagingDir(out))

	assert.Equal(t, firstPost, readOut(t, cfg, "posts/first.md"))

	page := readOut(t, cfg, "posts/first.html")
	assert.Contains(t, page, "<kbd>Ctrl</kbd>+<kbd>C</kbd>")
	assert.Contains(t, page, `hreflang="es" href="https://example.com/es/posts/first"`)

	es := readOut(t, cfg, "es/posts/first.html")
	assert.Contains(t, es, `<html lang="es">`)
	assert.Contains(t, es, `hreflang="en" href="https://example.com/posts/first"`)

	list := readOut(t, cfg, "posts/index.html")
	assert.Contains(t, list, `href="/posts/fifth"`)
	assert.Contains(t, list, `rel="next" href="/posts/page/2"`)
	assert.NotContains(t, list, `href="/posts/first"`)

	assert.Contains(t, readOut(t, cfg, "robots.txt"), "Sitemap: https://example.com/sitemap.xml")
	assert.Contains(t, readOut(t, cfg, "llms.txt"), "[First](https://example.com/posts/first.md)")
	assert.Contains(t, readOut(t, cfg, "sitemap.xml"), "<loc>https://example.com/about</loc>")
}

func TestBuildReplacesPreviousOutput(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeBlog(t, root)

	_, err := build(t, cfg, Options{})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(root, "content", "pages", "about.md")))
	_, err = build(t, cfg, Options{})
	require.NoError(t, err)

	out := cfg.Resolve(cfg.Build.OutputDir)
	assert.NoFileExists(t, filepath.Join(out, "about.html"))
	assert.NoDirExists(t, out+".prev")
}

func TestCollisionKeepsPreviousOutput(t *testing.T) {
	root, cfg := newSite(t, siteConfig+`  - name: misc
    url_prefix: /
`)
	writeBlog(t, root)

	_, err := build(t, cfg, Options{})
	require.NoError(t, err)
	before := readOut(t, cfg, "about.html")

	writeFile(t, root, "content/misc/about.md", "---\ntitle: Also about\n---\nclash\n")
	report, err := build(t, cfg, Options{})
	require.Error(t, err)

	var collision *paths.SlugCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "/about", collision.URL)
	assert.Equal(t, errors.CategorySlug, errors.GetCategory(err))

	var se *StageError
	require.ErrorAs(t, report.Err, &se)
	assert.Equal(t, StageCheckURLs, se.Stage)
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.NotContains(t, report.StageOrder, StageEmitPages)

	out := cfg.Resolve(cfg.Build.OutputDir)
	assert.Equal(t, before, readOut(t, cfg, "about.html"))
	assert.NoDirExists(t, stagingDir(out))
}

func TestCollisionOnFirstBuildWritesNothing(t *testing.T) {
	root, cfg := newSite(t, siteConfig+`  - name: misc
    url_prefix: /
`)
	writeFile(t, root, "content/pages/about.md", "---\ntitle: About\n---\na\n")
	writeFile(t, root, "content/misc/about.md", "---\ntitle: About\n---\nb\n")

	_, err := build(t, cfg, Options{})
	require.Error(t, err)

	out := cfg.Resolve(cfg.Build.OutputDir)
	assert.NoDirExists(t, out)
	assert.NoDirExists(t, stagingDir(out))
}

func TestSlugOutsideCollectionFailsBuild(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeFile(t, root, "content/pages/evil.md", "---\ntitle: Evil\nslug: ../../escaped\n---\nx\n")

	_, err := build(t, cfg, Options{})
	require.Error(t, err)

	var fmErr *content.FrontmatterError
	require.ErrorAs(t, err, &fmErr)
	assert.Equal(t, "slug", fmErr.Field)
	assert.Equal(t, errors.CategoryContent, errors.GetCategory(err))

	out := cfg.Resolve(cfg.Build.OutputDir)
	assert.NoDirExists(t, out)
	assert.NoFileExists(t, filepath.Join(filepath.Dir(root), "escaped.html"))
	assert.NoFileExists(t, filepath.Join(root, "escaped.html"))
}

func TestUnclosedBodyMacroNamesFile(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeFile(t, root, "content/posts/2024-01-01-ok.md", "---\ntitle: OK\ndate: 2024-01-01\n---\nfine\n")
	bad := filepath.Join(root, "content", "posts", "2024-01-02-bad.md")
	writeFile(t, root, "content/posts/2024-01-02-bad.md", "---\ntitle: Bad\ndate: 2024-01-02\n---\n{{% callout %}}\nnever closed\n")

	report, err := build(t, cfg, Options{})
	require.Error(t, err)

	var unclosed *macro.UnclosedBodyError
	require.ErrorAs(t, err, &unclosed)
	assert.Equal(t, errors.CategoryMacro, errors.GetCategory(err))

	var se *StageError
	require.ErrorAs(t, report.Err, &se)
	assert.Equal(t, StageParseContent, se.Stage)
	assert.Equal(t, bad, se.Path)
	assert.NoDirExists(t, cfg.Resolve(cfg.Build.OutputDir))
}

func TestFirstErrorFollowsTraversalOrder(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	first := filepath.Join(root, "content", "posts", "a.md")
	writeFile(t, root, "content/posts/a.md", "---\ntitle: A\n---\nmissing date\n")
	for _, name := range []string{"b", "c", "d", "e", "f"} {
		writeFile(t, root, "content/posts/"+name+".md", "---\ntitle: "+name+"\ndate: 2024-01-01\n---\n{{< nope >}}\n")
	}

	for range 5 {
		report, err := build(t, cfg, Options{Concurrency: 8})
		require.Error(t, err)
		var se *StageError
		require.ErrorAs(t, report.Err, &se)
		assert.Equal(t, first, se.Path)
	}
}

func TestCheckWritesNothing(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeBlog(t, root)

	report, err := build(t, cfg, Options{Check: true})
	require.NoError(t, err)
	assert.True(t, report.Check)
	assert.Equal(t, []StageName{
		StageLoadTemplates, StageLoadData, StageParseContent,
		StageCheckURLs, StageLinkTranslations, StageOrganize,
	}, report.StageOrder)
	assert.Equal(t, 7, report.Records)

	out := cfg.Resolve(cfg.Build.OutputDir)
	assert.NoDirExists(t, out)
	assert.NoDirExists(t, stagingDir(out))
}

func TestLanguageFilter(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeBlog(t, root)

	report, err := build(t, cfg, Options{Languages: []string{"en"}, Collections: []string{"posts"}})
	require.NoError(t, err)
	assert.Equal(t, 5, report.Records)

	out := cfg.Resolve(cfg.Build.OutputDir)
	assert.FileExists(t, filepath.Join(out, "posts", "first.html"))
	assert.NoDirExists(t, filepath.Join(out, "es"))
	assert.NoFileExists(t, filepath.Join(out, "about.html"))
}

func TestDraftsIncluded(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeBlog(t, root)

	_, err := build(t, cfg, Options{IncludeDrafts: true})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cfg.Resolve(cfg.Build.OutputDir), "posts", "wip.html"))
}

func TestMissingTranslationIsWarning(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeFile(t, root, "content/posts/2024-01-01-solo.es.md", "---\ntitle: Solo\ndate: 2024-01-01\n---\nsolo\n")

	report, err := build(t, cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, StageResultWarning, report.StageResults[StageLinkTranslations])
	assert.FileExists(t, filepath.Join(cfg.Resolve(cfg.Build.OutputDir), "es", "posts", "solo.html"))
}

func TestMissingImageIsWarning(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeFile(t, root, "content/pages/about.md", "---\ntitle: About\n---\n![logo](/img/logo.png)\n\n![team](/img/team.png)\n")
	writeFile(t, root, "static/img/logo.png", "png")

	report, err := build(t, cfg, Options{})
	require.NoError(t, err)
	assert.Equal(t, OutcomeWarning, report.Outcome)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0].Error(), "/img/team.png")
	assert.FileExists(t, filepath.Join(cfg.Resolve(cfg.Build.OutputDir), "img", "logo.png"))
}

func TestTemplateErrorCarriesPath(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeFile(t, root, "templates/broken.html", "{{ .Nope }}")
	src := filepath.Join(root, "content", "pages", "about.md")
	writeFile(t, root, "content/pages/about.md", "---\ntitle: About\ntemplate: broken.html\n---\nx\n")

	report, err := build(t, cfg, Options{})
	require.Error(t, err)

	var re *render.Error
	require.ErrorAs(t, err, &re)
	assert.Equal(t, src, re.Path)
	assert.Equal(t, errors.CategoryRender, errors.GetCategory(err))

	var se *StageError
	require.ErrorAs(t, report.Err, &se)
	assert.Equal(t, StageEmitPages, se.Stage)
	assert.NoDirExists(t, stagingDir(cfg.Resolve(cfg.Build.OutputDir)))
}

func TestCanceledBuild(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeBlog(t, root)

	b, err := New(cfg, Options{Now: fixedNow})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := b.Build(ctx)
	require.Error(t, err)
	assert.Equal(t, OutcomeCanceled, report.Outcome)
	assert.Equal(t, errors.CategoryCanceled, errors.GetCategory(err))
	assert.NoDirExists(t, cfg.Resolve(cfg.Build.OutputDir))
}

func TestBuildRecordsHistoryAndReport(t *testing.T) {
	root, cfg := newSite(t, siteConfig)
	writeBlog(t, root)

	store, err := history.NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	reportDir := t.TempDir()

	report, err := build(t, cfg, Options{History: store, ReportDir: reportDir})
	require.NoError(t, err)

	entry, err := store.Get(context.Background(), report.BuildID)
	require.NoError(t, err)
	assert.Equal(t, string(OutcomeSuccess), entry.Outcome)
	assert.Equal(t, 7, entry.Records)
	assert.Len(t, entry.Stages, 18)

	assert.FileExists(t, filepath.Join(reportDir, ReportFile))
}
