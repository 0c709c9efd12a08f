package build

import (
	"context"
	stderrors "errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitegen/internal/collection"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/paths"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// renderTo executes a template and writes the result into the staging dir.
// Template failures carry the content path they were rendering.
func (st *State) renderTo(rel, tmpl, path string, data any) error {
	out, err := st.engine.Render(tmpl, data)
	if err != nil {
		var re *render.Error
		if stderrors.As(err, &re) && re.Path == "" {
			re.Path = path
		}
		return err
	}
	return st.writer.Write(rel, out)
}

func stageEmitPages(ctx context.Context, st *State) error {
	outs := make([]htmlOutput, len(st.records))
	err := forEach(ctx, len(st.records), st.concurrency, func(_ context.Context, i int) error {
		rec := &st.records[i]
		tmpl := rec.Template
		if tmpl == "" {
			tmpl = st.collectionNamed(rec.Collection).Template
		}
		if err := st.renderTo(rec.OutputPath, tmpl, rec.SourcePath, render.NewPageData(st.site(rec.Language), rec)); err != nil {
			return newFatalStageError(StageEmitPages, rec.SourcePath, err)
		}
		outs[i] = htmlOutput{Rel: rec.OutputPath, Language: rec.Language, Alternates: rec.Translations}
		return nil
	})
	if err != nil {
		return err
	}
	st.addHTML(outs)
	return nil
}

// stageEmitMirrors writes every record's source, front matter and unexpanded
// body, next to its page.
func stageEmitMirrors(ctx context.Context, st *State) error {
	return forEach(ctx, len(st.records), st.concurrency, func(_ context.Context, i int) error {
		rec := &st.records[i]
		if err := st.writer.Write(rec.MirrorPath, rec.Mirror()); err != nil {
			return newFatalStageError(StageEmitMirrors, rec.SourcePath, err)
		}
		return nil
	})
}

// collectionTitle turns a collection name into a list page heading.
func collectionTitle(name, lang string) string {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.Und
	}
	return cases.Title(tag).String(name)
}

func stageEmitIndexes(_ context.Context, st *State) error {
	var outs []htmlOutput
	for _, lang := range st.languages {
		site := st.site(lang)
		home := render.HomeData{Site: site}
		for _, coll := range st.collections {
			v := st.views[viewKey{Collection: coll.Name, Language: lang}]
			sec := render.Section{Name: collectionTitle(coll.Name, lang), Records: v.Records}
			urls := st.listURLs(coll, lang, len(v.Records))
			if len(urls) > 0 {
				sec.URL = v.URL
			}
			home.Sections = append(home.Sections, sec)

			listOuts, err := st.emitLists(coll, lang, v, urls)
			if err != nil {
				return err
			}
			outs = append(outs, listOuts...)
		}

		rel := paths.FileFor(st.langs.Prefix(lang) + "/")
		if err := st.renderTo(rel, render.HomeTemplate, "", home); err != nil {
			return newFatalStageError(StageEmitIndexes, "", err)
		}
		outs = append(outs, htmlOutput{Rel: rel, Language: lang, Alternates: st.homeAlternates(lang)})
	}
	st.addHTML(outs)
	return nil
}

func (st *State) emitLists(coll config.CollectionConfig, lang string, v collection.View, urls []string) ([]htmlOutput, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	data := render.ListData{
		Site:    st.site(lang),
		Title:   collectionTitle(coll.Name, lang),
		URL:     v.URL,
		View:    v,
		Records: v.Records,
	}
	if wantsFeed(coll) {
		data.Feed = st.feedURL(coll, lang)
	}
	alternates := st.listAlternates(coll, lang)

	pages := v.Pages
	if len(pages) == 0 {
		pages = []collection.Page{{Number: 1, URL: v.URL, End: len(v.Records), Records: v.Records}}
	}
	outs := make([]htmlOutput, 0, len(pages))
	for i := range pages {
		d := data
		if len(v.Pages) > 0 {
			d.Pager = &pages[i]
			d.Records = pages[i].Records
			d.URL = pages[i].URL
		}
		rel := paths.FileFor(d.URL)
		if err := st.renderTo(rel, coll.ListTemplate, "", d); err != nil {
			return nil, newFatalStageError(StageEmitIndexes, st.cfg.CollectionDir(coll), err)
		}
		outs = append(outs, htmlOutput{Rel: rel, Language: lang, Alternates: alternates})
	}
	return outs, nil
}

// homeAlternates lists the home pages of the other built languages.
func (st *State) homeAlternates(lang string) []content.Alternate {
	if len(st.languages) < 2 {
		return nil
	}
	var out []content.Alternate
	for _, l := range st.languages {
		if l != lang {
			out = append(out, content.Alternate{Language: l, URL: st.langs.Prefix(l) + "/"})
		}
	}
	return out
}

// listAlternates lists the first list page of a collection in the other
// languages that emit one.
func (st *State) listAlternates(coll config.CollectionConfig, lang string) []content.Alternate {
	var out []content.Alternate
	for _, l := range st.languages {
		if l == lang {
			continue
		}
		v := st.views[viewKey{Collection: coll.Name, Language: l}]
		if len(st.listURLs(coll, l, len(v.Records))) > 0 {
			out = append(out, content.Alternate{Language: l, URL: v.URL})
		}
	}
	return out
}
