package build

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/output"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// FeedItems caps the number of entries per RSS feed.
const FeedItems = 20

func stageEmitFeeds(_ context.Context, st *State) error {
	for _, lang := range st.languages {
		site := st.site(lang)
		for _, coll := range st.collections {
			v := st.views[viewKey{Collection: coll.Name, Language: lang}]
			if !wantsFeed(coll) || len(st.listURLs(coll, lang, len(v.Records))) == 0 {
				continue
			}
			feedURL := st.feedURL(coll, lang)
			doc, err := output.RSS(v.Records, output.FeedOptions{
				Title:       site.Title + " · " + collectionTitle(coll.Name, lang),
				Description: site.Description,
				Language:    lang,
				BaseURL:     st.cfg.BaseURL,
				Link:        v.URL,
				FeedURL:     feedURL,
				MaxItems:    FeedItems,
			})
			if err != nil {
				return newFatalStageError(StageEmitFeeds, "", err)
			}
			if err := st.writer.Write(strings.TrimPrefix(feedURL, "/"), doc); err != nil {
				return newFatalStageError(StageEmitFeeds, "", err)
			}
		}
	}
	return nil
}

func stageEmitSitemap(_ context.Context, st *State) error {
	var entries []output.SitemapEntry
	for _, lang := range st.languages {
		home := output.SitemapEntry{Loc: st.langs.Prefix(lang) + "/"}
		if alts := st.homeAlternates(lang); len(alts) > 0 {
			home.Alternates = append([]content.Alternate{{Language: lang, URL: home.Loc}}, alts...)
		}
		entries = append(entries, home)
		for _, coll := range st.collections {
			v := st.views[viewKey{Collection: coll.Name, Language: lang}]
			if len(st.listURLs(coll, lang, len(v.Records))) > 0 {
				entries = append(entries, output.SitemapEntry{Loc: v.URL})
			}
		}
	}
	for i := range st.records {
		if rec := &st.records[i]; output.Indexable(rec) {
			entries = append(entries, output.RecordEntry(rec))
		}
	}

	doc, err := output.Sitemap(st.cfg.BaseURL, entries)
	if err != nil {
		return newFatalStageError(StageEmitSitemap, "", err)
	}
	if err := st.writer.Write(SitemapFile, doc); err != nil {
		return newFatalStageError(StageEmitSitemap, "", err)
	}
	return nil
}

func stageEmitDiscovery(_ context.Context, st *State) error {
	robots := output.RobotsTxt(paths.Absolute(st.cfg.BaseURL, "/"+SitemapFile))
	if err := st.writer.Write(RobotsFile, robots); err != nil {
		return newFatalStageError(StageEmitDiscovery, "", err)
	}

	var sections []output.LLMSection
	for _, coll := range st.collections {
		sec := output.LLMSection{Name: collectionTitle(coll.Name, st.langs.Default())}
		for _, lang := range st.languages {
			v := st.views[viewKey{Collection: coll.Name, Language: lang}]
			for _, r := range v.Records {
				sec.Entries = append(sec.Entries, output.LLMEntry{
					Title:       r.Title,
					MirrorURL:   "/" + r.MirrorPath,
					Description: r.Description,
				})
			}
		}
		sections = append(sections, sec)
	}
	doc := output.LLMsTxt(st.cfg.Title, st.cfg.Description, st.cfg.BaseURL, sections)
	if err := st.writer.Write(LLMsFile, doc); err != nil {
		return newFatalStageError(StageEmitDiscovery, "", err)
	}
	return nil
}

func stageEmitSearchIndex(_ context.Context, st *State) error {
	for _, lang := range st.languages {
		var recs []*content.Record
		for _, coll := range st.collections {
			recs = append(recs, st.views[viewKey{Collection: coll.Name, Language: lang}].Records...)
		}
		doc, err := output.SearchIndex(recs)
		if err != nil {
			return newFatalStageError(StageEmitSearchIndex, "", err)
		}
		rel := st.langFile(lang, SearchIndexFile)
		if err := st.writer.Write(rel, doc); err != nil {
			return newFatalStageError(StageEmitSearchIndex, "", err)
		}
		slog.Debug("Search index written", logfields.Language(lang), logfields.Count(len(recs)), logfields.Path(rel))
	}
	return nil
}
