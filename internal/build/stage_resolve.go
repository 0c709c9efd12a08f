package build

import (
	"context"
	"log/slog"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/collection"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/i18n"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/paths"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// Files generated at the site root.
const (
	SitemapFile     = "sitemap.xml"
	RobotsFile      = "robots.txt"
	LLMsFile        = "llms.txt"
	SearchIndexFile = "search-index.json"
	FeedFile        = "index.xml"
)

// listURLs returns the list page URLs a collection emits in one language
// holding n records. Non-default languages without records get none.
func (st *State) listURLs(coll config.CollectionConfig, lang string, n int) []string {
	if !coll.HasIndex() || (n == 0 && !st.langs.IsDefault(lang)) {
		return nil
	}
	base := st.langs.Prefix(lang) + coll.URLPrefix
	pages := 1
	if coll.Paginate > 0 && n > coll.Paginate {
		pages = (n + coll.Paginate - 1) / coll.Paginate
	}
	urls := make([]string, pages)
	for i := range urls {
		urls[i] = collection.PageURL(base, i+1)
	}
	return urls
}

// wantsFeed reports whether a collection gets an RSS feed.
func wantsFeed(coll config.CollectionConfig) bool {
	return coll.HasIndex() && (coll.HasDate() || coll.Feed)
}

func (st *State) feedURL(coll config.CollectionConfig, lang string) string {
	return st.langs.Prefix(lang) + coll.URLPrefix + "/" + FeedFile
}

// langFile returns a per-language root file such as es/search-index.json.
func (st *State) langFile(lang, name string) string {
	return strings.TrimPrefix(st.langs.Prefix(lang)+"/"+name, "/")
}

// reservedFiles maps every output file the build generates itself to a
// description used in collision errors.
func (st *State) reservedFiles() map[string]string {
	counts := map[viewKey]int{}
	for _, r := range st.records {
		counts[viewKey{Collection: r.Collection, Language: r.Language}]++
	}

	reserved := map[string]string{
		SitemapFile: "generated sitemap",
		RobotsFile:  "generated robots.txt",
		LLMsFile:    "generated llms.txt",
	}
	for _, lang := range st.languages {
		reserved[paths.FileFor(st.langs.Prefix(lang)+"/")] = "home page (" + lang + ")"
		reserved[st.langFile(lang, SearchIndexFile)] = "search index (" + lang + ")"
		for _, coll := range st.collections {
			urls := st.listURLs(coll, lang, counts[viewKey{Collection: coll.Name, Language: lang}])
			for _, u := range urls {
				reserved[paths.FileFor(u)] = "list page of collection " + coll.Name + " (" + lang + ")"
			}
			if len(urls) > 0 && wantsFeed(coll) {
				reserved[strings.TrimPrefix(st.feedURL(coll, lang), "/")] = "feed of collection " + coll.Name + " (" + lang + ")"
			}
		}
	}
	return reserved
}

func stageCheckURLs(_ context.Context, st *State) error {
	if err := paths.CheckCollisions(st.records, st.reservedFiles()); err != nil {
		return newFatalStageError(StageCheckURLs, collisionPath(err), err)
	}
	return nil
}

func collisionPath(err error) string {
	if c, ok := err.(*paths.SlugCollisionError); ok {
		return c.Paths[1]
	}
	return ""
}

func stageLinkTranslations(_ context.Context, st *State) error {
	sets, recs, warnings := i18n.Link(st.records, st.langs)
	st.translations = sets
	st.records = recs
	for _, w := range warnings {
		slog.Warn("Missing translation",
			logfields.Path(w.Path),
			logfields.Collection(w.Collection),
			logfields.Language(w.Language))
		st.report.AddWarning(w)
	}
	return nil
}

func stageOrganize(_ context.Context, st *State) error {
	st.views = make(map[viewKey]collection.View, len(st.collections)*len(st.languages))
	for _, lang := range st.languages {
		st.sites[lang] = render.NewSite(st.cfg, lang, st.strings.For(lang), st.data, st.now)
		for _, coll := range st.collections {
			v := collection.Organize(st.recordsOf(coll.Name, lang), coll, collection.Options{
				IncludeDrafts: st.includeDrafts,
				Language:      lang,
				LangPrefix:    st.langs.Prefix(lang),
			})
			st.views[viewKey{Collection: coll.Name, Language: lang}] = v
		}
	}
	return nil
}
