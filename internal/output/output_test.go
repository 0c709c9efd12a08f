package output

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/temoto/robotstxt"

	"git.home.luguber.info/inful/sitegen/internal/content"
)

const base = "https://example.com/"

func TestWriter(t *testing.T) {
	w := NewWriter(t.TempDir())
	require.NoError(t, w.Write("/posts/a.html", []byte("a")))
	require.NoError(t, w.Write("index.html", []byte("i")))
	assert.Equal(t, 2, w.Count())

	data, err := os.ReadFile(filepath.Join(w.Root(), "posts", "a.html"))
	require.NoError(t, err)
	assert.Equal(t, "a", string(data))
}

func TestWriterRefusesEscapingPaths(t *testing.T) {
	parent := t.TempDir()
	w := NewWriter(filepath.Join(parent, "site"))
	for _, rel := range []string{"../escaped.html", "posts/../../escaped.html", "/../escaped.html", "."} {
		require.Error(t, w.Write(rel, []byte("x")), rel)
	}
	assert.NoFileExists(t, filepath.Join(parent, "escaped.html"))
	assert.Equal(t, 0, w.Count())
}

func TestRSS(t *testing.T) {
	recs := []*content.Record{
		{Title: "B", URL: "/posts/b", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), ExcerptHTML: "<p>Second <em>post</em></p>"},
		{Title: "A", URL: "/posts/a", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Description: "First"},
		{Title: "Old", URL: "/posts/old", Date: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	out, err := RSS(recs, FeedOptions{
		Title: "Posts", BaseURL: base, Link: "/posts/", FeedURL: "/posts/index.xml", Language: "en", MaxItems: 2,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), xml.Header))
	assert.Contains(t, string(out), `<atom:link href="https://example.com/posts/index.xml" rel="self" type="application/rss+xml">`)

	var doc struct {
		Channel struct {
			Items []struct {
				Title       string `xml:"title"`
				Link        string `xml:"link"`
				GUID        string `xml:"guid"`
				Description string `xml:"description"`
				PubDate     string `xml:"pubDate"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal(out, &doc))
	assert.Contains(t, string(out), "<link>https://example.com/posts/</link>")
	require.Len(t, doc.Channel.Items, 2)
	assert.Equal(t, "https://example.com/posts/b", doc.Channel.Items[0].Link)
	assert.Equal(t, "https://example.com/posts/b", doc.Channel.Items[0].GUID)
	assert.Equal(t, "Second post", doc.Channel.Items[0].Description)
	assert.Equal(t, "First", doc.Channel.Items[1].Description)
	assert.Equal(t, "Sat, 02 Mar 2024 00:00:00 +0000", doc.Channel.Items[0].PubDate)

	feed, err := gofeed.NewParser().ParseString(string(out))
	require.NoError(t, err)
	assert.Equal(t, "rss", feed.FeedType)
	assert.Equal(t, "Posts", feed.Title)
	assert.Equal(t, "en", feed.Language)
	require.Len(t, feed.Items, 2)
	require.NotNil(t, feed.Items[0].PublishedParsed)
	assert.True(t, feed.Items[0].PublishedParsed.After(*feed.Items[1].PublishedParsed))
}

func TestSitemap(t *testing.T) {
	en := &content.Record{
		URL: "/posts/a", Language: "en", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Translations: []content.Alternate{{Language: "es", URL: "/es/posts/a"}},
	}
	hidden := &content.Record{URL: "/secret", Robots: "noindex, nofollow"}
	assert.True(t, Indexable(en))
	assert.False(t, Indexable(hidden))

	entry := RecordEntry(en)
	require.Len(t, entry.Alternates, 2)
	assert.Equal(t, "en", entry.Alternates[0].Language)

	out, err := Sitemap(base, []SitemapEntry{{Loc: "/"}, entry})
	require.NoError(t, err)
	s := string(out)
	assert.Contains(t, s, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9" xmlns:xhtml="http://www.w3.org/1999/xhtml">`)
	assert.Contains(t, s, "<loc>https://example.com/</loc>")
	assert.Contains(t, s, "<loc>https://example.com/posts/a</loc>")
	assert.Contains(t, s, "<lastmod>2024-03-01</lastmod>")
	assert.Contains(t, s, `<xhtml:link rel="alternate" hreflang="es" href="https://example.com/es/posts/a">`)
	assert.NotContains(t, s, "secret")
}

func TestDiscoveryFiles(t *testing.T) {
	robots := RobotsTxt("https://example.com/sitemap.xml")
	assert.Equal(t, "User-agent: *\nAllow: /\n\nSitemap: https://example.com/sitemap.xml\n", string(robots))

	parsed, err := robotstxt.FromBytes(robots)
	require.NoError(t, err)
	assert.True(t, parsed.TestAgent("/posts/a", "Googlebot"))
	assert.Equal(t, []string{"https://example.com/sitemap.xml"}, parsed.Sitemaps)

	got := LLMsTxt("Example", "A site", base, []LLMSection{
		{Name: "posts", Entries: []LLMEntry{{Title: "A", MirrorURL: "/posts/a.md", Description: "First"}}},
		{Name: "empty"},
	})
	assert.Equal(t, "# Example\n\n> A site\n\n## posts\n\n- [A](https://example.com/posts/a.md): First\n", string(got))
}

func TestSearchIndex(t *testing.T) {
	out, err := SearchIndex([]*content.Record{{
		URL: "/posts/a", Title: "A", Collection: "posts", Tags: []string{"go"},
		RenderedHTML: "<h2>Intro</h2><p>Hello <b>world</b></p>", Fingerprint: "abc",
	}})
	require.NoError(t, err)

	var entries []SearchEntry
	require.NoError(t, json.Unmarshal(out, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Intro Hello world", entries[0].Text)
	assert.Equal(t, "abc", entries[0].Fingerprint)
	assert.Equal(t, []string{"go"}, entries[0].Tags)
}

func TestCopyDir(t *testing.T) {
	src := filepath.Join(t.TempDir(), "static")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "img"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "favicon.ico"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(src, "img", "a.png"), []byte("png"), 0o600))

	dst := t.TempDir()
	n, err := CopyDir(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.FileExists(t, filepath.Join(dst, "img", "a.png"))

	n, err = CopyDir(filepath.Join(t.TempDir(), "missing"), dst)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestImageRefsAndChecker(t *testing.T) {
	srcDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "local.png"), []byte("png"), 0o600))
	rec := &content.Record{
		SourcePath: filepath.Join(srcDir, "post.md"),
		URL:        "/posts/post",
		Image:      "/img/a.png",
		RawBody:    "![a](/img/a.png)\n\n![b](https://cdn.example/b.png)\n\n![c](local.png)\n\n![d](/img/missing.png)\n",
	}
	refs := ImageRefs(rec)
	require.Len(t, refs, 3)
	assert.Equal(t, "/img/a.png", refs[0].Ref)
	assert.Equal(t, "local.png", refs[1].Ref)
	assert.Equal(t, "/img/missing.png", refs[2].Ref)

	out := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(out, "img"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(out, "img", "a.png"), []byte("png"), 0o600))

	warnings, err := MissingImageChecker{}.Process(context.Background(), out, refs)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, "/img/missing.png", warnings[0].Image.Ref)
	assert.Contains(t, warnings[0].Error(), "not found")
}

func TestPostProcess(t *testing.T) {
	alts := []content.Alternate{{Language: "en", URL: "/posts/a"}}

	doc := []byte("<!DOCTYPE html><html><head><title>x</title></head><body><p>hi</p></body></html>")
	out, changed, err := PostProcess(doc, "es", base, alts)
	require.NoError(t, err)
	assert.True(t, changed)

	gq, err := goquery.NewDocumentFromReader(strings.NewReader(string(out)))
	require.NoError(t, err)
	lang, _ := gq.Find("html").Attr("lang")
	assert.Equal(t, "es", lang)
	link := gq.Find(`head link[rel="alternate"][hreflang="en"]`)
	require.Equal(t, 1, link.Length())
	href, _ := link.Attr("href")
	assert.Equal(t, "https://example.com/posts/a", href)
	assert.Equal(t, "hi", gq.Find("body p").Text())

	complete := []byte(`<!DOCTYPE html><html lang="es"><head><link rel="alternate" hreflang="en" href="/posts/a"></head><body></body></html>`)
	out, changed, err = PostProcess(complete, "es", base, alts)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, complete, out)
}
