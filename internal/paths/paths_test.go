package paths

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
)

var langs = config.NewLanguages("en", map[string]config.LanguageConfig{"es": {}})

func TestSlugPrecedence(t *testing.T) {
	posts := config.CollectionConfig{Name: "posts", URLPrefix: "/posts", SortBy: config.SortByDate}
	docs := config.CollectionConfig{Name: "docs", URLPrefix: "/docs", SortBy: config.SortByWeight, Nested: true}
	flat := config.CollectionConfig{Name: "notes", URLPrefix: "/notes"}

	tests := []struct {
		name string
		rec  content.Record
		coll config.CollectionConfig
		want string
	}{
		{"override wins", content.Record{SlugOverride: "custom", Stem: "2024-01-01-x"}, posts, "custom"},
		{"date prefix stripped", content.Record{Stem: "2024-01-01-hello"}, posts, "hello"},
		{"date prefix kept for undated", content.Record{Stem: "2024-01-01-hello"}, flat, "2024-01-01-hello"},
		{"only a date", content.Record{Stem: "2024-01-01-"}, posts, "2024-01-01-"},
		{"nested keeps dir", content.Record{Stem: "guides/setup"}, docs, "guides/setup"},
		{"flat drops dir", content.Record{Stem: "guides/setup"}, flat, "setup"},
		{"nested override", content.Record{Stem: "guides/setup", SlugOverride: "start"}, docs, "start"},
		{"override cleaned", content.Record{SlugOverride: "a/./b//c"}, flat, "a/b/c"},
		{"override cannot climb", content.Record{SlugOverride: "../../x"}, flat, "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slug(tt.rec, tt.coll))
		})
	}
}

func TestResolveURLs(t *testing.T) {
	posts := config.CollectionConfig{Name: "posts", URLPrefix: "/posts"}
	root := config.CollectionConfig{Name: "pages", URLPrefix: ""}

	en := Resolve(content.Record{Stem: "post", Language: "en"}, posts, langs)
	assert.Equal(t, "post", en.Slug)
	assert.Equal(t, "/posts/post", en.URL)
	assert.Equal(t, "posts/post.html", en.OutputPath)
	assert.Equal(t, "posts/post.md", en.MirrorPath)

	es := Resolve(content.Record{Stem: "post", Language: "es"}, posts, langs)
	assert.Equal(t, "post", es.Slug)
	assert.Equal(t, "/es/posts/post", es.URL)
	assert.Equal(t, "es/posts/post.html", es.OutputPath)

	about := Resolve(content.Record{Stem: "about", Language: "en"}, root, langs)
	assert.Equal(t, "/about", about.URL)
	assert.Equal(t, "about.html", about.OutputPath)
}

func TestFileFor(t *testing.T) {
	assert.Equal(t, "index.html", FileFor("/"))
	assert.Equal(t, "es/index.html", FileFor("/es/"))
	assert.Equal(t, "posts/index.html", FileFor("/posts/"))
	assert.Equal(t, "posts/page/2.html", FileFor("/posts/page/2"))
	assert.Equal(t, "docs/guides/setup.html", FileFor("/docs/guides/setup"))
}

func TestDistinctSlugsYieldDistinctURLs(t *testing.T) {
	coll := config.CollectionConfig{Name: "docs", URLPrefix: "/docs", Nested: true}
	seen := map[string]string{}
	for _, lang := range []string{"en", "es"} {
		for i := 0; i < 50; i++ {
			stem := fmt.Sprintf("s%d", i)
			if i%3 == 0 {
				stem = fmt.Sprintf("dir%d/s%d", i%5, i)
			}
			rec := Resolve(content.Record{Stem: stem, Language: lang}, coll, langs)
			key := lang + "|" + rec.Slug
			if prev, dup := seen[rec.URL]; dup {
				t.Fatalf("URL %s produced by %s and %s", rec.URL, prev, key)
			}
			seen[rec.URL] = key
		}
	}
}

func TestCheckCollisionsAcrossCollections(t *testing.T) {
	pages := config.CollectionConfig{Name: "pages", URLPrefix: ""}
	legal := config.CollectionConfig{Name: "legal", URLPrefix: ""}

	a := Resolve(content.Record{Stem: "about", Language: "en", SourcePath: "content/pages/about.md"}, pages, langs)
	b := Resolve(content.Record{Stem: "imprint", SlugOverride: "about", Language: "en", SourcePath: "content/legal/imprint.md"}, legal, langs)

	err := CheckCollisions([]content.Record{a, b}, nil)
	require.Error(t, err)
	var collision *SlugCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, "/about", collision.URL)
	assert.Equal(t, [2]string{"content/pages/about.md", "content/legal/imprint.md"}, collision.Paths)
}

func TestCheckCollisionsReservedFiles(t *testing.T) {
	pages := config.CollectionConfig{Name: "pages", URLPrefix: ""}
	rec := Resolve(content.Record{Stem: "index", Language: "en", SourcePath: "content/pages/index.md"}, pages, langs)

	err := CheckCollisions([]content.Record{rec}, map[string]string{"index.html": "home page"})
	var collision *SlugCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, [2]string{"home page", "content/pages/index.md"}, collision.Paths)
}

func TestCheckCollisionsComparesCleanedFiles(t *testing.T) {
	a := content.Record{SourcePath: "a.md", URL: "/x/../b", OutputPath: "x/../b.html", MirrorPath: "x/../b.md"}
	b := content.Record{SourcePath: "b.md", URL: "/b", OutputPath: "b.html", MirrorPath: "b.md"}
	err := CheckCollisions([]content.Record{a, b}, nil)
	var collision *SlugCollisionError
	require.ErrorAs(t, err, &collision)
	assert.Equal(t, [2]string{"a.md", "b.md"}, collision.Paths)

	err = CheckCollisions([]content.Record{b}, map[string]string{"./b.html": "generated"})
	require.ErrorAs(t, err, &collision)
}

func TestCheckCollisionsOK(t *testing.T) {
	posts := config.CollectionConfig{Name: "posts", URLPrefix: "/posts"}
	recs := []content.Record{
		Resolve(content.Record{Stem: "a", Language: "en"}, posts, langs),
		Resolve(content.Record{Stem: "a", Language: "es"}, posts, langs),
		Resolve(content.Record{Stem: "b", Language: "en"}, posts, langs),
	}
	require.NoError(t, CheckCollisions(recs, map[string]string{"index.html": "home page"}))
}

func TestAbsolute(t *testing.T) {
	assert.Equal(t, "https://example.com/posts/a", Absolute("https://example.com/", "/posts/a"))
	assert.Equal(t, "https://example.com/", Absolute("https://example.com/", "/"))
	assert.Equal(t, "/posts/a", Absolute("/", "/posts/a"))
	assert.Equal(t, "https://cdn.example/x.png", Absolute("https://example.com/", "https://cdn.example/x.png"))
}
