package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	p := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	p := writeConfig(t, dir, `
title: Example
base_url: https://example.com
languages:
  es: {weight: 2}
collections:
  - name: posts
    sort_by: date
    paginate: 5
  - name: pages
    url_prefix: /
`)

	cfg, err := Load(p)
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/", cfg.BaseURL)
	assert.Equal(t, "en", cfg.DefaultLanguage)
	assert.Equal(t, dir, cfg.Root())
	assert.Equal(t, filepath.Join(dir, "public"), cfg.Resolve(cfg.Build.OutputDir))
	assert.Positive(t, cfg.Build.Concurrency)

	posts, ok := cfg.Collection("posts")
	require.True(t, ok)
	assert.Equal(t, "/posts", posts.URLPrefix)
	assert.Equal(t, "posts", posts.Dir)
	assert.True(t, posts.HasDate())
	assert.True(t, posts.HasIndex())
	assert.Equal(t, filepath.Join(dir, "content", "posts"), cfg.CollectionDir(posts))

	pages, ok := cfg.Collection("pages")
	require.True(t, ok)
	assert.Empty(t, pages.URLPrefix)
	assert.False(t, pages.HasIndex())
	assert.Equal(t, SortByTitle, pages.SortBy)
	assert.Equal(t, "page.html", pages.Template)
}

func TestLoadExpandsEnvFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SITEGEN_TEST_TITLE=From Env\n"), 0o600))
	t.Setenv("SITEGEN_TEST_TITLE", "")
	require.NoError(t, os.Unsetenv("SITEGEN_TEST_TITLE"))

	p := writeConfig(t, dir, `
title: ${SITEGEN_TEST_TITLE}
collections:
  - name: posts
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "From Env", cfg.Title)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		category errors.ErrorCategory
	}{
		{"missing title", "collections: [{name: posts}]\n", errors.CategoryConfig},
		{"no collections", "title: x\n", errors.CategoryConfig},
		{"unknown key", "title: x\ncolections: []\n", errors.CategoryConfig},
		{"bad sort", "title: x\ncollections: [{name: a, sort_by: size}]\n", errors.CategoryConfig},
		{"bad language", "title: x\nlanguages: {'not a tag!': {}}\ncollections: [{name: a}]\n", errors.CategoryConfig},
		{"duplicate collection", "title: x\ncollections: [{name: a}, {name: a}]\n", errors.CategoryConfig},
		{"root paginate", "title: x\ncollections: [{name: a, url_prefix: /, paginate: 2}]\n", errors.CategoryConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := writeConfig(t, t.TempDir(), tt.body)
			_, err := Load(p)
			require.Error(t, err)
			assert.Equal(t, tt.category, errors.GetCategory(err))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Equal(t, errors.CategoryNotFound, errors.GetCategory(err))
	})
}

func TestInitRoundTrips(t *testing.T) {
	p := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, Init(p, false))

	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "My Site", cfg.Title)
	assert.Len(t, cfg.Collections, 3)

	err = Init(p, false)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))
	require.NoError(t, Init(p, true))
}

func TestLanguages(t *testing.T) {
	langs := NewLanguages("en", map[string]LanguageConfig{
		"fr": {Weight: 2},
		"es": {Weight: 2, Name: "Castellano"},
		"de": {Weight: 1},
	})

	assert.Equal(t, []string{"en", "de", "es", "fr"}, langs.Codes())
	assert.True(t, langs.IsConfigured("en"))
	assert.False(t, langs.IsConfigured("it"))
	assert.Empty(t, langs.Prefix("en"))
	assert.Equal(t, "/es", langs.Prefix("es"))
	assert.Equal(t, "Castellano", langs.Name("es"))
	assert.Equal(t, "Deutsch", langs.Name("de"))
	assert.True(t, langs.IsDefault("en"))
}

func TestNormalizePrefix(t *testing.T) {
	assert.Empty(t, normalizePrefix("/"))
	assert.Equal(t, "/blog", normalizePrefix("blog/"))
	assert.Equal(t, "/docs/v1", normalizePrefix("/docs/v1/"))
}

func TestLoadBytesUsesRoot(t *testing.T) {
	cfg, err := LoadBytes([]byte("title: x\ncollections: [{name: docs, nested: true}]\n"), "/srv/site")
	require.NoError(t, err)
	assert.Equal(t, "/srv/site", cfg.Root())
	docs, ok := cfg.Collection("docs")
	require.True(t, ok)
	assert.True(t, docs.Nested)
}
