// Package paths derives slugs, URLs and output file paths for content records
// and checks them for collisions across the whole site.
package paths

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
)

var datePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-`)

// Slug returns the canonical, language-independent slug of a record. The
// result is a cleaned relative path; overrides are validated by content.Parse.
func Slug(rec content.Record, coll config.CollectionConfig) string {
	if rec.SlugOverride != "" {
		return strings.TrimPrefix(path.Clean("/"+rec.SlugOverride), "/")
	}
	dir, base := path.Split(rec.Stem)
	if coll.HasDate() {
		if stripped := datePrefix.ReplaceAllString(base, ""); stripped != "" {
			base = stripped
		}
	}
	if coll.Nested && dir != "" {
		return dir + base
	}
	return base
}

// Resolve returns rec with slug, URL and output paths filled in.
func Resolve(rec content.Record, coll config.CollectionConfig, langs config.Languages) content.Record {
	rec.Slug = Slug(rec, coll)
	rec.URL = langs.Prefix(rec.Language) + coll.URLPrefix + "/" + rec.Slug
	rec.OutputPath = FileFor(rec.URL)
	rec.MirrorPath = strings.TrimSuffix(rec.OutputPath, ".html") + ".md"
	return rec
}

// FileFor maps a site URL to its file path relative to the output directory.
// URLs ending in a slash map to index.html.
func FileFor(url string) string {
	p := strings.TrimPrefix(url, "/")
	if p == "" || strings.HasSuffix(p, "/") {
		return p + "index.html"
	}
	return p + ".html"
}

// SlugCollisionError reports two sources resolving to the same URL or file.
type SlugCollisionError struct {
	URL   string
	Paths [2]string
}

func (e *SlugCollisionError) Error() string {
	return fmt.Sprintf("URL %q is produced by both %s and %s", e.URL, e.Paths[0], e.Paths[1])
}

// CheckCollisions verifies that every record URL and output file is unique
// across all collections and languages. reserved maps output files generated
// by the build itself (home page, list pages) to a description used in errors.
// Records are checked in slice order, so the first collision found is stable.
func CheckCollisions(records []content.Record, reserved map[string]string) error {
	byURL := make(map[string]string, len(records))
	byFile := make(map[string]string, len(records)*2+len(reserved))
	for file, what := range reserved {
		byFile[path.Clean(file)] = what
	}

	for _, rec := range records {
		if prev, ok := byURL[rec.URL]; ok {
			return &SlugCollisionError{URL: rec.URL, Paths: [2]string{prev, rec.SourcePath}}
		}
		byURL[rec.URL] = rec.SourcePath

		for _, file := range []string{rec.OutputPath, rec.MirrorPath} {
			file = path.Clean(file)
			if prev, ok := byFile[file]; ok {
				return &SlugCollisionError{URL: rec.URL, Paths: [2]string{prev, rec.SourcePath}}
			}
			byFile[file] = rec.SourcePath
		}
	}
	return nil
}

// Absolute joins a site-relative URL onto base. A relative base ("/") keeps
// the URL site-relative.
func Absolute(base, url string) string {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(url, "/")
}
