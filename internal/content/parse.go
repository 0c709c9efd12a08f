package content

import (
	"fmt"
	"math"
	"path"
	"strings"
	"time"

	"github.com/inful/mdfp"
	"github.com/pelletier/go-toml/v2"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

// Source locates one content file.
type Source struct {
	Path    string // as reported in errors and logs
	RelPath string // slash-separated, relative to the collection directory
}

// known front-matter keys; everything else lands in Record.Extra.
var known = map[string]bool{
	"title": true, "date": true, "updated": true, "description": true, "image": true,
	"slug": true, "tags": true, "draft": true, "template": true, "robots": true,
	"weight": true, mdfp.FingerprintField: true,
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Parse turns one content file into a Record. It validates required fields
// for the target collection and derives the language from the filename.
func Parse(data []byte, src Source, coll config.CollectionConfig, langs config.Languages) (Record, error) {
	fm, body, format, style, err := frontmatter.Split(data)
	if err != nil {
		return Record{}, &FrontmatterError{Path: src.Path, Reason: err.Error()}
	}
	if format == frontmatter.FormatNone {
		return Record{}, &FrontmatterError{Path: src.Path, Field: "title", Reason: "file has no front matter block"}
	}

	fields, err := frontmatter.Parse(fm, format)
	if err != nil {
		return Record{}, &FrontmatterError{Path: src.Path, Reason: fmt.Sprintf("invalid %s: %v", format, err)}
	}

	rec := Record{
		RawBody:           string(body),
		FrontMatterRaw:    fm,
		FrontMatterFormat: format,
		Style:             style,
		SourcePath:        src.Path,
		RelPath:           src.RelPath,
		Collection:        coll.Name,
		Tags:              []string{},
		Extra:             map[string]any{},
		Fingerprint:       mdfp.CalculateFingerprintFromParts(strings.TrimSuffix(string(fm), "\n"), string(body)),
	}

	d := decoder{path: src.Path, fields: fields}
	rec.Title = d.str("title")
	rec.Description = d.str("description")
	rec.Image = d.str("image")
	rawSlug := d.str("slug")
	rec.Template = d.str("template")
	rec.Robots = d.str("robots")
	rec.Draft = d.boolean("draft")
	rec.Tags = d.strings("tags")
	rec.Weight = d.integer("weight")
	rec.Date = d.date("date")
	rec.Updated = d.date("updated")
	if d.err != nil {
		return Record{}, d.err
	}

	if rawSlug != "" {
		slug, reason := cleanSlug(rawSlug)
		if reason != "" {
			return Record{}, &FrontmatterError{Path: src.Path, Field: "slug", Reason: reason}
		}
		rec.SlugOverride = slug
	}

	if strings.TrimSpace(rec.Title) == "" {
		return Record{}, &FrontmatterError{Path: src.Path, Field: "title", Reason: "is required"}
	}
	if coll.HasDate() && rec.Date.IsZero() {
		return Record{}, &FrontmatterError{
			Path:   src.Path,
			Field:  "date",
			Reason: fmt.Sprintf("is required in date-ordered collection %q", coll.Name),
		}
	}

	for k, v := range fields {
		if !known[k] {
			rec.Extra[k] = v
		}
	}

	dir, name := path.Split(src.RelPath)
	base, lang, ignored := DetectLanguage(name, langs)
	rec.Stem = dir + base
	rec.Language = lang
	rec.IgnoredSuffix = ignored
	return rec, nil
}

// cleanSlug normalizes a slug override to a clean relative path. The reason
// is non-empty when the slug cannot stay inside its collection.
func cleanSlug(raw string) (string, string) {
	slug := path.Clean("/" + strings.TrimSpace(raw))
	slug = strings.Trim(slug, "/")
	if slug == "" || slug == "." {
		return "", "must name a page"
	}
	for _, seg := range strings.Split(strings.TrimSpace(raw), "/") {
		if seg == ".." {
			return "", "must not contain .. segments"
		}
	}
	return slug, ""
}

// decoder extracts typed fields, keeping the first type error.
type decoder struct {
	path   string
	fields map[string]any
	err    error
}

func (d *decoder) fail(field, reason string) {
	if d.err == nil {
		d.err = &FrontmatterError{Path: d.path, Field: field, Reason: reason}
	}
}

func (d *decoder) str(key string) string {
	v, ok := d.fields[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case int, int64, float64:
		return fmt.Sprint(s)
	default:
		d.fail(key, fmt.Sprintf("must be a string, got %T", v))
		return ""
	}
}

func (d *decoder) boolean(key string) bool {
	v, ok := d.fields[key]
	if !ok || v == nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(key, fmt.Sprintf("must be true or false, got %T", v))
	}
	return b
}

func (d *decoder) strings(key string) []string {
	v, ok := d.fields[key]
	if !ok || v == nil {
		return []string{}
	}
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return append([]string{}, t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				d.fail(key, fmt.Sprintf("entries must be strings, got %T", item))
				return []string{}
			}
			out = append(out, s)
		}
		return out
	default:
		d.fail(key, fmt.Sprintf("must be a list of strings, got %T", v))
		return []string{}
	}
}

func (d *decoder) integer(key string) *int {
	v, ok := d.fields[key]
	if !ok || v == nil {
		return nil
	}
	var n int
	switch t := v.(type) {
	case int:
		n = t
	case int64:
		n = int(t)
	case uint64:
		n = int(t)
	case float64:
		if t != math.Trunc(t) {
			d.fail(key, "must be a whole number")
			return nil
		}
		n = int(t)
	default:
		d.fail(key, fmt.Sprintf("must be an integer, got %T", v))
		return nil
	}
	return &n
}

func (d *decoder) date(key string) time.Time {
	v, ok := d.fields[key]
	if !ok || v == nil {
		return time.Time{}
	}
	t, err := AsTime(v)
	if err != nil {
		d.fail(key, err.Error())
	}
	return t
}

// AsTime converts a decoded front-matter value into a time.
func AsTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case toml.LocalDate:
		return t.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return t.AsTime(time.UTC), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q (use YYYY-MM-DD or RFC 3339)", t)
	default:
		return time.Time{}, fmt.Errorf("must be a date, got %T", v)
	}
}
