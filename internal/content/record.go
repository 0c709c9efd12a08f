package content

import (
	"time"

	"git.home.luguber.info/inful/sitegen/internal/analyze"
	"git.home.luguber.info/inful/sitegen/internal/frontmatter"
)

// Alternate is one language variant of a record.
type Alternate struct {
	Language string
	URL      string
}

// Record is one content file after parsing. Each pipeline step returns a new
// Record value instead of mutating shared state.
type Record struct {
	// Front matter.
	Title        string
	Date         time.Time
	Updated      time.Time
	Description  string
	Image        string
	SlugOverride string
	Tags         []string
	Draft        bool
	Template     string
	Robots       string
	Weight       *int
	Extra        map[string]any

	// RawBody is the body exactly as authored, before macro expansion.
	RawBody           string
	FrontMatterRaw    []byte
	FrontMatterFormat frontmatter.Format
	Style             frontmatter.Style
	Fingerprint       string

	// Source location.
	SourcePath string
	RelPath    string // slash-separated, relative to the collection directory
	Stem       string // RelPath without extension and language suffix
	Collection string
	Language   string
	// IgnoredSuffix is a language-like filename suffix that matched no configured
	// language and therefore stayed part of the stem.
	IgnoredSuffix string

	// Resolved paths.
	Slug       string
	URL        string
	OutputPath string
	MirrorPath string

	// Rendering and analysis.
	RenderedHTML string
	WordCount    int
	ReadingTime  int
	ExcerptHTML  string
	TOC          []analyze.TOCEntry

	Translations []Alternate
}

// HasDate reports whether the record carries a date.
func (r Record) HasDate() bool { return !r.Date.IsZero() }

// Mirror reassembles the original source: front matter and the unexpanded body.
func (r Record) Mirror() []byte {
	return frontmatter.Join(r.FrontMatterRaw, []byte(r.RawBody), r.FrontMatterFormat, r.Style)
}

// LastModified returns Updated when set, else Date.
func (r Record) LastModified() time.Time {
	if !r.Updated.IsZero() {
		return r.Updated
	}
	return r.Date
}

// Dir returns the slash-separated directory of the record within its collection.
func (r Record) Dir() string {
	for i := len(r.RelPath) - 1; i >= 0; i-- {
		if r.RelPath[i] == '/' {
			return r.RelPath[:i]
		}
	}
	return ""
}
