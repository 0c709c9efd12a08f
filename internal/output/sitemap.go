package output

import (
	"encoding/xml"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// SitemapEntry is one <url> element. Loc and alternate URLs are site-relative.
type SitemapEntry struct {
	Loc        string
	LastMod    time.Time
	Alternates []content.Alternate
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string      `xml:"loc"`
	LastMod string      `xml:"lastmod,omitempty"`
	Links   []xhtmlLink `xml:"xhtml:link"`
}

type xhtmlLink struct {
	Rel      string `xml:"rel,attr"`
	Hreflang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Indexable reports whether a record may appear in the sitemap.
func Indexable(r *content.Record) bool {
	for _, d := range strings.Split(r.Robots, ",") {
		if strings.EqualFold(strings.TrimSpace(d), "noindex") {
			return false
		}
	}
	return true
}

// RecordEntry builds the sitemap entry of a record. The record's own language
// is listed among the alternates whenever it has translations.
func RecordEntry(r *content.Record) SitemapEntry {
	e := SitemapEntry{Loc: r.URL, LastMod: r.LastModified()}
	if len(r.Translations) > 0 {
		e.Alternates = append([]content.Alternate{{Language: r.Language, URL: r.URL}}, r.Translations...)
	}
	return e
}

// Sitemap renders a sitemap with hreflang alternates.
func Sitemap(baseURL string, entries []SitemapEntry) ([]byte, error) {
	set := urlSet{
		NS:    "http://www.sitemaps.org/schemas/sitemap/0.9",
		XHTML: "http://www.w3.org/1999/xhtml",
		URLs:  make([]sitemapURL, 0, len(entries)),
	}
	for _, e := range entries {
		u := sitemapURL{Loc: paths.Absolute(baseURL, e.Loc)}
		if !e.LastMod.IsZero() {
			u.LastMod = e.LastMod.UTC().Format("2006-01-02")
		}
		for _, a := range e.Alternates {
			u.Links = append(u.Links, xhtmlLink{
				Rel:      "alternate",
				Hreflang: a.Language,
				Href:     paths.Absolute(baseURL, a.URL),
			})
		}
		set.URLs = append(set.URLs, u)
	}
	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}
