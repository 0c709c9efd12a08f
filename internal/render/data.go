package render

import (
	"html/template"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/collection"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/i18n"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// Default template names.
const (
	PageTemplate = "page.html"
	ListTemplate = "list.html"
	HomeTemplate = "home.html"
)

// LanguageInfo describes one configured language to templates.
type LanguageInfo struct {
	Code    string
	Name    string
	Prefix  string
	HomeURL string
	Default bool
}

// Site is the per-language site context shared by every template.
type Site struct {
	Title       string
	BaseURL     string
	Description string
	Language    LanguageInfo
	Languages   []LanguageInfo
	Params      map[string]any
	Data        map[string]any
	BuildTime   time.Time
	Strings     i18n.Strings

	names map[string]string
}

// NewSite builds the context for lang. A language-level title overrides the
// site title.
func NewSite(cfg *config.Config, lang string, strs i18n.Strings, data map[string]any, now time.Time) *Site {
	langs := cfg.Langs()
	s := &Site{
		Title:       cfg.Title,
		BaseURL:     cfg.BaseURL,
		Description: cfg.Description,
		Params:      cfg.Params,
		Data:        data,
		BuildTime:   now,
		Strings:     strs,
		names:       make(map[string]string),
	}
	for _, code := range langs.Codes() {
		info := LanguageInfo{
			Code:    code,
			Name:    langs.Name(code),
			Prefix:  langs.Prefix(code),
			HomeURL: langs.Prefix(code) + "/",
			Default: langs.IsDefault(code),
		}
		s.names[code] = info.Name
		s.Languages = append(s.Languages, info)
		if code == lang {
			s.Language = info
		}
	}
	if lc, ok := langs.Get(lang); ok && lc.Title != "" {
		s.Title = lc.Title
	}
	return s
}

// T returns the UI string for key in the site language.
func (s *Site) T(key string) string { return s.Strings.T(key) }

// AbsURL resolves a site-relative URL against the base URL.
func (s *Site) AbsURL(url string) string { return paths.Absolute(s.BaseURL, url) }

// LanguageName returns the display name of a language code.
func (s *Site) LanguageName(code string) string {
	if n, ok := s.names[code]; ok {
		return n
	}
	return code
}

// PageData is the context of a single record page.
type PageData struct {
	Site    *Site
	Page    *content.Record
	Content template.HTML
}

// ListData is the context of one collection index page.
type ListData struct {
	Site    *Site
	Title   string
	URL     string
	Feed    string
	View    collection.View
	Pager   *collection.Page
	Records []*content.Record
}

// Section is one collection summary on the home page.
type Section struct {
	Name    string
	URL     string
	Records []*content.Record
}

// HomeData is the context of a language home page.
type HomeData struct {
	Site     *Site
	Sections []Section
}

// NewPageData wraps a record for its page template.
func NewPageData(site *Site, rec *content.Record) PageData {
	return PageData{
		Site:    site,
		Page:    rec,
		Content: template.HTML(rec.RenderedHTML), //nolint:gosec // produced by the markdown renderer
	}
}
