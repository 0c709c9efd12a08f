package config

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Languages is the site language configuration passed explicitly to the
// parser and resolver. The zero value knows no languages.
type Languages struct {
	def   string
	byKey map[string]LanguageConfig
	order []string
}

// NewLanguages builds a Languages value. The default language is always configured.
func NewLanguages(defaultLang string, langs map[string]LanguageConfig) Languages {
	byKey := make(map[string]LanguageConfig, len(langs)+1)
	for code, lc := range langs {
		byKey[code] = lc
	}
	if _, ok := byKey[defaultLang]; !ok {
		byKey[defaultLang] = LanguageConfig{}
	}

	order := make([]string, 0, len(byKey))
	for code := range byKey {
		if code != defaultLang {
			order = append(order, code)
		}
	}
	sort.Slice(order, func(i, j int) bool {
		wi, wj := byKey[order[i]].Weight, byKey[order[j]].Weight
		if wi != wj {
			return wi < wj
		}
		return order[i] < order[j]
	})

	return Languages{
		def:   defaultLang,
		byKey: byKey,
		order: append([]string{defaultLang}, order...),
	}
}

// Langs returns the configured languages as a value.
func (c *Config) Langs() Languages {
	return NewLanguages(c.DefaultLanguage, c.Languages)
}

// Default returns the default language code.
func (l Languages) Default() string { return l.def }

// IsDefault reports whether code is the default language.
func (l Languages) IsDefault(code string) bool { return code == l.def }

// IsConfigured reports whether code names a configured language.
func (l Languages) IsConfigured(code string) bool {
	_, ok := l.byKey[code]
	return ok
}

// Codes returns the default language first, then the rest by weight and code.
func (l Languages) Codes() []string {
	return append([]string(nil), l.order...)
}

// Prefix returns the URL prefix for code: empty for the default language, /{code} otherwise.
func (l Languages) Prefix(code string) string {
	if code == "" || code == l.def {
		return ""
	}
	return "/" + code
}

// Get returns the language configuration for code.
func (l Languages) Get(code string) (LanguageConfig, bool) {
	lc, ok := l.byKey[code]
	return lc, ok
}

// Name returns the display name of a language, in that language.
func (l Languages) Name(code string) string {
	if lc, ok := l.byKey[code]; ok && lc.Name != "" {
		return lc.Name
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}
