// Package i18n links language variants of the same content and computes the
// per-language UI string tables.
package i18n

import (
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
)

// Key identifies one logical page across languages.
type Key struct {
	Collection string
	Slug       string
}

// TranslationSet groups the language variants sharing one canonical slug.
// It is read-only once Link returns.
type TranslationSet struct {
	Collection string
	Slug       string
	URLs       map[string]string // language code -> URL
}

// Len returns the number of language variants.
func (s *TranslationSet) Len() int { return len(s.URLs) }

// MissingTranslationWarning reports a non-default-language record without a
// default-language counterpart. The record still builds on its own.
type MissingTranslationWarning struct {
	Path       string
	Collection string
	Slug       string
	Language   string
}

func (w MissingTranslationWarning) Error() string {
	return fmt.Sprintf("%s: no default-language counterpart for %s/%s (%s)", w.Path, w.Collection, w.Slug, w.Language)
}

// Link groups records by (collection, slug) ignoring language. The returned
// records are copies; members of multi-language groups carry the other
// members' alternates in language order.
func Link(records []content.Record, langs config.Languages) (map[Key]*TranslationSet, []content.Record, []MissingTranslationWarning) {
	sets := make(map[Key]*TranslationSet)
	for _, rec := range records {
		k := Key{Collection: rec.Collection, Slug: rec.Slug}
		set, ok := sets[k]
		if !ok {
			set = &TranslationSet{Collection: rec.Collection, Slug: rec.Slug, URLs: map[string]string{}}
			sets[k] = set
		}
		set.URLs[rec.Language] = rec.URL
	}

	codes := langs.Codes()
	out := make([]content.Record, len(records))
	var warnings []MissingTranslationWarning
	for i, rec := range records {
		set := sets[Key{Collection: rec.Collection, Slug: rec.Slug}]

		if !langs.IsDefault(rec.Language) {
			if _, ok := set.URLs[langs.Default()]; !ok {
				warnings = append(warnings, MissingTranslationWarning{
					Path:       rec.SourcePath,
					Collection: rec.Collection,
					Slug:       rec.Slug,
					Language:   rec.Language,
				})
			}
		}

		rec.Translations = nil
		if set.Len() > 1 {
			alts := make([]content.Alternate, 0, set.Len()-1)
			for _, code := range codes {
				if u, ok := set.URLs[code]; ok && code != rec.Language {
					alts = append(alts, content.Alternate{Language: code, URL: u})
				}
			}
			rec.Translations = alts
		}
		out[i] = rec
	}
	return sets, out, warnings
}
