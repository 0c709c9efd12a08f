package content

import (
	"path"
	"strings"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

// DetectLanguage splits a filename of the form {base}.{lang}.{ext}. The suffix
// counts as a language marker only when it names a configured language;
// otherwise it stays part of base and is returned as ignored when it parses
// as a language tag, so callers can warn about a likely typo.
func DetectLanguage(name string, langs config.Languages) (base, lang, ignored string) {
	stem := strings.TrimSuffix(name, path.Ext(name))
	suffix := path.Ext(stem)
	if suffix == "" {
		return stem, langs.Default(), ""
	}

	code := suffix[1:]
	if langs.IsConfigured(code) {
		return strings.TrimSuffix(stem, suffix), code, ""
	}
	if looksLikeLanguage(code) {
		return stem, langs.Default(), code
	}
	return stem, langs.Default(), ""
}

// looksLikeLanguage accepts a 2-3 letter primary subtag, optionally followed
// by more subtags, that parses as a BCP 47 tag.
func looksLikeLanguage(code string) bool {
	primary, _, _ := strings.Cut(code, "-")
	if len(primary) < 2 || len(primary) > 3 {
		return false
	}
	for i := 0; i < len(primary); i++ {
		c := primary[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	_, err := language.Parse(code)
	return err == nil
}
