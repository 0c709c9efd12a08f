package i18n

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/config"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// fallbackLanguage supplies keys when the site language has no built-in table.
const fallbackLanguage = "en"

// Strings is the effective UI string table of one language.
type Strings map[string]string

// T returns the string for key, or key itself when undefined.
func (s Strings) T(key string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return key
}

// Table holds the merged string tables of every configured language.
type Table struct {
	byLang map[string]Strings
}

// For returns the table of a language. Unknown languages get the default table.
func (t *Table) For(lang string) Strings {
	if s, ok := t.byLang[lang]; ok {
		return s
	}
	return t.byLang[""]
}

// Builtin returns the embedded defaults for a language, or nil.
func Builtin(lang string) (Strings, error) {
	data, err := builtinFS.ReadFile("builtin/" + lang + ".yaml")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Strings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("built-in strings %s: %w", lang, err)
	}
	return s, nil
}

// LoadStrings builds the table for every configured language. Each language
// layers the project file {dir}/{lang}.yaml over its built-in defaults; keys
// neither defines come from the default language's built-in defaults.
func LoadStrings(dir string, langs config.Languages) (*Table, error) {
	base, err := Builtin(fallbackLanguage)
	if err != nil {
		return nil, err
	}
	if def, err := Builtin(langs.Default()); err != nil {
		return nil, err
	} else if def != nil {
		base = merge(base, def)
	}

	t := &Table{byLang: map[string]Strings{}}
	for _, code := range langs.Codes() {
		own, err := Builtin(code)
		if err != nil {
			return nil, err
		}
		project, err := loadProject(dir, code)
		if err != nil {
			return nil, err
		}
		t.byLang[code] = merge(base, own, project)
	}
	t.byLang[""] = t.byLang[langs.Default()]
	return t, nil
}

func loadProject(dir, lang string) (Strings, error) {
	if dir == "" {
		return nil, nil
	}
	for _, ext := range []string{".yaml", ".yml"} {
		p := filepath.Join(dir, lang+ext)
		data, err := os.ReadFile(p)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read strings %s: %w", p, err)
		}
		var s Strings
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parse strings %s: %w", p, err)
		}
		return s, nil
	}
	return nil, nil
}

func merge(layers ...Strings) Strings {
	out := Strings{}
	for _, l := range layers {
		for k, v := range l {
			out[k] = v
		}
	}
	return out
}
