package macro

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

//go:embed builtin/*.tmpl
var builtinFS embed.FS

// DefinitionKind records where a macro came from.
type DefinitionKind int

const (
	BuiltIn DefinitionKind = iota
	UserDefined
)

func (k DefinitionKind) String() string {
	if k == UserDefined {
		return "user"
	}
	return "builtin"
}

// Definition is one resolved macro.
type Definition struct {
	Name string
	Kind DefinitionKind
	// Path is the project file for user macros, the embedded name for built-ins.
	Path string
	tmpl *template.Template
}

// Context is the data a macro template executes against.
type Context struct {
	Name string
	Args map[string]any
	// Body is the inner text of a body macro with nested macros expanded.
	Body string
	// RawBody is the inner text exactly as authored.
	RawBody    string
	IsBody     bool
	SourcePath string
	Line       int
}

// Render executes the macro template.
func (d Definition) Render(ctx Context) (string, error) {
	var b strings.Builder
	if err := d.tmpl.Execute(&b, ctx); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Registry maps macro names to definitions. It is built once per build and
// only read afterwards, so concurrent Expand calls may share it.
type Registry struct {
	defs map[string]Definition
}

// templateExts lists the file extensions accepted for project macros.
var templateExts = map[string]bool{".html": true, ".tmpl": true, ".md": true}

// NewRegistry loads the built-in macros and then the project macros found in
// dir. A project macro replaces a built-in of the same name. A missing dir is
// not an error.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{defs: map[string]Definition{}}

	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		p := path.Join("builtin", e.Name())
		src, err := fs.ReadFile(builtinFS, p)
		if err != nil {
			return nil, err
		}
		if err := r.add(strings.TrimSuffix(e.Name(), ".tmpl"), BuiltIn, p, string(src)); err != nil {
			return nil, err
		}
	}

	if dir == "" {
		return r, nil
	}
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read macro dir: %w", err)
	}
	for _, f := range files {
		ext := filepath.Ext(f.Name())
		if f.IsDir() || !templateExts[ext] {
			continue
		}
		p := filepath.Join(dir, f.Name())
		src, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read macro %s: %w", p, err)
		}
		if err := r.add(strings.TrimSuffix(f.Name(), ext), UserDefined, p, string(src)); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) add(name string, kind DefinitionKind, p, src string) error {
	tmpl, err := template.New(name).Funcs(templateFuncs()).Option("missingkey=zero").Parse(src)
	if err != nil {
		return fmt.Errorf("parse macro %s: %w", p, err)
	}
	r.defs[name] = Definition{Name: name, Kind: kind, Path: p, tmpl: tmpl}
	return nil
}

// Lookup resolves a macro name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Names returns all macro names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered macros.
func (r *Registry) Len() int { return len(r.defs) }

func toString(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"default": func(def, v any) any {
			if v == nil {
				return def
			}
			if s, ok := v.(string); ok && s == "" {
				return def
			}
			return v
		},
		"required": func(name string, v any) (any, error) {
			if v == nil || toString(v) == "" {
				return nil, fmt.Errorf("argument %q is required", name)
			}
			return v, nil
		},
		"trim":  func(v any) string { return strings.TrimSpace(toString(v)) },
		"lower": func(v any) string { return strings.ToLower(toString(v)) },
		"upper": func(v any) string { return strings.ToUpper(toString(v)) },
		"split": func(v any, sep string) []string {
			parts := strings.Split(toString(v), sep)
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return parts
		},
	}
}
