// Package render executes page, list and home templates against resolved
// content. The default engine uses html/template with embedded fallbacks that
// project templates override by name.
package render

import (
	"bytes"
	"embed"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

//go:embed defaults/*.html
var defaultsFS embed.FS

// Engine renders a named template. Implementations must be safe for concurrent use.
type Engine interface {
	Render(name string, data any) ([]byte, error)
	Has(name string) bool
}

// ErrTemplateNotFound is wrapped by Error when no template has the requested name.
var ErrTemplateNotFound = stderrors.New("template not found")

// Error reports a template failure for one output.
type Error struct {
	Template string
	Path     string // source record, when the output belongs to one
	Err      error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("render %s with %s: %v", e.Path, e.Template, e.Err)
	}
	return fmt.Sprintf("render %s: %v", e.Template, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// HTMLEngine is the html/template Engine.
type HTMLEngine struct {
	set *template.Template
	// overridden lists the template names supplied by the project.
	overridden []string
}

// NewHTMLEngine parses the embedded defaults and then every .html file under
// dir, named by slash-separated path relative to dir. A missing dir is not an error.
func NewHTMLEngine(dir string) (*HTMLEngine, error) {
	set := template.New("").Funcs(Funcs())

	entries, err := fs.ReadDir(defaultsFS, "defaults")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		src, err := fs.ReadFile(defaultsFS, "defaults/"+e.Name())
		if err != nil {
			return nil, err
		}
		if _, err := set.New(e.Name()).Parse(string(src)); err != nil {
			return nil, fmt.Errorf("parse default template %s: %w", e.Name(), err)
		}
	}

	eng := &HTMLEngine{set: set}
	if dir == "" {
		return eng, nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return eng, nil
	}

	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".html" {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		src, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		if _, err := set.New(name).Parse(string(src)); err != nil {
			return fmt.Errorf("parse template %s: %w", p, err)
		}
		eng.overridden = append(eng.overridden, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(eng.overridden)
	return eng, nil
}

// Has reports whether a template exists.
func (e *HTMLEngine) Has(name string) bool {
	return e.set.Lookup(name) != nil
}

// Overridden returns the project-supplied template names.
func (e *HTMLEngine) Overridden() []string {
	return append([]string(nil), e.overridden...)
}

// Render implements Engine.
func (e *HTMLEngine) Render(name string, data any) ([]byte, error) {
	t := e.set.Lookup(name)
	if t == nil {
		return nil, &Error{Template: name, Err: ErrTemplateNotFound}
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return nil, &Error{Template: name, Err: err}
	}
	return buf.Bytes(), nil
}

// Funcs returns the helper functions available to templates.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"date": func(layout string, t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format(layout)
		},
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s) //nolint:gosec // author content rendered by the site's own renderer
		},
		"join":  strings.Join,
		"lower": strings.ToLower,
		"upper": strings.ToUpper,
	}
}
