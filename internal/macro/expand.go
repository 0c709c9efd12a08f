package macro

import (
	"strings"
)

// Expand replaces every macro in raw with its rendered output. Inline output
// is spliced verbatim and never scanned again. sourcePath only labels errors.
func Expand(raw string, reg *Registry, sourcePath string) (string, error) {
	toks, err := tokenize(raw, sourcePath)
	if err != nil {
		return "", err
	}
	e := &expander{src: raw, path: sourcePath, reg: reg, toks: toks}
	return e.sequence(nil)
}

// scan parses raw and returns its top-level macro invocations without
// rendering anything.
func scan(raw string) ([]Invocation, error) {
	toks, err := tokenize(raw, "")
	if err != nil {
		return nil, err
	}
	var out []Invocation
	var stack []token
	for _, t := range toks {
		switch t.kind {
		case tokText:
		case tokInline:
			if len(stack) == 0 {
				out = append(out, t.invocation(Inline, nil, t.end))
			}
		case tokOpen:
			stack = append(stack, t)
		case tokEnd:
			if len(stack) == 0 {
				return nil, &SyntaxError{Line: t.line, Msg: "{{% end %}} without an open body macro"}
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				body := raw[open.end:t.start]
				out = append(out, open.invocation(Body, &body, t.end))
			}
		}
	}
	if len(stack) > 0 {
		open := stack[len(stack)-1]
		return nil, &UnclosedBodyError{Name: open.name, Line: open.line}
	}
	return out, nil
}

type expander struct {
	src  string
	path string
	reg  *Registry
	toks []token
	i    int
}

// sequence expands tokens until EOF, or until the end tag matching open.
func (e *expander) sequence(open *token) (string, error) {
	var b strings.Builder
	for e.i < len(e.toks) {
		t := e.toks[e.i]
		e.i++

		switch t.kind {
		case tokText:
			b.WriteString(e.src[t.start:t.end])

		case tokInline:
			def, err := e.lookup(t)
			if err != nil {
				return "", err
			}
			out, err := e.render(def, t.invocation(Inline, nil, t.end), "")
			if err != nil {
				return "", err
			}
			b.WriteString(out)

		case tokOpen:
			def, err := e.lookup(t)
			if err != nil {
				return "", err
			}
			expanded, err := e.sequence(&t)
			if err != nil {
				return "", err
			}
			endTok := e.toks[e.i-1]
			raw := e.src[t.end:endTok.start]
			out, err := e.render(def, t.invocation(Body, &raw, endTok.end), expanded)
			if err != nil {
				return "", err
			}
			b.WriteString(out)

		case tokEnd:
			if open == nil {
				return "", &SyntaxError{SourcePath: e.path, Line: t.line, Msg: "{{% end %}} without an open body macro"}
			}
			return b.String(), nil
		}
	}

	if open != nil {
		return "", &UnclosedBodyError{Name: open.name, SourcePath: e.path, Line: open.line}
	}
	return b.String(), nil
}

func (e *expander) lookup(t token) (Definition, error) {
	if e.reg != nil {
		if def, ok := e.reg.Lookup(t.name); ok {
			return def, nil
		}
	}
	var names []string
	if e.reg != nil {
		names = e.reg.Names()
	}
	return Definition{}, &UnknownMacroError{
		Name:        t.name,
		Available:   names,
		Suggestions: suggest(t.name, names),
		SourcePath:  e.path,
		Line:        t.line,
	}
}

func (e *expander) render(def Definition, inv Invocation, expandedBody string) (string, error) {
	args := make(map[string]any, len(inv.Args))
	for k, v := range inv.Args {
		args[k] = v.Any()
	}
	ctx := Context{
		Name:       inv.Name,
		Args:       args,
		IsBody:     inv.Kind == Body,
		SourcePath: e.path,
		Line:       inv.Line,
	}
	if inv.Body != nil {
		ctx.RawBody = *inv.Body
		ctx.Body = expandedBody
	}

	out, err := def.Render(ctx)
	if err != nil {
		return "", &TemplateError{Name: inv.Name, SourcePath: e.path, Line: inv.Line, Err: err}
	}
	return out, nil
}
