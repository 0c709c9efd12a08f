package macro

import (
	"fmt"
	"strings"
)

func location(path string, line int) string {
	if path == "" {
		return fmt.Sprintf("line %d", line)
	}
	return fmt.Sprintf("%s:%d", path, line)
}

// UnknownMacroError reports a macro name missing from the registry.
type UnknownMacroError struct {
	Name        string
	Available   []string
	Suggestions []string
	SourcePath  string
	Line        int
}

func (e *UnknownMacroError) Error() string {
	msg := fmt.Sprintf("unknown macro %q at %s", e.Name, location(e.SourcePath, e.Line))
	if len(e.Suggestions) > 0 {
		msg += " (did you mean: " + strings.Join(e.Suggestions, ", ") + "?)"
	}
	return msg
}

// UnclosedBodyError reports a body macro without a matching {{% end %}}.
type UnclosedBodyError struct {
	Name       string
	SourcePath string
	Line       int
}

func (e *UnclosedBodyError) Error() string {
	return fmt.Sprintf("body macro %q opened at %s is never closed with {{%% end %%}}", e.Name, location(e.SourcePath, e.Line))
}

// SyntaxError reports a malformed macro tag or argument list.
type SyntaxError struct {
	SourcePath string
	Line       int
	Msg        string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("macro syntax error at %s: %s", location(e.SourcePath, e.Line), e.Msg)
}

// TemplateError reports a failure while executing a macro's template.
type TemplateError struct {
	Name       string
	SourcePath string
	Line       int
	Err        error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("macro %q at %s: %v", e.Name, location(e.SourcePath, e.Line), e.Err)
}

func (e *TemplateError) Unwrap() error { return e.Err }
