package macro

import (
	"sort"
	"strings"
)

type tokenKind int

const (
	tokText tokenKind = iota
	tokInline
	tokOpen
	tokEnd
)

// token is a span of source text: plain text (including code) or one macro tag.
type token struct {
	kind       tokenKind
	start, end int
	name       string
	args       map[string]Value
	line       int
}

func (t token) invocation(kind InvocationKind, body *string, end int) Invocation {
	return Invocation{
		Name:  t.name,
		Args:  t.args,
		Body:  body,
		Kind:  kind,
		Start: t.start,
		End:   end,
		Line:  t.line,
	}
}

// scanner walks the source once, left to right. Fenced code blocks and inline
// code spans are consumed as text so no delimiter can open inside them.
type scanner struct {
	src       string
	path      string
	pos       int
	textStart int
	newlines  []int
	toks      []token
}

func tokenize(src, path string) ([]token, error) {
	s := &scanner{src: src, path: path}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			s.newlines = append(s.newlines, i)
		}
	}

	for s.pos < len(s.src) {
		if s.atLineStart() {
			if ch, n, ok := fenceOpen(s.src, s.pos); ok {
				s.skipFence(ch, n)
				continue
			}
		}

		switch c := s.src[s.pos]; {
		case c == '`':
			s.skipCodeSpan()
		case c == '{' && (strings.HasPrefix(s.src[s.pos:], "{{<") || strings.HasPrefix(s.src[s.pos:], "{{%")):
			if err := s.tag(); err != nil {
				return nil, err
			}
		default:
			s.pos++
		}
	}
	s.flushText(len(s.src))
	return s.toks, nil
}

// lineAt returns the 1-based line of a byte offset.
func (s *scanner) lineAt(off int) int {
	return sort.SearchInts(s.newlines, off) + 1
}

func (s *scanner) atLineStart() bool {
	return s.pos == 0 || s.src[s.pos-1] == '\n'
}

func (s *scanner) flushText(upTo int) {
	if upTo > s.textStart {
		s.toks = append(s.toks, token{kind: tokText, start: s.textStart, end: upTo, line: s.lineAt(s.textStart)})
	}
	s.textStart = upTo
}

// nextLine returns the offset of the line after the one containing off.
func (s *scanner) nextLine(off int) int {
	if i := strings.IndexByte(s.src[off:], '\n'); i >= 0 {
		return off + i + 1
	}
	return len(s.src)
}

// fenceOpen reports whether a code fence opens at offset i (a line start).
func fenceOpen(src string, i int) (byte, int, bool) {
	j := i
	for j < len(src) && j-i < 3 && src[j] == ' ' {
		j++
	}
	if j >= len(src) || (src[j] != '`' && src[j] != '~') {
		return 0, 0, false
	}
	ch := src[j]
	n := 0
	for j+n < len(src) && src[j+n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	if ch == '`' {
		rest := src[j+n:]
		if k := strings.IndexByte(rest, '\n'); k >= 0 {
			rest = rest[:k]
		}
		if strings.IndexByte(rest, '`') >= 0 {
			return 0, 0, false
		}
	}
	return ch, n, true
}

// fenceCloses reports whether the line at offset i closes a fence of ch with length n.
func fenceCloses(src string, i int, ch byte, n int) bool {
	j := i
	for j < len(src) && j-i < 3 && src[j] == ' ' {
		j++
	}
	run := 0
	for j < len(src) && src[j] == ch {
		run++
		j++
	}
	if run < n {
		return false
	}
	for j < len(src) && src[j] != '\n' {
		if src[j] != ' ' && src[j] != '\t' && src[j] != '\r' {
			return false
		}
		j++
	}
	return true
}

func (s *scanner) skipFence(ch byte, n int) {
	s.pos = s.nextLine(s.pos)
	for s.pos < len(s.src) {
		closes := fenceCloses(s.src, s.pos, ch, n)
		s.pos = s.nextLine(s.pos)
		if closes {
			return
		}
	}
}

// skipCodeSpan consumes a backtick run and, when a closing run of the same
// length exists before the paragraph ends, everything up to it.
func (s *scanner) skipCodeSpan() {
	n := 0
	for s.pos+n < len(s.src) && s.src[s.pos+n] == '`' {
		n++
	}
	k := s.pos + n
	for k < len(s.src) {
		switch s.src[k] {
		case '`':
			m := 0
			for k+m < len(s.src) && s.src[k+m] == '`' {
				m++
			}
			if m == n {
				s.pos = k + m
				return
			}
			k += m
		case '\n':
			if blankLineAt(s.src, k+1) {
				s.pos += n
				return
			}
			k++
		default:
			k++
		}
	}
	s.pos += n
}

func blankLineAt(src string, i int) bool {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\r':
			i++
		case '\n':
			return true
		default:
			return false
		}
	}
	return true
}

// tag parses one {{< ... >}} or {{% ... %}} tag at the current offset.
func (s *scanner) tag() error {
	start := s.pos
	line := s.lineAt(start)
	delim := s.src[start+2]
	closing := ">}}"
	if delim == '%' {
		closing = "%}}"
	}

	k := start + 3
	found := -1
	for k < len(s.src) {
		c := s.src[k]
		if c == '"' {
			k = skipQuoted(s.src, k)
			continue
		}
		if strings.HasPrefix(s.src[k:], closing) {
			found = k
			break
		}
		k++
	}
	if found < 0 {
		return &SyntaxError{SourcePath: s.path, Line: line, Msg: "unterminated tag, expected " + closing}
	}

	inner := strings.TrimSpace(s.src[start+3 : found])
	end := found + len(closing)
	tok := token{start: start, end: end, line: line}

	switch {
	case inner == "end" && delim == '%':
		tok.kind = tokEnd
		tok.name = "end"
	case inner == "end":
		return &SyntaxError{SourcePath: s.path, Line: line, Msg: "end tag must be written as {{% end %}}"}
	default:
		name, args, msg := parseInvocation(inner)
		if msg != "" {
			return &SyntaxError{SourcePath: s.path, Line: line, Msg: msg}
		}
		tok.name = name
		tok.args = args
		tok.kind = tokInline
		if delim == '%' {
			tok.kind = tokOpen
		}
	}

	s.flushText(start)
	s.toks = append(s.toks, tok)
	s.pos = end
	s.textStart = end
	return nil
}

// skipQuoted returns the offset after the string literal starting at i.
func skipQuoted(src string, i int) int {
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return len(src)
}
