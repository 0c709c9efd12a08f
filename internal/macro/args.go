package macro

import (
	"fmt"
	"strconv"
	"strings"
)

type argParser struct {
	s string
	i int
}

func (p *argParser) eof() bool { return p.i >= len(p.s) }

func (p *argParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.s[p.i]
}

func (p *argParser) skipSpace() {
	for !p.eof() {
		switch p.s[p.i] {
		case ' ', '\t', '\n', '\r':
			p.i++
		default:
			return
		}
	}
}

func identStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func identPart(c byte) bool {
	return identStart(c) || c == '-' || (c >= '0' && c <= '9')
}

func (p *argParser) ident() string {
	if p.eof() || !identStart(p.s[p.i]) {
		return ""
	}
	start := p.i
	for !p.eof() && identPart(p.s[p.i]) {
		p.i++
	}
	return p.s[start:p.i]
}

// parseInvocation parses `name` or `name(key=value, ...)`. A non-empty message
// describes the first syntax problem.
func parseInvocation(inner string) (string, map[string]Value, string) {
	p := &argParser{s: inner}
	p.skipSpace()
	name := p.ident()
	if name == "" {
		return "", nil, fmt.Sprintf("expected macro name in %q", inner)
	}
	p.skipSpace()

	args := map[string]Value{}
	if p.peek() == '(' {
		p.i++
		p.skipSpace()
		for p.peek() != ')' {
			key := p.ident()
			if key == "" {
				if p.eof() {
					return "", nil, "unterminated argument list, expected ')'"
				}
				return "", nil, fmt.Sprintf("expected argument name at %q", p.s[p.i:])
			}
			p.skipSpace()
			if p.peek() != '=' {
				return "", nil, fmt.Sprintf("expected '=' after %q (positional arguments are not supported)", key)
			}
			p.i++
			p.skipSpace()

			v, msg := p.value()
			if msg != "" {
				return "", nil, msg
			}
			if _, dup := args[key]; dup {
				return "", nil, fmt.Sprintf("duplicate argument %q", key)
			}
			args[key] = v

			p.skipSpace()
			switch p.peek() {
			case ',':
				p.i++
				p.skipSpace()
			case ')':
			default:
				if p.eof() {
					return "", nil, "unterminated argument list, expected ')'"
				}
				return "", nil, fmt.Sprintf("expected ',' or ')' after argument %q", key)
			}
		}
		p.i++
		p.skipSpace()
	}

	if !p.eof() {
		return "", nil, fmt.Sprintf("unexpected %q after macro %q", p.s[p.i:], name)
	}
	return name, args, ""
}

func (p *argParser) value() (Value, string) {
	if p.peek() == '"' {
		return p.quoted()
	}

	start := p.i
	for !p.eof() {
		c := p.s[p.i]
		if c == ',' || c == ')' || c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			break
		}
		p.i++
	}
	word := p.s[start:p.i]
	switch {
	case word == "":
		return Value{}, "expected argument value"
	case word == "true":
		return BoolValue(true), ""
	case word == "false":
		return BoolValue(false), ""
	case isNumeric(word):
		if i, err := strconv.ParseInt(word, 10, 64); err == nil {
			return IntValue(i), ""
		}
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return FloatValue(f), ""
		}
	}
	return Value{}, fmt.Sprintf("invalid value %q (strings must be double-quoted)", word)
}

func isNumeric(word string) bool {
	if !strings.ContainsAny(word, "0123456789") {
		return false
	}
	for i := 0; i < len(word); i++ {
		c := word[i]
		if !(c >= '0' && c <= '9') && c != '.' && c != '-' && c != '+' && c != 'e' && c != 'E' {
			return false
		}
	}
	return true
}

func (p *argParser) quoted() (Value, string) {
	p.i++ // opening quote
	var b strings.Builder
	for !p.eof() {
		c := p.s[p.i]
		switch c {
		case '"':
			p.i++
			return StringValue(b.String()), ""
		case '\\':
			if p.i+1 >= len(p.s) {
				return Value{}, "unterminated string"
			}
			next := p.s[p.i+1]
			if next != '"' && next != '\\' {
				return Value{}, fmt.Sprintf("invalid escape \\%c in string", next)
			}
			b.WriteByte(next)
			p.i += 2
		default:
			b.WriteByte(c)
			p.i++
		}
	}
	return Value{}, "unterminated string"
}
