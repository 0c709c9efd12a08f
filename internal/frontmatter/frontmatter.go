package frontmatter

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the front-matter syntax of a document.
type Format string

const (
	FormatNone Format = ""
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Delimiter returns the fence line used by the format.
func (f Format) Delimiter() string {
	switch f {
	case FormatYAML:
		return "---"
	case FormatTOML:
		return "+++"
	default:
		return ""
	}
}

// Style captures formatting details needed for stable rewriting.
//
// It intentionally focuses on newline/trailing newline shape and does not
// attempt to preserve original YAML formatting.
type Style struct {
	Newline            string
	HasTrailingNewline bool
}

// Split separates front matter (`---` YAML or `+++` TOML delimited) from the Markdown body.
//
// If the document does not start with a front-matter delimiter, format is
// FormatNone and body is the full input.
func Split(content []byte) (frontmatter []byte, body []byte, format Format, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	for _, f := range []Format{FormatYAML, FormatTOML} {
		delim := f.Delimiter()
		open := []byte(delim + nl)
		if !bytes.HasPrefix(content, open) {
			continue
		}

		start := len(open)
		rest := content[start:]
		if bytes.HasPrefix(rest, open) {
			return []byte{}, rest[len(open):], f, style, nil
		}
		if bytes.Equal(rest, []byte(delim)) {
			return []byte{}, []byte{}, f, style, nil
		}

		closeSeq := []byte(nl + delim + nl)
		if idx := bytes.Index(rest, closeSeq); idx >= 0 {
			end := start + idx + len(nl)
			return content[start:end], content[start+idx+len(closeSeq):], f, style, nil
		}

		// Closing delimiter as the final line without a newline.
		tail := []byte(nl + delim)
		if bytes.HasSuffix(rest, tail) {
			end := len(content) - len(delim)
			return content[start:end], []byte{}, f, style, nil
		}
		return nil, nil, FormatNone, style, fmt.Errorf("%w (%s)", ErrMissingClosingDelimiter, delim)
	}

	return nil, content, FormatNone, style, nil
}

// Join reassembles a document from raw front matter and body.
//
// If format is FormatNone, Join returns body as-is. Otherwise the front matter
// is wrapped in the format's delimiters using the newline style captured in Style.
// Join(Split(x)) reproduces x byte-for-byte for well-formed input.
func Join(frontmatter []byte, body []byte, format Format, style Style) []byte {
	if format == FormatNone {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	open := []byte(format.Delimiter() + nl)
	closing := []byte(format.Delimiter() + nl)
	if len(body) == 0 && !style.HasTrailingNewline {
		// The closing delimiter was the last line of the document.
		closing = []byte(format.Delimiter())
	}

	out := make([]byte, 0, len(open)+len(frontmatter)+len(closing)+len(body))
	out = append(out, open...)
	out = append(out, frontmatter...)
	out = append(out, closing...)
	out = append(out, body...)
	return out
}

// Parse decodes raw front matter (without delimiters) into a map.
func Parse(frontmatter []byte, format Format) (map[string]any, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(frontmatter)
	case FormatTOML:
		return ParseTOML(frontmatter)
	default:
		return map[string]any{}, nil
	}
}

// ParseYAML parses raw YAML front matter into a map.
func ParseYAML(frontmatter []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ParseTOML parses raw TOML front matter into a map.
func ParseTOML(frontmatter []byte) (map[string]any, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(frontmatter)) == 0 {
		return fields, nil
	}
	if err := toml.Unmarshal(frontmatter, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// ErrMissingClosingDelimiter indicates the document started with a front-matter
// delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("front matter start delimiter found but closing delimiter is missing")

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}

	hasTrailingNewline := len(content) > 0 && (content[len(content)-1] == '\n')

	return Style{
		Newline:            newline,
		HasTrailingNewline: hasTrailingNewline,
	}
}
