package analyze

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var stripPolicy = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// PlainText strips all markup from an HTML fragment and collapses whitespace.
func PlainText(fragment string) string {
	return strings.Join(strings.Fields(html.UnescapeString(stripPolicy.Sanitize(fragment))), " ")
}

// Summary returns PlainText cut to at most limit runes on a word boundary.
func Summary(fragment string, limit int) string {
	text := PlainText(fragment)
	r := []rune(text)
	if limit <= 0 || len(r) <= limit {
		return text
	}
	cut := string(r[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return cut + "…"
}
