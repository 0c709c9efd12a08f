// Package analyze derives word count, reading time, excerpt and table of
// contents from rendered HTML.
package analyze

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WordsPerMinute is the reading speed used for reading time.
const WordsPerMinute = 238

// TOCEntry is one heading in the table of contents.
type TOCEntry struct {
	ID    string
	Text  string
	Level int
}

// Result is the analysis of one HTML document.
type Result struct {
	WordCount   int
	ReadingTime int
	ExcerptHTML string
	TOC         []TOCEntry
	// HTML is the input with heading ids injected so TOC anchors resolve.
	// It equals the input when no heading needed an id.
	HTML string
}

var moreMarker = regexp.MustCompile(`<!--\s*more\s*-->`)

// ReadingTime returns minutes for a word count: ceil(words/238), at least 1.
func ReadingTime(words int) int {
	if words <= 0 {
		return 1
	}
	return (words + WordsPerMinute - 1) / WordsPerMinute
}

// Analyze never fails; unparseable input yields zero counts and the input unchanged.
func Analyze(src string) Result {
	nodes, err := html.ParseFragment(strings.NewReader(src), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return Result{ReadingTime: 1, HTML: src}
	}

	words := countWords(nodes)

	toc, changed := headings(nodes)
	out := src
	if changed {
		out = renderNodes(nodes)
	}

	return Result{
		WordCount:   words,
		ReadingTime: ReadingTime(words),
		ExcerptHTML: excerpt(out, nodes),
		TOC:         toc,
		HTML:        out,
	}
}

// inlineElements join the text around them into one word.
var inlineElements = map[atom.Atom]bool{
	atom.A: true, atom.Abbr: true, atom.B: true, atom.Bdi: true, atom.Bdo: true,
	atom.Cite: true, atom.Code: true, atom.Data: true, atom.Del: true, atom.Dfn: true,
	atom.Em: true, atom.I: true, atom.Ins: true, atom.Kbd: true, atom.Mark: true,
	atom.Q: true, atom.S: true, atom.Samp: true, atom.Small: true, atom.Span: true,
	atom.Strong: true, atom.Sub: true, atom.Sup: true, atom.Time: true, atom.U: true,
	atom.Var: true,
}

// countWords counts whitespace-separated tokens over the text content. Block
// elements and <br> separate words; inline elements do not.
func countWords(nodes []*html.Node) int {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.CommentNode:
			return
		case html.ElementNode:
			if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
				return
			}
			if !inlineElements[n.DataAtom] {
				b.WriteByte(' ')
				defer b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return len(strings.Fields(b.String()))
}

// headings collects h2-h4 in document order and assigns unique ids.
func headings(nodes []*html.Node) ([]TOCEntry, bool) {
	var toc []TOCEntry
	used := map[string]bool{}
	changed := false

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.DataAtom); level > 0 {
				text := collapse(textContent(n))
				base := getAttr(n, "id")
				if base == "" {
					base = Slugify(text)
				}
				if base == "" {
					base = "section"
				}
				id := base
				for i := 1; used[id]; i++ {
					id = fmt.Sprintf("%s-%d", base, i)
				}
				used[id] = true
				if getAttr(n, "id") != id {
					setAttr(n, "id", id)
					changed = true
				}
				toc = append(toc, TOCEntry{ID: id, Text: text, Level: level})
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return toc, changed
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	default:
		return 0
	}
}

// excerpt returns the HTML before the more marker, else the first paragraph.
// A marker inside an element yields a fragment with that element closed.
func excerpt(src string, nodes []*html.Node) string {
	if loc := moreMarker.FindStringIndex(src); loc != nil {
		return balance(strings.TrimSpace(src[:loc[0]]))
	}
	var first *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if first != nil {
			return
		}
		if n.Type == html.ElementNode && n.DataAtom == atom.P {
			first = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	for _, n := range nodes {
		find(n)
	}
	if first == nil {
		return ""
	}
	return renderNodes([]*html.Node{first})
}

// balance re-parses a truncated fragment so every open element is closed.
func balance(fragment string) string {
	if fragment == "" {
		return ""
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(renderNodes(nodes))
}

func renderNodes(nodes []*html.Node) string {
	var b strings.Builder
	for _, n := range nodes {
		_ = html.Render(&b, n)
	}
	return b.String()
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
