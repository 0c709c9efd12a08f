package output

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// PostProcess sets <html lang> when it is missing and adds hreflang alternate
// links to <head> when the template emitted none. Alternate URLs are made
// absolute against baseURL. The document is returned unchanged when nothing
// needed adding.
func PostProcess(doc []byte, lang, baseURL string, alternates []content.Alternate) ([]byte, bool, error) {
	root, err := html.Parse(bytes.NewReader(doc))
	if err != nil {
		return nil, false, err
	}

	htmlNode := findElement(root, atom.Html)
	if htmlNode == nil {
		return doc, false, nil
	}

	changed := false
	if lang != "" && strings.TrimSpace(attr(htmlNode, "lang")) == "" {
		setAttribute(htmlNode, "lang", lang)
		changed = true
	}

	head := findElement(htmlNode, atom.Head)
	if head != nil && len(alternates) > 0 && !hasHreflang(head) {
		for _, a := range alternates {
			head.AppendChild(&html.Node{
				Type:     html.ElementNode,
				Data:     "link",
				DataAtom: atom.Link,
				Attr: []html.Attribute{
					{Key: "rel", Val: "alternate"},
					{Key: "hreflang", Val: a.Language},
					{Key: "href", Val: paths.Absolute(baseURL, a.URL)},
				},
			})
		}
		changed = true
	}

	if !changed {
		return doc, false, nil
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, false, err
	}
	return buf.Bytes(), true, nil
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

func hasHreflang(head *html.Node) bool {
	for c := head.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Link &&
			strings.EqualFold(attr(c, "rel"), "alternate") && attr(c, "hreflang") != "" {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttribute(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
