package markdown

type LinkKind string

const (
	LinkKindInline              LinkKind = "inline"
	LinkKindImage               LinkKind = "image"
	LinkKindAuto                LinkKind = "auto"
	LinkKindReferenceDefinition LinkKind = "reference_definition"
)

type Link struct {
	Kind        LinkKind
	Destination string
}

// Images returns the destinations of image links.
func Images(links []Link) []string {
	var out []string
	for _, l := range links {
		if l.Kind == LinkKindImage {
			out = append(out, l.Destination)
		}
	}
	return out
}
