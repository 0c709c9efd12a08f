package output

import (
	"bytes"
	"fmt"

	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// RobotsTxt allows all crawlers and points them at the sitemap.
func RobotsTxt(sitemapURL string) []byte {
	var b bytes.Buffer
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	if sitemapURL != "" {
		fmt.Fprintf(&b, "\nSitemap: %s\n", sitemapURL)
	}
	return b.Bytes()
}

// LLMSection groups llms.txt entries under a heading.
type LLMSection struct {
	Name    string
	Entries []LLMEntry
}

// LLMEntry links one markdown mirror.
type LLMEntry struct {
	Title       string
	MirrorURL   string
	Description string
}

// LLMsTxt renders an llms.txt document listing the markdown mirrors of every
// published record. Mirror URLs are made absolute.
func LLMsTxt(title, description, baseURL string, sections []LLMSection) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n", title)
	if description != "" {
		fmt.Fprintf(&b, "\n> %s\n", description)
	}
	for _, s := range sections {
		if len(s.Entries) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", s.Name)
		for _, e := range s.Entries {
			fmt.Fprintf(&b, "- [%s](%s)", e.Title, paths.Absolute(baseURL, e.MirrorURL))
			if e.Description != "" {
				fmt.Fprintf(&b, ": %s", e.Description)
			}
			b.WriteByte('\n')
		}
	}
	return b.Bytes()
}
