package output

import (
	"encoding/json"

	"git.home.luguber.info/inful/sitegen/internal/analyze"
	"git.home.luguber.info/inful/sitegen/internal/content"
)

// SearchEntry is one document of a language search index.
type SearchEntry struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Collection  string   `json:"collection"`
	Text        string   `json:"text"`
	Fingerprint string   `json:"fingerprint"`
}

// SearchIndex serializes the search documents of records in the given order.
func SearchIndex(records []*content.Record) ([]byte, error) {
	entries := make([]SearchEntry, 0, len(records))
	for _, r := range records {
		entries = append(entries, SearchEntry{
			URL:         r.URL,
			Title:       r.Title,
			Description: r.Description,
			Tags:        r.Tags,
			Collection:  r.Collection,
			Text:        analyze.PlainText(r.RenderedHTML),
			Fingerprint: r.Fingerprint,
		})
	}
	return json.Marshal(entries)
}
