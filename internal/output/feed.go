package output

import (
	"encoding/xml"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/analyze"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// FeedDescriptionLimit bounds item descriptions in runes.
const FeedDescriptionLimit = 300

// FeedOptions describes the channel of one RSS feed.
type FeedOptions struct {
	Title       string
	Description string
	Language    string
	BaseURL     string
	// Link is the site-relative URL of the collection index.
	Link string
	// FeedURL is the site-relative URL of the feed itself.
	FeedURL  string
	MaxItems int
}

type rssDoc struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Atom    string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language,omitempty"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	GUID        rssGUID  `xml:"guid"`
	PubDate     string   `xml:"pubDate,omitempty"`
	Description string   `xml:"description,omitempty"`
	Categories  []string `xml:"category,omitempty"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// RSS renders an RSS 2.0 document for records, which must already be in
// feed order. Links are absolute.
func RSS(records []*content.Record, opts FeedOptions) ([]byte, error) {
	if opts.MaxItems > 0 && len(records) > opts.MaxItems {
		records = records[:opts.MaxItems]
	}

	ch := rssChannel{
		Title:       opts.Title,
		Link:        paths.Absolute(opts.BaseURL, opts.Link),
		Description: opts.Description,
		Language:    opts.Language,
		AtomLink: atomLink{
			Href: paths.Absolute(opts.BaseURL, opts.FeedURL),
			Rel:  "self",
			Type: "application/rss+xml",
		},
		Items: make([]rssItem, 0, len(records)),
	}

	var latest time.Time
	for _, r := range records {
		link := paths.Absolute(opts.BaseURL, r.URL)
		item := rssItem{
			Title:       r.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: feedDescription(r),
			Categories:  r.Tags,
		}
		if r.HasDate() {
			item.PubDate = r.Date.Format(time.RFC1123Z)
		}
		if m := r.LastModified(); m.After(latest) {
			latest = m
		}
		ch.Items = append(ch.Items, item)
	}
	if !latest.IsZero() {
		ch.LastBuildDate = latest.Format(time.RFC1123Z)
	}

	out, err := xml.MarshalIndent(rssDoc{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: ch,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

func feedDescription(r *content.Record) string {
	if r.Description != "" {
		return r.Description
	}
	return analyze.Summary(r.ExcerptHTML, FeedDescriptionLimit)
}
