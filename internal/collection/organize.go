// Package collection orders, groups and paginates the records of one collection.
package collection

import (
	"path"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
)

// Options controls one Organize call.
type Options struct {
	IncludeDrafts bool
	// Language is the language of every record passed in; it selects title collation.
	Language string
	// LangPrefix is prepended to page URLs ("" for the default language).
	LangPrefix string
}

// Page is one slice of a paginated collection; records[Start:End].
type Page struct {
	Number  int
	Start   int
	End     int
	URL     string
	PrevURL string
	NextURL string
	Records []*content.Record
}

// Group is the records sharing one source directory in a nested collection.
type Group struct {
	Key     string
	Label   string
	Records []*content.Record
}

// View is the ordered projection of one collection in one language. Records
// are borrowed from the caller.
type View struct {
	Name     string
	Language string
	URL      string
	Records  []*content.Record
	Groups   []Group
	Pages    []Page
}

// Organize filters drafts, sorts, groups and paginates. It does not modify
// the input slice.
func Organize(records []*content.Record, coll config.CollectionConfig, opts Options) View {
	list := make([]*content.Record, 0, len(records))
	for _, r := range records {
		if r.Draft && !opts.IncludeDrafts {
			continue
		}
		list = append(list, r)
	}
	Sort(list, coll.SortBy, opts.Language)

	base := opts.LangPrefix + coll.URLPrefix
	v := View{
		Name:     coll.Name,
		Language: opts.Language,
		URL:      PageURL(base, 1),
		Records:  list,
	}
	if coll.Nested {
		v.Groups = groupByDir(list, opts.Language)
	}
	if coll.Paginate > 0 {
		v.Pages = Paginate(list, coll.Paginate, base)
	}
	return v
}

// Sort orders records in place with a stable sort.
//
//   - date: newest first, ties by slug ascending
//   - weight: weight ascending; records without a weight follow all weighted
//     records, ordered by title
//   - title: title ascending, ties by slug
func Sort(records []*content.Record, order config.SortOrder, lang string) {
	titles := newTitleCollator(lang)

	var less func(a, b *content.Record) bool
	switch order {
	case config.SortByDate:
		less = func(a, b *content.Record) bool {
			if !a.Date.Equal(b.Date) {
				return a.Date.After(b.Date)
			}
			return a.Slug < b.Slug
		}
	case config.SortByWeight:
		less = func(a, b *content.Record) bool {
			switch {
			case a.Weight != nil && b.Weight != nil:
				if *a.Weight != *b.Weight {
					return *a.Weight < *b.Weight
				}
				return titles.less(a, b)
			case a.Weight != nil:
				return true
			case b.Weight != nil:
				return false
			default:
				return titles.less(a, b)
			}
		}
	default:
		less = titles.less
	}

	sort.SliceStable(records, func(i, j int) bool { return less(records[i], records[j]) })
}

type titleCollator struct {
	c *collate.Collator
}

func newTitleCollator(lang string) titleCollator {
	tag := language.English
	if t, err := language.Parse(lang); err == nil {
		tag = t
	}
	return titleCollator{c: collate.New(tag, collate.IgnoreCase, collate.IgnoreDiacritics)}
}

func (t titleCollator) less(a, b *content.Record) bool {
	if c := t.c.CompareString(a.Title, b.Title); c != 0 {
		return c < 0
	}
	return a.Slug < b.Slug
}

// PageURL returns the URL of page n under base: base/ for page 1 and
// base/page/{n} after that.
func PageURL(base string, n int) string {
	if n <= 1 {
		return base + "/"
	}
	return base + "/page/" + strconv.Itoa(n)
}

// Paginate splits records into pages of size n; the last page holds the
// remainder. An empty list still yields one empty page.
func Paginate(records []*content.Record, n int, base string) []Page {
	if n <= 0 {
		return nil
	}
	count := (len(records) + n - 1) / n
	if count == 0 {
		count = 1
	}

	pages := make([]Page, count)
	for i := range pages {
		start := i * n
		end := min(start+n, len(records))
		num := i + 1
		p := Page{
			Number:  num,
			Start:   start,
			End:     end,
			URL:     PageURL(base, num),
			Records: records[start:end],
		}
		if num > 1 {
			p.PrevURL = PageURL(base, num-1)
		}
		if num < count {
			p.NextURL = PageURL(base, num+1)
		}
		pages[i] = p
	}
	return pages
}

// groupByDir buckets records by source directory. Groups are ordered by key;
// records keep their sorted order inside each group.
func groupByDir(records []*content.Record, lang string) []Group {
	idx := map[string]int{}
	var groups []Group
	for _, r := range records {
		key := r.Dir()
		i, ok := idx[key]
		if !ok {
			i = len(groups)
			idx[key] = i
			groups = append(groups, Group{Key: key, Label: groupLabel(key, lang)})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	return groups
}

func groupLabel(key, lang string) string {
	if key == "" {
		return ""
	}
	tag := language.English
	if t, err := language.Parse(lang); err == nil {
		tag = t
	}
	words := strings.NewReplacer("-", " ", "_", " ").Replace(path.Base(key))
	return cases.Title(tag).String(words)
}
