package macro

import (
	"sort"

	"github.com/xrash/smetrics"
)

const maxSuggestions = 3

// suggest returns up to three candidate names closest to name by edit distance.
func suggest(name string, candidates []string) []string {
	type scored struct {
		name string
		dist int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scored{name: c, dist: smetrics.WagnerFischer(name, c, 1, 1, 1)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].dist != ranked[j].dist {
			return ranked[i].dist < ranked[j].dist
		}
		return ranked[i].name < ranked[j].name
	})

	out := make([]string, 0, maxSuggestions)
	for _, r := range ranked {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, r.name)
	}
	return out
}
