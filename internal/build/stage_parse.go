package build

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"sort"

	"git.home.luguber.info/inful/sitegen/internal/analyze"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/macro"
	"git.home.luguber.info/inful/sitegen/internal/paths"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

type parseJob struct {
	coll config.CollectionConfig
	src  content.Source
}

type parseSlot struct {
	rec  content.Record
	keep bool
}

// stageParseContent discovers, parses, expands, renders, resolves and
// analyzes every content file. Records keep traversal order: collections in
// configuration order, files in lexical path order.
func stageParseContent(ctx context.Context, st *State) error {
	var jobs []parseJob
	for _, coll := range st.collections {
		dir := st.cfg.CollectionDir(coll)
		sources, err := content.Discover(dir)
		if err != nil {
			return newFatalStageError(StageParseContent, dir,
				errors.WrapError(err, errors.CategoryFileSystem, "discover content").Build())
		}
		for _, src := range sources {
			jobs = append(jobs, parseJob{coll: coll, src: src})
		}
	}

	slots := make([]parseSlot, len(jobs))
	err := forEach(ctx, len(jobs), st.concurrency, func(_ context.Context, i int) error {
		rec, keep, err := st.processSource(jobs[i])
		if err != nil {
			return newFatalStageError(StageParseContent, jobs[i].src.Path, err)
		}
		slots[i] = parseSlot{rec: rec, keep: keep}
		return nil
	})
	if err != nil {
		return err
	}

	st.records = st.records[:0]
	suffixes := map[string]bool{}
	for _, s := range slots {
		if !s.keep {
			continue
		}
		if sfx := s.rec.IgnoredSuffix; sfx != "" && !suffixes[sfx] {
			suffixes[sfx] = true
			slog.Info("Filename suffix matches no configured language; kept in slug",
				slog.String("suffix", sfx), logfields.Path(s.rec.SourcePath))
		}
		st.records = append(st.records, s.rec)
	}
	st.countRecords()
	return nil
}

func (st *State) processSource(job parseJob) (content.Record, bool, error) {
	data, err := os.ReadFile(job.src.Path)
	if err != nil {
		return content.Record{}, false, err
	}
	rec, err := content.Parse(data, job.src, job.coll, st.langs)
	if err != nil {
		return content.Record{}, false, err
	}
	if !slices.Contains(st.languages, rec.Language) {
		return content.Record{}, false, nil
	}
	if rec.Draft && !st.includeDrafts {
		return content.Record{}, false, nil
	}

	body, err := macro.Expand(rec.RawBody, st.macros, job.src.Path)
	if err != nil {
		return content.Record{}, false, err
	}
	html, err := st.renderer.Render([]byte(body))
	if err != nil {
		return content.Record{}, false, &render.Error{Template: "markdown", Path: job.src.Path, Err: err}
	}

	rec = paths.Resolve(rec, job.coll, st.langs)
	res := analyze.Analyze(string(html))
	rec.RenderedHTML = res.HTML
	rec.WordCount = res.WordCount
	rec.ReadingTime = res.ReadingTime
	rec.ExcerptHTML = res.ExcerptHTML
	rec.TOC = res.TOC

	if st.git != nil && rec.Updated.IsZero() {
		t, ok, err := st.git.LastModified(job.src.Path)
		switch {
		case err != nil:
			slog.Warn("Git history lookup failed", logfields.Path(job.src.Path), logfields.Error(err))
		case ok:
			rec.Updated = t
		}
	}
	return rec, true, nil
}

// countRecords fills the report counters and the per collection/language metric.
func (st *State) countRecords() {
	type key struct{ coll, lang string }
	per := map[key]int{}
	for _, r := range st.records {
		per[key{r.Collection, r.Language}]++
		st.report.PerCollection[r.Collection]++
	}
	st.report.Records = len(st.records)

	keys := make([]key, 0, len(per))
	for k := range per {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].coll != keys[j].coll {
			return keys[i].coll < keys[j].coll
		}
		return keys[i].lang < keys[j].lang
	})
	for _, k := range keys {
		st.recorder.AddRecords(k.coll, k.lang, per[k])
	}
	slog.Info("Content parsed", logfields.Count(len(st.records)), slog.Any("per_collection", st.report.PerCollection))
}
