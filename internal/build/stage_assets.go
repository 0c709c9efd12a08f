package build

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/output"
)

// staticOverride reports a static file replacing a generated one.
type staticOverride struct{ Rel string }

func (w staticOverride) Error() string {
	return fmt.Sprintf("static file %s overrides generated output", w.Rel)
}

func stageCopyStatic(_ context.Context, st *State) error {
	src := st.cfg.Resolve(st.cfg.Paths.Static)
	for _, rel := range overlapping(src, st.stageDir) {
		w := staticOverride{Rel: rel}
		slog.Warn("Static file overrides generated output", logfields.Path(rel))
		st.report.AddWarning(w)
	}
	n, err := output.CopyDir(src, st.stageDir)
	if err != nil {
		return newFatalStageError(StageCopyStatic, src, err)
	}
	st.report.Files += n
	if n > 0 {
		slog.Debug("Static files copied", logfields.Count(n), logfields.Path(src))
	}
	return nil
}

// overlapping lists the files under src that already exist under dst.
func overlapping(src, dst string) []string {
	var out []string
	_ = filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return nil
		}
		if _, err := os.Stat(filepath.Join(dst, rel)); err == nil {
			out = append(out, filepath.ToSlash(rel))
		}
		return nil
	})
	return out
}

func stageProcessImages(ctx context.Context, st *State) error {
	var refs []output.ImageRef
	for i := range st.records {
		refs = append(refs, output.ImageRefs(&st.records[i])...)
	}
	if len(refs) == 0 {
		return nil
	}
	warnings, err := st.images.Process(ctx, st.stageDir, refs)
	if err != nil {
		return newFatalStageError(StageProcessImages, "", err)
	}
	for _, w := range warnings {
		slog.Warn("Image problem", logfields.Path(w.Image.SourcePath), slog.String("image", w.Image.Ref), slog.String("reason", w.Reason))
		st.report.AddWarning(w)
	}
	return nil
}

func stagePostProcessHTML(ctx context.Context, st *State) error {
	return forEach(ctx, len(st.html), st.concurrency, func(_ context.Context, i int) error {
		h := st.html[i]
		p := st.writer.Path(h.Rel)
		doc, err := os.ReadFile(p)
		if err != nil {
			return newFatalStageError(StagePostProcessHTML, p, err)
		}
		out, changed, err := output.PostProcess(doc, h.Language, st.cfg.BaseURL, h.Alternates)
		if err != nil {
			return newFatalStageError(StagePostProcessHTML, p, err)
		}
		if !changed {
			return nil
		}
		if err := os.WriteFile(p, out, 0o644); err != nil { //nolint:gosec // site output is world-readable
			return newFatalStageError(StagePostProcessHTML, p, err)
		}
		return nil
	})
}
