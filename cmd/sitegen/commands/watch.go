package commands

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/watch"
)

// WatchCmd implements the 'watch' command: an initial build followed by a
// rebuild after every quiet period with file changes. Build failures are
// reported and watching continues.
type WatchCmd struct {
	BuildCmd `embed:""`

	Debounce time.Duration `help:"Quiet period before rebuilding" default:"300ms"`
}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	ctx := g.context()
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	out := g.stdout()
	if _, err := RunBuild(ctx, out, cfg, &w.BuildCmd); err != nil {
		slog.Error("Initial build failed", logfields.Error(err))
	}

	outDir := w.Output
	if outDir == "" {
		outDir = cfg.Resolve(cfg.Build.OutputDir)
	}
	ignore := []string{
		outDir,
		outDir + "_stage",
		outDir + ".prev",
		filepath.Join(cfg.Root(), ".git"),
	}
	if w.ReportDir != "" {
		ignore = append(ignore, w.ReportDir)
	}
	if db := firstNonEmpty(w.History, cfg.Resolve(cfg.Build.HistoryDB)); db != "" {
		ignore = append(ignore, db, db+"-journal", db+"-wal", db+"-shm")
	}
	if mf := firstNonEmpty(w.MetricsFile, cfg.Resolve(cfg.Build.MetricsFile)); mf != "" {
		ignore = append(ignore, mf)
	}

	watcher := watch.New([]string{cfg.Root()}, ignore, w.Debounce, func(ctx context.Context, changed []string) {
		slog.Info("Change detected, rebuilding", logfields.Count(len(changed)))
		// Reload so configuration edits apply to the next build.
		fresh, err := loadConfig(root)
		if err != nil {
			slog.Error("Configuration reload failed", logfields.Error(err))
			return
		}
		if _, err := RunBuild(ctx, out, fresh, &w.BuildCmd); err != nil {
			if errors.HasCategory(err, errors.CategoryCanceled) {
				slog.Info("Rebuild canceled")
				return
			}
			slog.Error("Rebuild failed", logfields.Error(err))
		}
	})
	slog.Info("Watching for changes", logfields.Path(cfg.Root()))
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
