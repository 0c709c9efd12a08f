// Package watch triggers debounced callbacks when project files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// DefaultDebounce is the quiet period before a change batch is delivered.
const DefaultDebounce = 300 * time.Millisecond

// ChangeFunc receives the sorted set of paths changed during one quiet period.
// Calls never overlap.
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher monitors directory trees.
type Watcher struct {
	roots    []string
	ignore   []string
	debounce time.Duration
	onChange ChangeFunc
}

// New creates a Watcher over roots. Paths below any ignore entry (typically
// the output and staging directories) never trigger a change.
func New(roots, ignore []string, debounce time.Duration, onChange ChangeFunc) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs := func(in []string) []string {
		out := make([]string, 0, len(in))
		for _, p := range in {
			if a, err := filepath.Abs(p); err == nil {
				out = append(out, a)
			}
		}
		return out
	}
	return &Watcher{roots: abs(roots), ignore: abs(ignore), debounce: debounce, onChange: onChange}
}

// Run watches until ctx is canceled. Missing roots are skipped.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = fw.Close() }()

	for _, root := range w.roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		if err := w.addTree(fw, root); err != nil {
			return err
		}
	}
	slog.Info("Watching for changes", slog.Int("roots", len(w.roots)))

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(fw, event.Name); err != nil {
						slog.Warn("Failed to watch new directory", logfields.Path(event.Name), logfields.Error(err))
					}
				}
			}
			slog.Debug("Change detected", logfields.Path(event.Name), slog.String("op", event.Op.String()))
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("Watcher error", logfields.Error(err))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})
			w.onChange(ctx, changed)
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(p) || (p != root && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := fw.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	for _, ig := range w.ignore {
		if p == ig || strings.HasPrefix(p, ig+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
