package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
)

// Writer writes files below a root directory. It is safe for concurrent use
// as long as callers write distinct paths.
type Writer struct {
	root    string
	written atomic.Int64
}

// NewWriter returns a Writer rooted at dir.
func NewWriter(dir string) *Writer {
	return &Writer{root: dir}
}

// Root returns the output root.
func (w *Writer) Root() string { return w.root }

// Path returns the absolute path for a slash-separated relative name.
func (w *Writer) Path(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}

// Write creates parent directories and writes data to rel. Names resolving
// outside the root are refused.
func (w *Writer) Write(rel string, data []byte) error {
	p := w.Path(rel)
	if !within(w.root, p) {
		return fmt.Errorf("write %s: path escapes output directory", rel)
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return fmt.Errorf("create directory for %s: %w", rel, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil { //nolint:gosec // public site output, non-sensitive
		return fmt.Errorf("write %s: %w", rel, err)
	}
	w.written.Add(1)
	return nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// Count returns the number of files written so far.
func (w *Writer) Count() int { return int(w.written.Load()) }
