package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherDebouncesChanges(t *testing.T) {
	root := t.TempDir()
	content := filepath.Join(root, "content")
	out := filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(content, 0o750))
	require.NoError(t, os.MkdirAll(out, 0o750))

	batches := make(chan []string, 16)
	w := New([]string{root}, []string{out}, 100*time.Millisecond, func(_ context.Context, changed []string) {
		select {
		case batches <- changed:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	// Give the watcher time to register its directories.
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(out, "index.html"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(content, "a.md"), []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(content, "b.md"), []byte("b"), 0o600))

	seen := map[string]bool{}
	deadline := time.After(5 * time.Second)
	for !seen[filepath.Join(content, "a.md")] || !seen[filepath.Join(content, "b.md")] {
		select {
		case got := <-batches:
			for _, p := range got {
				assert.NotContains(t, p, out)
				seen[p] = true
			}
		case <-deadline:
			t.Fatalf("change batches incomplete: %v", seen)
		}
	}

	cancel()
	require.NoError(t, <-done)
}

func TestIgnored(t *testing.T) {
	w := New(nil, []string{"/site/public"}, 0, nil)
	assert.True(t, w.ignored("/site/public"))
	assert.True(t, w.ignored("/site/public/a.html"))
	assert.False(t, w.ignored("/site/public_stage2"))
	assert.Equal(t, DefaultDebounce, w.debounce)
}
