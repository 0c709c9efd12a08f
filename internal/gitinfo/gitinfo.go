// Package gitinfo reads last-commit dates of content files from the git
// repository that contains the project.
package gitinfo

import (
	stderrors "errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Repo answers last-modified queries. It is safe for concurrent use.
type Repo struct {
	mu    sync.Mutex
	repo  *git.Repository
	root  string
	cache map[string]time.Time
}

// Open finds the repository containing dir. It returns (nil, nil) when dir
// is not inside a git work tree.
func Open(dir string) (*Repo, error) {
	r, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if stderrors.Is(err, git.ErrRepositoryNotExists) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	wt, err := r.Worktree()
	if err != nil {
		return nil, fmt.Errorf("open worktree: %w", err)
	}
	root, err := filepath.EvalSymlinks(wt.Filesystem.Root())
	if err != nil {
		root = wt.Filesystem.Root()
	}
	return &Repo{repo: r, root: root, cache: make(map[string]time.Time)}, nil
}

// Root returns the work tree root.
func (r *Repo) Root() string { return r.root }

// LastModified returns the committer time of the newest commit touching
// path. ok is false for untracked files and repositories without commits.
func (r *Repo) LastModified(path string) (t time.Time, ok bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return time.Time{}, false, err
	}
	if resolved, rerr := filepath.EvalSymlinks(abs); rerr == nil {
		abs = resolved
	}
	rel, err := filepath.Rel(r.root, abs)
	if err != nil {
		return time.Time{}, false, err
	}
	rel = filepath.ToSlash(rel)

	r.mu.Lock()
	defer r.mu.Unlock()

	if t, hit := r.cache[rel]; hit {
		return t, !t.IsZero(), nil
	}

	head, err := r.repo.Head()
	if err != nil {
		// Unborn branch: nothing is committed yet.
		r.cache[rel] = time.Time{}
		return time.Time{}, false, nil
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash(), FileName: &rel})
	if err != nil {
		return time.Time{}, false, fmt.Errorf("git log %s: %w", rel, err)
	}
	defer iter.Close()

	var c *object.Commit
	c, err = iter.Next()
	if stderrors.Is(err, io.EOF) {
		r.cache[rel] = time.Time{}
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("git log %s: %w", rel, err)
	}
	r.cache[rel] = c.Committer.When
	return c.Committer.When, true, nil
}
