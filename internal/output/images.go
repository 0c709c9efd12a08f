package output

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/markdown"
)

// ImageRef is one image referenced by a record.
type ImageRef struct {
	SourcePath string
	// PageURL is the URL of the referencing page; relative references resolve against it.
	PageURL string
	Ref     string
}

// ImageWarning reports a referenced image the processor could not find.
type ImageWarning struct {
	Image  ImageRef
	Reason string
}

func (w ImageWarning) Error() string {
	return fmt.Sprintf("%s: image %q %s", w.Image.SourcePath, w.Image.Ref, w.Reason)
}

// ImageProcessor handles the images referenced by the site once static files
// are in place. Warnings are non-fatal; a returned error aborts the build.
type ImageProcessor interface {
	Process(ctx context.Context, outDir string, refs []ImageRef) ([]ImageWarning, error)
}

// ImageRefs collects the local image references of a record: the front-matter
// image and markdown image links. Remote and data URLs are skipped.
func ImageRefs(r *content.Record) []ImageRef {
	var dests []string
	if r.Image != "" {
		dests = append(dests, r.Image)
	}
	dests = append(dests, markdown.Images(markdown.ExtractLinks([]byte(r.RawBody)))...)

	seen := make(map[string]struct{}, len(dests))
	var refs []ImageRef
	for _, d := range dests {
		if !isLocal(d) {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		refs = append(refs, ImageRef{SourcePath: r.SourcePath, PageURL: r.URL, Ref: d})
	}
	return refs
}

func isLocal(dest string) bool {
	if dest == "" || strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, "#") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Scheme == ""
}

// MissingImageChecker is the default ImageProcessor. It leaves images
// untouched and warns about references that resolve to no file, looking in
// the output tree and next to the source file.
type MissingImageChecker struct{}

// Process implements ImageProcessor.
func (MissingImageChecker) Process(ctx context.Context, outDir string, refs []ImageRef) ([]ImageWarning, error) {
	var warnings []ImageWarning
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return warnings, err
		}
		if !imageExists(outDir, ref) {
			warnings = append(warnings, ImageWarning{Image: ref, Reason: "not found"})
		}
	}
	return warnings, nil
}

func imageExists(outDir string, ref ImageRef) bool {
	p := ref.Ref
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}

	var candidates []string
	if strings.HasPrefix(p, "/") {
		candidates = append(candidates, filepath.Join(outDir, filepath.FromSlash(p)))
	} else {
		pageDir := ref.PageURL
		if !strings.HasSuffix(pageDir, "/") {
			pageDir = path.Dir(pageDir)
		}
		candidates = append(candidates,
			filepath.Join(outDir, filepath.FromSlash(path.Join(pageDir, p))),
			filepath.Join(filepath.Dir(ref.SourcePath), filepath.FromSlash(p)),
		)
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
