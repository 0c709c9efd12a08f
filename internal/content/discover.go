package content

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// contentExts lists the file extensions treated as content.
var contentExts = map[string]bool{".md": true, ".markdown": true}

// Discover lists the content files under dir in lexical path order. Hidden
// entries and names starting with an underscore are skipped. A missing dir
// yields no sources.
func Discover(dir string) ([]Source, error) {
	var out []Source
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return err
		}
		name := d.Name()
		if p != dir && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !contentExts[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, Source{Path: p, RelPath: filepath.ToSlash(rel)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
