// Package datafiles loads structured data files for templates. Each file
// under the data directory becomes a key named after its stem; directories
// become nested maps.
package datafiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

type decoder func(data []byte, v any) error

var decoders = map[string]decoder{
	".yaml": yaml.Unmarshal,
	".yml":  yaml.Unmarshal,
	".json": json.Unmarshal,
	".toml": toml.Unmarshal,
}

// Load reads every supported file below dir. A missing dir yields an empty
// map. Two files with the same stem in one directory are an error.
func Load(dir string) (map[string]any, error) {
	out := make(map[string]any)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return out, nil
	}
	if err := loadDir(dir, out); err != nil {
		return nil, err
	}
	return out, nil
}

func loadDir(dir string, into map[string]any) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to read data directory").
			WithContext("dir", dir).
			Build()
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	from := make(map[string]string)
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		p := filepath.Join(dir, name)

		if e.IsDir() {
			sub := make(map[string]any)
			if err := loadDir(p, sub); err != nil {
				return err
			}
			if err := put(into, from, name, p, sub); err != nil {
				return err
			}
			continue
		}

		ext := strings.ToLower(filepath.Ext(name))
		dec, ok := decoders[ext]
		if !ok {
			continue
		}
		raw, err := os.ReadFile(p) //nolint:gosec // project data file
		if err != nil {
			return errors.WrapError(err, errors.CategoryFileSystem, "failed to read data file").
				WithContext("path", p).
				Build()
		}
		var v any
		if err := dec(raw, &v); err != nil {
			return errors.WrapError(err, errors.CategoryContent, "failed to decode data file").
				WithContext("path", p).
				Fatal().
				Build()
		}
		if err := put(into, from, strings.TrimSuffix(name, filepath.Ext(name)), p, normalize(v)); err != nil {
			return err
		}
	}
	return nil
}

func put(into map[string]any, from map[string]string, key, path string, v any) error {
	if prev, dup := from[key]; dup {
		return errors.ValidationError(fmt.Sprintf("duplicate data key %q", key)).
			WithContext("first", prev).
			WithContext("second", path).
			Build()
	}
	from[key] = path
	into[key] = v
	return nil
}

// normalize converts the decoders' map types to map[string]any so templates
// can index every format the same way.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = normalize(val)
		}
		return t
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = normalize(val)
		}
		return m
	case []any:
		for i, val := range t {
			t[i] = normalize(val)
		}
		return t
	default:
		return v
	}
}
