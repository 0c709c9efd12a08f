package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// DefaultFileName is the configuration file looked up when no path is given.
const DefaultFileName = "sitegen.yaml"

// Config is the site configuration loaded from sitegen.yaml.
type Config struct {
	Title           string                    `yaml:"title"`
	BaseURL         string                    `yaml:"base_url"`
	Description     string                    `yaml:"description,omitempty"`
	DefaultLanguage string                    `yaml:"default_language"`
	Languages       map[string]LanguageConfig `yaml:"languages,omitempty"`
	Collections     []CollectionConfig        `yaml:"collections"`
	Build           BuildConfig               `yaml:"build"`
	Paths           PathsConfig               `yaml:"paths"`
	// Params is passed untouched to templates as .Site.Params.
	Params map[string]any `yaml:"params,omitempty"`

	// root is the directory containing the configuration file; relative paths resolve against it.
	root string
}

// LanguageConfig describes one site language.
type LanguageConfig struct {
	Name   string `yaml:"name,omitempty"`   // Display name; derived from the code when empty
	Title  string `yaml:"title,omitempty"`  // Site title override for this language
	Weight int    `yaml:"weight,omitempty"` // Ordering in language switchers
}

// CollectionConfig configures one named group of content files.
type CollectionConfig struct {
	Name         string    `yaml:"name"`
	Dir          string    `yaml:"dir,omitempty"`        // Relative to paths.content; defaults to name
	URLPrefix    string    `yaml:"url_prefix,omitempty"` // Defaults to /{name}; "/" mounts at the site root
	Template     string    `yaml:"template,omitempty"`
	ListTemplate string    `yaml:"list_template,omitempty"`
	SortBy       SortOrder `yaml:"sort_by,omitempty"`
	Nested       bool      `yaml:"nested,omitempty"`
	Paginate     int       `yaml:"paginate,omitempty"`
	Feed         bool      `yaml:"feed,omitempty"`
}

// HasDate reports whether records of this collection must carry a date.
func (c CollectionConfig) HasDate() bool { return c.SortBy == SortByDate }

// HasIndex reports whether the collection emits list pages. Collections mounted
// at the root would otherwise overwrite the home page.
func (c CollectionConfig) HasIndex() bool { return c.URLPrefix != "" }

// BuildConfig holds build behaviour defaults; CLI flags override them.
type BuildConfig struct {
	OutputDir     string `yaml:"output_dir"`
	IncludeDrafts bool   `yaml:"include_drafts,omitempty"`
	Concurrency   int    `yaml:"concurrency,omitempty"`
	GitInfo       bool   `yaml:"git_info,omitempty"`
	HistoryDB     string `yaml:"history_db,omitempty"`
	MetricsFile   string `yaml:"metrics_file,omitempty"`
}

// PathsConfig locates the project inputs.
type PathsConfig struct {
	Content   string `yaml:"content"`
	Templates string `yaml:"templates"`
	Macros    string `yaml:"macros"`
	Data      string `yaml:"data"`
	Static    string `yaml:"static"`
	I18n      string `yaml:"i18n"`
}

// Root returns the project directory.
func (c *Config) Root() string { return c.root }

// SetRoot overrides the project directory used to resolve relative paths.
func (c *Config) SetRoot(dir string) { c.root = dir }

// Resolve returns p relative to the project root unless it is already absolute.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

// CollectionDir returns the absolute content directory of a collection.
func (c *Config) CollectionDir(coll CollectionConfig) string {
	return filepath.Join(c.Resolve(c.Paths.Content), filepath.FromSlash(coll.Dir))
}

// Collection returns the named collection.
func (c *Config) Collection(name string) (CollectionConfig, bool) {
	for _, coll := range c.Collections {
		if coll.Name == name {
			return coll, true
		}
	}
	return CollectionConfig{}, false
}

// Load reads, expands, defaults and validates a configuration file.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.NewError(errors.CategoryNotFound, "configuration file not found").
			WithContext("path", configPath).
			Fatal().
			Build()
	}

	root := filepath.Dir(configPath)
	if _, err := loadEnvFiles(root); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to load .env file").
			WithContext("dir", root).
			Fatal().
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	return LoadBytes(data, root)
}

// LoadBytes parses, defaults and validates configuration bytes for a project
// rooted at root.
func LoadBytes(data []byte, root string) (*Config, error) {
	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.root = root

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes configuration bytes after expanding environment variables.
// Unknown keys are rejected so typos in collection settings surface early.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	dec := yaml.NewDecoder(bytes.NewBufferString(expanded))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse configuration").
			Fatal().
			Build()
	}
	return &cfg, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	example := Config{
		Title:           "My Site",
		BaseURL:         "https://example.com/",
		Description:     "Notes and documentation",
		DefaultLanguage: "en",
		Languages: map[string]LanguageConfig{
			"en": {Weight: 1},
			"es": {Weight: 2, Title: "Mi sitio"},
		},
		Collections: []CollectionConfig{
			{Name: "posts", SortBy: SortByDate, Paginate: 10, Feed: true},
			{Name: "docs", SortBy: SortByWeight, Nested: true},
			{Name: "pages", URLPrefix: "/", SortBy: SortByTitle},
		},
		Build: BuildConfig{OutputDir: "public", Concurrency: 4},
		Paths: defaultPaths(),
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal example config").Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// SortOrder selects the collection ordering rule.
type SortOrder string

func (s SortOrder) String() string { return string(s) }

const (
	SortByDate   SortOrder = "date"
	SortByWeight SortOrder = "weight"
	SortByTitle  SortOrder = "title"
)

// ParseSortOrder normalizes a sort_by value.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case SortByDate, SortByWeight, SortByTitle:
		return SortOrder(s), nil
	case "":
		return SortByTitle, nil
	default:
		return "", fmt.Errorf("unknown sort order %q (expected date, weight or title)", s)
	}
}
