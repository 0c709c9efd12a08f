package config

import (
	"runtime"
	"strings"

	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

func defaultPaths() PathsConfig {
	return PathsConfig{
		Content:   "content",
		Templates: "templates",
		Macros:    "macros",
		Data:      "data",
		Static:    "static",
		I18n:      "i18n",
	}
}

// applyDefaults fills unset values. It runs before validation.
func applyDefaults(cfg *Config) error {
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	if cfg.Languages == nil {
		cfg.Languages = map[string]LanguageConfig{}
	}
	if _, ok := cfg.Languages[cfg.DefaultLanguage]; !ok {
		cfg.Languages[cfg.DefaultLanguage] = LanguageConfig{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "/"
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}

	d := defaultPaths()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&cfg.Paths.Content, d.Content)
	fill(&cfg.Paths.Templates, d.Templates)
	fill(&cfg.Paths.Macros, d.Macros)
	fill(&cfg.Paths.Data, d.Data)
	fill(&cfg.Paths.Static, d.Static)
	fill(&cfg.Paths.I18n, d.I18n)
	fill(&cfg.Build.OutputDir, "public")

	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = runtime.NumCPU()
	}

	for i := range cfg.Collections {
		c := &cfg.Collections[i]
		if c.Dir == "" {
			c.Dir = c.Name
		}
		if c.URLPrefix == "" {
			c.URLPrefix = "/" + c.Name
		}
		c.URLPrefix = normalizePrefix(c.URLPrefix)
		order, err := ParseSortOrder(string(c.SortBy))
		if err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid collection sort order").
				WithContext("collection", c.Name).
				Fatal().
				Build()
		}
		c.SortBy = order
		if c.Template == "" {
			c.Template = "page.html"
		}
		if c.ListTemplate == "" {
			c.ListTemplate = "list.html"
		}
	}
	return nil
}

// normalizePrefix yields "" (root) or "/segment[/segment]" without a trailing slash.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}
