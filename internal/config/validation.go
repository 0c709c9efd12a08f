package config

import (
	"net/url"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitegen/internal/foundation/errors"
)

// Validate checks a defaulted configuration.
func Validate(cfg *Config) error {
	if cfg.Title == "" {
		return errors.ConfigError("title is required").Build()
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid base_url").
			WithContext("base_url", cfg.BaseURL).
			Fatal().
			Build()
	}
	for code := range cfg.Languages {
		if _, err := language.Parse(code); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid language code").
				WithContext("language", code).
				Fatal().
				Build()
		}
	}
	if len(cfg.Collections) == 0 {
		return errors.ConfigError("at least one collection must be configured").Build()
	}

	seen := make(map[string]struct{}, len(cfg.Collections))
	for _, c := range cfg.Collections {
		if c.Name == "" {
			return errors.ConfigError("collection name is required").Build()
		}
		if _, dup := seen[c.Name]; dup {
			return errors.ConfigError("duplicate collection name").
				WithContext("collection", c.Name).
				Build()
		}
		seen[c.Name] = struct{}{}
		if c.Paginate < 0 {
			return errors.ConfigError("paginate must not be negative").
				WithContext("collection", c.Name).
				Build()
		}
		if c.Paginate > 0 && !c.HasIndex() {
			return errors.ConfigError("paginate requires a non-root url_prefix").
				WithContext("collection", c.Name).
				Build()
		}
	}
	return nil
}
