package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCollection = "collection"
	KeyLanguage   = "language"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyMacro      = "macro"
	KeyTemplate   = "template"
	KeyCount      = "count"
	KeyOutcome    = "outcome"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr        { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr        { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr    { return slog.Float64(KeyDurationMS, ms) }
func Collection(name string) slog.Attr   { return slog.String(KeyCollection, name) }
func Language(code string) slog.Attr     { return slog.String(KeyLanguage, code) }
func Path(p string) slog.Attr            { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr             { return slog.String(KeyURL, u) }
func Macro(name string) slog.Attr        { return slog.String(KeyMacro, name) }
func Template(name string) slog.Attr     { return slog.String(KeyTemplate, name) }
func Count(n int) slog.Attr              { return slog.Int(KeyCount, n) }
func Outcome(o string) slog.Attr         { return slog.String(KeyOutcome, o) }
func Duration(d time.Duration) slog.Attr { return DurationMS(float64(d.Microseconds()) / 1000) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
