package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyCommand    = "command"
	KeyHook       = "hook"
	KeyPlugin     = "plugin"
	KeyPage       = "page"
	KeyPath       = "path"
	KeyExtension  = "extension"
	KeyPriority   = "priority"
	KeySymbol     = "symbol"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }
func Hook(h string) slog.Attr         { return slog.String(KeyHook, h) }
func Plugin(name string) slog.Attr    { return slog.String(KeyPlugin, name) }
func Page(src string) slog.Attr       { return slog.String(KeyPage, src) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Extension(name string) slog.Attr { return slog.String(KeyExtension, name) }
func Priority(p int) slog.Attr        { return slog.Int(KeyPriority, p) }
func Symbol(s string) slog.Attr       { return slog.String(KeySymbol, s) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
