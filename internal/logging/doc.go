// Package logging provides the slog-based logging setup shared by all
// mediaorg components: handler construction from config, attr helpers, and
// component-scoped loggers.
//
// The console handler renders compact single-line records and colors level
// labels when the destination is a terminal; the JSON handler normalizes key
// names (ts/level/msg) for machine consumption.
package logging
