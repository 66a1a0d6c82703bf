// Package logging assembles the slog loggers used for dbglog's own
// diagnostics: sink failures, control-surface warnings and host lifecycle.
//
// It owns the console and JSON handlers, level and output plumbing, a
// fan-out handler that isolates a failing handler from its siblings, and a
// no-op logger for tests and wiring code that cannot fail. NewFromConfig
// pairs the terminal handler with a JSON log file and stamps the host
// session on every record.
//
// Log events routed through the dispatcher do not pass through here; the
// console sink builds its own handler from the same constructors.
package logging
