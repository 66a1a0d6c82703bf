// Package severity defines the ordered verbosity levels of log events and the
// per-severity presentation defaults applied to fields a caller left unset.
package severity

import (
	"log/slog"
	"strings"
	"time"

	"dbglog/internal/geom"
)

// Severity is the ordered verbosity of a log event.
type Severity uint8

const (
	// Verbose is for detailed tracing output.
	Verbose Severity = iota
	// Display is the default severity.
	Display
	// Warning marks a recoverable problem.
	Warning
	// Error marks a failure.
	Error
	// Fatal terminates the process once the console sink has written the event.
	Fatal
	// NoLogging drops the event before any work is done.
	NoLogging
)

func (s Severity) String() string {
	switch s {
	case Verbose:
		return "Verbose"
	case Display:
		return "Display"
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	case Fatal:
		return "Fatal"
	case NoLogging:
		return "NoLogging"
	default:
		return "Unknown"
	}
}

// Parse converts a case-insensitive name into a Severity. Unknown values
// fall back to Display.
func Parse(value string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "verbose", "debug":
		return Verbose, true
	case "display", "info", "":
		return Display, true
	case "warning", "warn":
		return Warning, true
	case "error":
		return Error, true
	case "fatal":
		return Fatal, true
	case "nologging", "none", "off":
		return NoLogging, true
	default:
		return Display, false
	}
}

// LevelFatal sits above slog.LevelError so handlers can render it distinctly.
const LevelFatal = slog.Level(12)

// Level maps the severity onto a slog level.
func (s Severity) Level() slog.Level {
	switch s {
	case Verbose:
		return slog.LevelDebug
	case Warning:
		return slog.LevelWarn
	case Error:
		return slog.LevelError
	case Fatal:
		return LevelFatal
	default:
		return slog.LevelInfo
	}
}

// Defaults are the presentation values used when a caller leaves the
// corresponding event field unset.
type Defaults struct {
	ScreenColor    geom.Color
	ScreenDuration time.Duration
	NotifyExpire   time.Duration
}

var policy = [...]Defaults{
	Verbose: {ScreenColor: geom.White, ScreenDuration: 10 * time.Second, NotifyExpire: 6 * time.Second},
	Display: {ScreenColor: geom.White, ScreenDuration: 10 * time.Second, NotifyExpire: 6 * time.Second},
	Warning: {ScreenColor: geom.Yellow, ScreenDuration: 20 * time.Second, NotifyExpire: 15 * time.Second},
	Error:   {ScreenColor: geom.Red, ScreenDuration: 30 * time.Second, NotifyExpire: 30 * time.Second},
	Fatal:   {ScreenColor: geom.Blue, ScreenDuration: 30 * time.Second, NotifyExpire: 30 * time.Second},
}

// Policy returns the defaults for s. Severities outside the table use the
// Verbose row.
func Policy(s Severity) Defaults {
	if int(s) < len(policy) {
		return policy[s]
	}
	return policy[Verbose]
}
