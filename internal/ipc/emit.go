package ipc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dbglog/internal/event"
	"dbglog/internal/geom"
	"dbglog/internal/severity"
)

// EmitRequest describes one event sent from outside the host process. It is
// shared by the CLI's remote and local emit paths.
type EmitRequest struct {
	Template string   `json:"template"`
	Args     []string `json:"args,omitempty"`

	Severity string `json:"severity,omitempty"`
	// Destination is console, screen or both.
	Destination string `json:"destination,omitempty"`
	Category    string `json:"category,omitempty"`
	Prefix      string `json:"prefix,omitempty"`
	Timestamp   bool   `json:"timestamp,omitempty"`
	TimeFormat  string `json:"time_format,omitempty"`
	Source      bool   `json:"source,omitempty"`
	// Context asks the host to attach its process descriptor.
	Context bool `json:"context,omitempty"`

	Color      string `json:"color,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Key        *int32 `json:"key,omitempty"`

	Notify     bool `json:"notify,omitempty"`
	OnlyNotify bool `json:"only_notify,omitempty"`
	MessageLog bool `json:"message_log,omitempty"`
	ShowLog    bool `json:"show_log,omitempty"`
}

// Builder translates the request into event options. Context is attached by
// the caller since only the emitting process knows it.
func (r EmitRequest) Builder() (*event.Builder, error) {
	b := event.New()

	sev, ok := severity.Parse(r.Severity)
	if !ok {
		return nil, fmt.Errorf("unknown severity %q", r.Severity)
	}
	b.Severity(sev)

	switch strings.ToLower(strings.TrimSpace(r.Destination)) {
	case "", "console":
		b.Console()
	case "screen":
		b.Screen()
	case "both":
		b.ScreenAndConsole()
	default:
		return nil, fmt.Errorf("unknown destination %q", r.Destination)
	}

	if r.Category != "" {
		b.CategoryName(r.Category)
	}
	if r.Prefix != "" {
		b.Prefix(r.Prefix)
	}
	if r.TimeFormat != "" {
		b.LogDateAndTimeFormat(r.TimeFormat)
	} else if r.Timestamp {
		b.LogDateAndTime()
	}
	if r.Source {
		b.LogSourceLoc()
	}
	if r.Color != "" {
		c, err := geom.ParseColor(r.Color)
		if err != nil {
			return nil, err
		}
		b.ScrnColor(c)
	}
	if r.DurationMS > 0 {
		d := time.Duration(r.DurationMS) * time.Millisecond
		b.ScrnDuration(d)
		b.NotifyDuration(d)
	}
	if r.Key != nil {
		b.ScrnKey(*r.Key)
	}
	if r.Notify || r.OnlyNotify {
		b.LogToSlateNotify(r.OnlyNotify)
	}
	if r.MessageLog || r.ShowLog {
		b.LogToMessageLog(r.ShowLog)
	}
	return b, nil
}

// decimalArg is a plain decimal with no exponent, sign prefix or leading
// zeros.
var decimalArg = regexp.MustCompile(`^-?(0|[1-9][0-9]*)\.[0-9]+$`)

// BoxedArgs converts the textual arguments into values the formatter can
// apply numeric specs to. Only canonical spellings are parsed: "42" becomes
// an int64 and "3.50" a float64, while "007", "+1", "1e3" or "NaN" stay
// strings so the text is rendered as typed.
func (r EmitRequest) BoxedArgs() []any {
	out := make([]any, 0, len(r.Args))
	for _, raw := range r.Args {
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil && strconv.FormatInt(i, 10) == raw {
			out = append(out, i)
			continue
		}
		if decimalArg.MatchString(raw) {
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				out = append(out, f)
				continue
			}
		}
		out = append(out, raw)
	}
	return out
}
