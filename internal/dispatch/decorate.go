package dispatch

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ncruces/go-strftime"

	"dbglog/internal/event"
)

// DefaultTimestampLayout is the strftime layout used when an event asks for
// a timestamp without naming a format.
const DefaultTimestampLayout = "%Y.%m.%d-%H.%M.%S"

// decorate prepends the optional segments in fixed order: timestamp, prefix
// tag, context descriptor, source location.
func (d *Dispatcher) decorate(cfg *event.Config, loc event.Location, message string) string {
	var sb strings.Builder
	if cfg.Timestamp {
		layout := cfg.TimestampFormat
		if layout == "" {
			layout = d.timestampLayout
		}
		sb.WriteByte('(')
		sb.WriteString(strftime.Format(layout, d.now()))
		sb.WriteString(") ")
	}
	if cfg.Prefix != "" {
		sb.WriteByte('[')
		sb.WriteString(cfg.Prefix)
		sb.WriteString("] ")
	}
	if desc := describeContext(cfg.Context); desc != "" {
		sb.WriteByte('[')
		sb.WriteString(desc)
		sb.WriteString("] ")
	}
	if cfg.SourceLocation && !loc.IsZero() {
		sb.WriteString("[File: ")
		sb.WriteString(filepath.Base(loc.File))
		sb.WriteString(" (")
		sb.WriteString(strconv.Itoa(loc.Line))
		sb.WriteString(")")
		if loc.Function != "" {
			sb.WriteString(", ")
			sb.WriteString(loc.Function)
		}
		sb.WriteString("] ")
	}
	if sb.Len() == 0 {
		return message
	}
	sb.WriteString(message)
	return sb.String()
}

// describeContext renders a context descriptor. A nil pointer wrapped in the
// interface, or a Stringer that panics, yields "".
func describeContext(s fmt.Stringer) (desc string) {
	if s == nil {
		return ""
	}
	defer func() {
		if recover() != nil {
			desc = ""
		}
	}()
	return s.String()
}

func (d *Dispatcher) now() time.Time {
	if d.clock != nil {
		return d.clock()
	}
	return time.Now()
}
