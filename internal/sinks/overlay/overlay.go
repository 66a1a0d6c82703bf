// Package overlay keeps the on-screen message board.
//
// Entries carry a key: a non-zero key replaces the existing entry with the
// same key, so a call site logging every frame occupies one line; key 0
// always adds a line. Entries expire after their duration. The board renders
// as a bordered block of colored lines.
package overlay

import (
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"dbglog/internal/geom"
)

const defaultMaxEntries = 32

// Entry is one line on the board.
type Entry struct {
	Key       uint64     `json:"key"`
	Message   string     `json:"message"`
	Color     geom.Color `json:"color"`
	ExpiresAt time.Time  `json:"expires_at"`
}

// Options configures a Board.
type Options struct {
	// MaxEntries caps the board; the oldest entry is dropped first.
	MaxEntries int
	// Out, when set, receives the rendered board after every update.
	Out   io.Writer
	Clock func() time.Time
}

// Board is the overlay sink.
type Board struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	out     io.Writer
	clock   func() time.Time
	frame   lipgloss.Style
	styleOf func(geom.Color) lipgloss.Style
}

// New constructs a Board.
func New(opts Options) *Board {
	b := &Board{max: opts.MaxEntries, out: opts.Out, clock: opts.Clock}
	if b.max <= 0 {
		b.max = defaultMaxEntries
	}
	if b.clock == nil {
		b.clock = time.Now
	}
	var r *lipgloss.Renderer
	if b.out != nil {
		r = lipgloss.NewRenderer(b.out)
	} else {
		r = lipgloss.DefaultRenderer()
	}
	b.frame = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.styleOf = func(c geom.Color) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	}
	return b
}

// Upsert adds or replaces an entry. A non-positive duration shows the entry
// until the next update.
func (b *Board) Upsert(key uint64, duration time.Duration, color geom.Color, message string) error {
	now := b.clock()
	if duration < 0 {
		duration = 0
	}
	entry := Entry{Key: key, Message: message, Color: color, ExpiresAt: now.Add(duration)}

	b.mu.Lock()
	b.pruneLocked(now)
	replaced := false
	if key != 0 {
		for i := range b.entries {
			if b.entries[i].Key == key {
				b.entries[i] = entry
				replaced = true
				break
			}
		}
	}
	if !replaced {
		b.entries = append(b.entries, entry)
		if over := len(b.entries) - b.max; over > 0 {
			b.entries = append(b.entries[:0], b.entries[over:]...)
		}
	}
	var rendered string
	if b.out != nil {
		rendered = b.renderLocked()
	}
	b.mu.Unlock()

	if b.out == nil {
		return nil
	}
	_, err := io.WriteString(b.out, rendered+"\n")
	return err
}

// Entries returns the live entries, oldest first.
func (b *Board) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked(b.clock())
	return append([]Entry(nil), b.entries...)
}

// Clear removes every entry.
func (b *Board) Clear() {
	b.mu.Lock()
	b.entries = nil
	b.mu.Unlock()
}

// Render returns the board as a bordered block, or "" when empty.
func (b *Board) Render() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pruneLocked(b.clock())
	return b.renderLocked()
}

func (b *Board) renderLocked() string {
	if len(b.entries) == 0 {
		return ""
	}
	lines := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		lines = append(lines, b.styleOf(e.Color).Render(e.Message))
	}
	return b.frame.Render(strings.Join(lines, "\n"))
}

// pruneLocked drops entries whose time has passed. An entry expiring exactly
// now survives so zero-duration entries render once.
func (b *Board) pruneLocked(now time.Time) {
	kept := b.entries[:0]
	for _, e := range b.entries {
		if !now.After(e.ExpiresAt) {
			kept = append(kept, e)
		}
	}
	b.entries = kept
}
