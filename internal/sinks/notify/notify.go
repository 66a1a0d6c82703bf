// Package notify shows transient toast notifications in the terminal.
package notify

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const defaultMaxVisible = 4

// Toast is one notification.
type Toast struct {
	Message   string    `json:"message"`
	ShownAt   time.Time `json:"shown_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Options configures a Toaster.
type Options struct {
	// Out defaults to os.Stderr.
	Out io.Writer
	// MaxVisible caps how many unexpired toasts are tracked.
	MaxVisible int
	Clock      func() time.Time
}

// Toaster is the notification sink.
type Toaster struct {
	mu      sync.Mutex
	out     io.Writer
	max     int
	clock   func() time.Time
	visible []Toast
	style   lipgloss.Style
}

// New constructs a Toaster.
func New(opts Options) *Toaster {
	t := &Toaster{out: opts.Out, max: opts.MaxVisible, clock: opts.Clock}
	if t.out == nil {
		t.out = os.Stderr
	}
	if t.max <= 0 {
		t.max = defaultMaxVisible
	}
	if t.clock == nil {
		t.clock = time.Now
	}
	t.style = lipgloss.NewRenderer(t.out).NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("214")).
		Padding(0, 1)
	return t
}

// Show prints the toast and tracks it until it expires.
func (t *Toaster) Show(message string, expire time.Duration) error {
	now := t.clock()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(now)
	t.visible = append(t.visible, Toast{Message: message, ShownAt: now, ExpiresAt: now.Add(expire)})
	if over := len(t.visible) - t.max; over > 0 {
		t.visible = append(t.visible[:0], t.visible[over:]...)
	}
	_, err := io.WriteString(t.out, t.style.Render(message)+"\n")
	return err
}

// Visible returns the unexpired toasts, oldest first.
func (t *Toaster) Visible() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked(t.clock())
	return append([]Toast(nil), t.visible...)
}

func (t *Toaster) pruneLocked(now time.Time) {
	kept := t.visible[:0]
	for _, toast := range t.visible {
		if now.Before(toast.ExpiresAt) {
			kept = append(kept, toast)
		}
	}
	t.visible = kept
}
