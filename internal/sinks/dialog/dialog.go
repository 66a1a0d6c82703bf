// Package dialog asks blocking questions on the terminal.
//
// When input is not interactive the dialog answers with the kind's default
// response without printing anything, so headless runs never hang.
package dialog

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"dbglog/internal/event"
)

const maxAttempts = 3

// Options configures a Prompter.
type Options struct {
	// In defaults to os.Stdin, Out to os.Stderr.
	In  io.Reader
	Out io.Writer
	// Interactive is auto (ask only when In is a terminal), always or never.
	Interactive string
}

// Prompter is the dialog sink.
type Prompter struct {
	mu          sync.Mutex
	in          *bufio.Reader
	out         io.Writer
	interactive bool
	title       lipgloss.Style
}

// New constructs a Prompter.
func New(opts Options) *Prompter {
	in := opts.In
	if in == nil {
		in = os.Stdin
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	p := &Prompter{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: interactive(opts.Interactive, in),
	}
	p.title = lipgloss.NewRenderer(out).NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	return p
}

// Interactive reports whether Ask prompts or answers with defaults.
func (p *Prompter) Interactive() bool { return p.interactive }

// Ask shows message under title and waits for one of kind's choices. An
// empty answer, end of input or repeated invalid answers select the default.
func (p *Prompter) Ask(ctx context.Context, message, title string, kind event.DialogKind) (event.Response, error) {
	def := kind.DefaultResponse()
	if !p.interactive {
		return def, nil
	}
	if err := ctx.Err(); err != nil {
		return def, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	choices := kind.Choices()
	if _, err := fmt.Fprintf(p.out, "%s\n%s\n", p.title.Render(title), message); err != nil {
		return def, err
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := fmt.Fprintf(p.out, "%s [default %s]: ", describeChoices(choices), def); err != nil {
			return def, err
		}
		line, err := p.in.ReadString('\n')
		answer := strings.TrimSpace(line)
		if answer == "" {
			if err != nil && err != io.EOF {
				return def, err
			}
			return def, nil
		}
		if r, ok := match(answer, choices); ok {
			return r, nil
		}
		if err != nil {
			return def, nil
		}
		if err := ctx.Err(); err != nil {
			return def, err
		}
	}
	return def, nil
}

func describeChoices(choices []event.Response) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = strconv.Itoa(i+1) + ") " + c.String()
	}
	return strings.Join(parts, "  ")
}

// match accepts a choice by number, by name, or by a unique name prefix.
func match(answer string, choices []event.Response) (event.Response, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(choices) {
			return choices[n-1], true
		}
		return 0, false
	}
	var found []event.Response
	for _, c := range choices {
		name := c.String()
		if strings.EqualFold(name, answer) {
			return c, true
		}
		if len(answer) <= len(name) && strings.EqualFold(name[:len(answer)], answer) {
			found = append(found, c)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return 0, false
}

func interactive(mode string, in io.Reader) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
