// Package control is the operator surface over the category registry:
// enabling and disabling categories by name (or all at once) and reporting
// their states.
package control

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"dbglog/internal/category"
	"dbglog/internal/logging"
)

// AllKeyword targets every registered category when given as the first name.
const AllKeyword = "All"

// ErrNoCategories is returned when a toggle is requested without names.
var ErrNoCategories = errors.New("no category names provided")

// Result describes the effect of a toggle.
type Result struct {
	Enabled bool     `json:"enabled"`
	All     bool     `json:"all"`
	Updated int      `json:"updated"`
	Created []string `json:"created,omitempty"`
}

// Report is a snapshot of every registered category.
type Report struct {
	Categories []category.State `json:"categories"`
	Enabled    int              `json:"enabled"`
	Disabled   int              `json:"disabled"`
}

// Surface applies operator commands to a registry.
type Surface struct {
	registry *category.Registry
	logger   *slog.Logger
}

// New constructs a Surface. A nil logger discards warnings.
func New(registry *category.Registry, logger *slog.Logger) *Surface {
	if registry == nil {
		registry = category.Default()
	}
	return &Surface{registry: registry, logger: logging.NewComponentLogger(logger, "control")}
}

// Enable switches the named categories on.
func (s *Surface) Enable(names []string) (Result, error) {
	return s.toggle(names, true)
}

// Disable switches the named categories off.
func (s *Surface) Disable(names []string) (Result, error) {
	return s.toggle(names, false)
}

func (s *Surface) toggle(names []string, enabled bool) (Result, error) {
	verb := "disable"
	if enabled {
		verb = "enable"
	}
	names = cleanNames(names)
	if len(names) == 0 {
		logging.WarnWithContext(s.logger, "failed to "+verb+" log category: no names provided", "category_toggle_rejected",
			logging.String(logging.FieldErrorHint, "pass one or more category names, or All"),
		)
		return Result{Enabled: enabled}, ErrNoCategories
	}

	if strings.EqualFold(names[0], AllKeyword) {
		n := s.registry.SetAllStates(enabled)
		s.logger.Info("category states updated",
			logging.String(logging.FieldEventType, "category_toggle_all"),
			logging.Bool("enabled", enabled),
			logging.Int("count", n),
		)
		return Result{Enabled: enabled, All: true, Updated: n}, nil
	}

	res := Result{Enabled: enabled}
	for _, name := range names {
		if s.registry.SetState(name, enabled) {
			res.Created = append(res.Created, name)
			logging.WarnWithContext(s.logger, "category not registered, creating entry", "category_created",
				logging.Category(name),
				logging.String(logging.FieldErrorHint, "runtime categories are named with the dbg prefix"),
			)
		}
		res.Updated++
	}
	return res, nil
}

// Apply sets the states of a name to state map, as loaded from config. It
// returns how many entries were applied; unknown names are registered
// silently.
func (s *Surface) Apply(states map[string]bool) int {
	for name, enabled := range states {
		s.registry.SetState(name, enabled)
	}
	return len(states)
}

// List snapshots every registered category.
func (s *Surface) List() Report {
	states := s.registry.List()
	report := Report{Categories: states}
	for _, st := range states {
		if st.Enabled {
			report.Enabled++
		} else {
			report.Disabled++
		}
	}
	return report
}

// String renders the plain-text report.
func (r Report) String() string {
	if len(r.Categories) == 0 {
		return "No categories are registered."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Categories: Enabled = %d, Disabled = %d\n", r.Enabled, r.Disabled)
	for _, st := range r.Categories {
		if st.Enabled {
			fmt.Fprintf(&sb, "- [Enabled]  %s\n", st.Name)
		} else {
			fmt.Fprintf(&sb, "- [Disabled] %s\n", st.Name)
		}
	}
	return sb.String()
}

// Table renders the report as a table with a totals footer.
func (r Report) Table() string {
	if len(r.Categories) == 0 {
		return "No categories are registered."
	}
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	tw := table.NewWriter()
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{"Category", "State"})
	for _, st := range r.Categories {
		state := "disabled"
		if st.Enabled {
			state = "enabled"
		}
		tw.AppendRow(table.Row{st.Name, state})
	}
	tw.AppendFooter(table.Row{"Total", fmt.Sprintf("%d enabled, %d disabled", r.Enabled, r.Disabled)})
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignLeft, AlignFooter: text.AlignLeft}})
	return tw.Render()
}

func cleanNames(names []string) []string {
	out := names[:0:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}
