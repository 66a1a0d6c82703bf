package event_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"dbglog/internal/category"
	"dbglog/internal/event"
	"dbglog/internal/geom"
	"dbglog/internal/severity"
)

type named string

func (n named) OwnerName() string { return string(n) }

type fakeActor struct {
	named
	valid bool
}

func (a fakeActor) Valid() bool { return a.valid }
func (a fakeActor) LocalBounds() geom.Box {
	return geom.Box{Min: geom.Vec(-1, -2, -3), Max: geom.Vec(1, 2, 3)}
}
func (a fakeActor) Location() geom.Vector  { return geom.Vec(10, 20, 30) }
func (a fakeActor) Rotation() geom.Rotator { return geom.Rotator{Yaw: 90} }

func TestDefaultConfig(t *testing.T) {
	cfg := event.New().Build()
	if cfg.Severity != severity.Display {
		t.Fatalf("severity = %v, want Display", cfg.Severity)
	}
	if !cfg.Condition {
		t.Fatal("condition should default to true")
	}
	if cfg.Destination != event.Console {
		t.Fatalf("destination = %v, want console", cfg.Destination)
	}
	if cfg.ScreenDuration >= 0 || cfg.NotifyDuration >= 0 {
		t.Fatalf("durations should be unset, got %v / %v", cfg.ScreenDuration, cfg.NotifyDuration)
	}
	if !cfg.ScreenColor.IsTransparent() {
		t.Fatalf("screen color should be unset, got %v", cfg.ScreenColor)
	}
	if cfg.Spatial.Present() {
		t.Fatal("no annotation expected")
	}
	if cfg.Spatial.Scale != geom.One || cfg.Spatial.Color != geom.Orange {
		t.Fatalf("unexpected spatial defaults: %+v", cfg.Spatial)
	}
}

func TestSettersAreOrderIndependent(t *testing.T) {
	a := event.New().Warn().ScreenAndConsole().Prefix("AI").LogSourceLoc().ScrnKey(7).Build()
	b := event.New().ScrnKey(7).LogSourceLoc().Prefix("AI").ScreenAndConsole().Warn().Build()
	if diff := cmp.Diff(a, b, cmp.Comparer(func(x, y event.Config) bool {
		return x.Severity == y.Severity && x.Destination == y.Destination &&
			x.Prefix == y.Prefix && x.SourceLocation == y.SourceLocation &&
			x.ScreenKey == y.ScreenKey && x.HasScreenKey == y.HasScreenKey
	})); diff != "" {
		t.Fatalf("configs differ (-a +b):\n%s", diff)
	}
}

func TestSeverityShorthands(t *testing.T) {
	tests := []struct {
		name string
		b    *event.Builder
		want severity.Severity
	}{
		{"verbose", event.New().Verbose(), severity.Verbose},
		{"warn", event.New().Warn(), severity.Warning},
		{"error", event.New().Error(), severity.Error},
		{"fatal", event.New().Fatal(), severity.Fatal},
		{"nologging", event.New().NoLogging(), severity.NoLogging},
		{"last wins", event.New().Error().Verbose(), severity.Verbose},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.b.Build().Severity; got != tt.want {
				t.Fatalf("severity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFirstShapeWins(t *testing.T) {
	cfg := event.New().
		VisualLogSphere(named("npc"), geom.Vec(1, 2, 3), 50).
		VisualLogBox(named("npc"), geom.Zero, geom.One, geom.Zero).
		VisualLogText(named("other")).
		Build()
	if cfg.Spatial.Shape != event.ShapeSphere {
		t.Fatalf("shape = %v, want sphere", cfg.Spatial.Shape)
	}
	if cfg.Spatial.Location != geom.Vec(1, 2, 3) || cfg.Spatial.Params1.X != 50 {
		t.Fatalf("sphere parameters lost: %+v", cfg.Spatial)
	}
	if cfg.Spatial.OwnerName() != "npc" {
		t.Fatalf("owner = %q", cfg.Spatial.OwnerName())
	}
}

func TestTextAnnotationClaimsSlot(t *testing.T) {
	cfg := event.New().VisualLogText(named("a")).VisualLogArrow(named("b"), geom.Zero, geom.One).Build()
	if cfg.Spatial.Shape != event.ShapeNone || !cfg.Spatial.Text {
		t.Fatalf("expected text annotation, got %+v", cfg.Spatial)
	}
	if !cfg.Spatial.OnlyVisual {
		t.Fatal("visual setters default to only-visual")
	}
}

func TestSpatialOptions(t *testing.T) {
	cfg := event.New().VisualLogLine(named("x"), geom.Zero, geom.Vec(0, 0, 100), 2,
		event.WithColor(geom.Green), event.Wireframe(), event.AlsoToLog()).Build()
	s := cfg.Spatial
	if s.Color != geom.Green || !s.Wireframe || s.OnlyVisual {
		t.Fatalf("options not applied: %+v", s)
	}
	if s.Params1 != geom.Vec(0, 0, 100) || s.Params2.X != 2 {
		t.Fatalf("line parameters wrong: %+v", s)
	}
}

func TestVisualLogBounds(t *testing.T) {
	cfg := event.New().VisualLogBounds(named("o"), fakeActor{named: "crate", valid: true}).Build()
	s := cfg.Spatial
	if s.Shape != event.ShapeBox {
		t.Fatalf("shape = %v, want box", s.Shape)
	}
	if s.Location != geom.Vec(10, 20, 30) || s.Rotation.Yaw != 90 {
		t.Fatalf("actor transform not used: %+v", s)
	}
	if s.Params1 != geom.Vec(-1, -2, -3) || s.Params2 != geom.Vec(1, 2, 3) {
		t.Fatalf("bounds not used: %+v", s)
	}

	invalid := event.New().VisualLogBounds(named("o"), fakeActor{valid: false}).Build()
	if invalid.Spatial.Present() {
		t.Fatal("invalid actor must not set a shape")
	}
	// An ignored bounds call leaves the slot open.
	later := event.New().VisualLogBounds(named("o"), nil).VisualLogDisk(named("o"), geom.Zero, geom.Vec(0, 0, 1), 5, 1).Build()
	if later.Spatial.Shape != event.ShapeDisk {
		t.Fatalf("shape = %v, want disk", later.Spatial.Shape)
	}
}

func TestChannelFlags(t *testing.T) {
	var got event.Response
	cfg := event.New().
		LogToSlateNotify(true).
		LogToMessageLog(true).
		LogToMessageDialog(event.DialogYesNo, func(r event.Response) { got = r }, false).
		NotifyDuration(3 * time.Second).
		Build()
	if !cfg.ToNotify || !cfg.OnlyNotify {
		t.Fatal("notify flags not set")
	}
	if !cfg.ToMessageLog || !cfg.ShowLogNow {
		t.Fatal("message log flags not set")
	}
	if !cfg.ToDialog || cfg.OnlyDialog || cfg.DialogKind != event.DialogYesNo {
		t.Fatalf("dialog flags wrong: %+v", cfg)
	}
	cfg.OnResponse(event.ResponseYes)
	if got != event.ResponseYes {
		t.Fatalf("callback got %v", got)
	}
	if cfg.NotifyDuration != 3*time.Second {
		t.Fatalf("notify duration = %v", cfg.NotifyDuration)
	}
}

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name string
		cfg  event.Config
		want string
	}{
		{"default", event.New().Build(), "dbg"},
		{"runtime name", event.New().CategoryName("Foo").Build(), "dbgFoo"},
		{"runtime default name", event.New().CategoryName("dbg").Build(), "dbg"},
		{"runtime default name any case", event.New().CategoryName("DBG").Build(), "dbg"},
		{"explicit verbatim", event.New().Category(category.New("LogAI")).Build(), "LogAI"},
		{"explicit beats runtime", event.New().CategoryName("Foo").Category(category.New("LogAI")).Build(), "LogAI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.ResolveCategory(); got != tt.want {
				t.Fatalf("ResolveCategory() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := event.New().Warn().ScrnColor(geom.Red).Build()
	cfg.ApplyDefaults()
	if cfg.ScreenColor != geom.Red {
		t.Fatalf("explicit color overwritten: %v", cfg.ScreenColor)
	}
	if cfg.ScreenDuration != 20*time.Second {
		t.Fatalf("screen duration = %v, want 20s", cfg.ScreenDuration)
	}
	if cfg.NotifyDuration != 15*time.Second {
		t.Fatalf("notify duration = %v, want 15s", cfg.NotifyDuration)
	}

	explicit := event.New().Error().ScrnDuration(0).Build()
	explicit.ApplyDefaults()
	if explicit.ScreenDuration != 0 {
		t.Fatalf("zero duration is explicit, got %v", explicit.ScreenDuration)
	}
	if explicit.ScreenColor != geom.Red {
		t.Fatalf("error color = %v, want red", explicit.ScreenColor)
	}
}

func TestDropped(t *testing.T) {
	tests := []struct {
		name string
		cfg  event.Config
		want bool
	}{
		{"false condition", event.New().Condition(false).Build(), true},
		{"nologging", event.New().NoLogging().Build(), true},
		{"fatal", event.New().Fatal().Build(), false},
		{"default", event.New().Build(), false},
	}
	for _, tt := range tests {
		if got := tt.cfg.Dropped(); got != tt.want {
			t.Fatalf("%s: Dropped() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProcessString(t *testing.T) {
	if got := (event.Process{Mode: "Client", Instance: 0}).String(); got != "Client | Instance: 0" {
		t.Fatalf("got %q", got)
	}
	if got := (event.Process{Instance: 2}).String(); got != "Standalone | Instance: 2" {
		t.Fatalf("got %q", got)
	}
}

func TestDialogKinds(t *testing.T) {
	tests := []struct {
		input string
		kind  event.DialogKind
		def   event.Response
	}{
		{"ok", event.DialogOk, event.ResponseOk},
		{"yes-no", event.DialogYesNo, event.ResponseNo},
		{"OkCancel", event.DialogOkCancel, event.ResponseCancel},
		{"yes_no_cancel", event.DialogYesNoCancel, event.ResponseCancel},
		{"cancelretrycontinue", event.DialogCancelRetryContinue, event.ResponseCancel},
		{"yesnoyesallnoall", event.DialogYesNoYesAllNoAll, event.ResponseNo},
	}
	for _, tt := range tests {
		kind, ok := event.ParseDialogKind(tt.input)
		if !ok || kind != tt.kind {
			t.Fatalf("ParseDialogKind(%q) = %v,%v", tt.input, kind, ok)
		}
		if got := kind.DefaultResponse(); got != tt.def {
			t.Fatalf("%q default = %v, want %v", tt.input, got, tt.def)
		}
		found := false
		for _, r := range kind.Choices() {
			if r == tt.def {
				found = true
			}
		}
		if !found {
			t.Fatalf("%q default %v not among choices", tt.input, tt.def)
		}
	}
	if _, ok := event.ParseDialogKind("maybe"); ok {
		t.Fatal("unknown kind should not parse")
	}
}

func TestShapeText(t *testing.T) {
	var s event.Shape
	if err := s.UnmarshalText([]byte("capsule")); err != nil || s != event.ShapeCapsule {
		t.Fatalf("UnmarshalText = %v, %v", s, err)
	}
	if err := s.UnmarshalText([]byte("hexagon")); err == nil {
		t.Fatal("expected error for unknown shape")
	}
}

func TestDrawsAccumulate(t *testing.T) {
	cfg := event.New().
		VisualLogSphere(named("npc"), geom.Zero, 10).
		DrawLine(geom.Zero, geom.Vec(0, 0, 50)).
		DrawString(geom.Vec(1, 1, 1), "waypoint", event.DrawColor(geom.Green), event.LifeTime(2*time.Second)).
		DrawSphere(geom.Vec(5, 5, 5), 30, 12, event.Persistent(), event.Thickness(1.5)).
		Build()

	if len(cfg.Draws) != 3 {
		t.Fatalf("draws = %d, want 3", len(cfg.Draws))
	}
	if cfg.Spatial.Shape != event.ShapeSphere {
		t.Fatalf("draws must not claim the annotation slot: %+v", cfg.Spatial)
	}

	line := cfg.Draws[0]
	if line.Shape != event.ShapeLine || line.Params1 != geom.Vec(0, 0, 50) {
		t.Fatalf("line = %+v", line)
	}
	if line.Color != geom.Orange || line.LifeTime != event.Unset || line.Persistent {
		t.Fatalf("line defaults wrong: %+v", line)
	}

	text := cfg.Draws[1]
	if text.Shape != event.ShapeString || text.Text != "waypoint" || text.Color != geom.Green || text.LifeTime != 2*time.Second {
		t.Fatalf("string = %+v", text)
	}

	sphere := cfg.Draws[2]
	if sphere.Params1.X != 30 || sphere.Segments != 12 || !sphere.Persistent || sphere.Thickness != 1.5 {
		t.Fatalf("sphere = %+v", sphere)
	}
}

func TestDrawParameters(t *testing.T) {
	cfg := event.New().
		DrawCapsule(geom.Vec(1, 2, 3), 40, 10, geom.Rotator{Yaw: 45}).
		DrawCone(geom.Zero, geom.Vec(1, 0, 0), 100, 30, 20, 8).
		DrawCylinder(geom.Zero, geom.Vec(0, 0, 10), 4, 16).
		DrawArrow(geom.Zero, geom.One, 5).
		DrawPoint(geom.One, 3).
		DrawBox(geom.Zero, geom.Vec(2, 2, 2)).
		Build()

	want := []event.Shape{
		event.ShapeCapsule, event.ShapeCone, event.ShapeCylinder,
		event.ShapeArrow, event.ShapePoint, event.ShapeBox,
	}
	if len(cfg.Draws) != len(want) {
		t.Fatalf("draws = %d, want %d", len(cfg.Draws), len(want))
	}
	for i, shape := range want {
		if cfg.Draws[i].Shape != shape {
			t.Fatalf("draw %d shape = %v, want %v", i, cfg.Draws[i].Shape, shape)
		}
	}
	if c := cfg.Draws[0]; c.Params1 != geom.Vec(40, 10, 0) || c.Rotation.Yaw != 45 {
		t.Fatalf("capsule = %+v", c)
	}
	if c := cfg.Draws[1]; c.Params2 != geom.Vec(100, 30, 20) || c.Segments != 8 {
		t.Fatalf("cone = %+v", c)
	}
	if c := cfg.Draws[2]; c.Params1 != geom.Vec(0, 0, 10) || c.Params2.X != 4 || c.Segments != 16 {
		t.Fatalf("cylinder = %+v", c)
	}
	if c := cfg.Draws[3]; c.Params2.X != 5 {
		t.Fatalf("arrow = %+v", c)
	}
	if c := cfg.Draws[4]; c.Params1.X != 3 {
		t.Fatalf("point = %+v", c)
	}
	if c := cfg.Draws[5]; c.Params1 != geom.Vec(2, 2, 2) {
		t.Fatalf("box = %+v", c)
	}
}

func TestBuildCopiesDraws(t *testing.T) {
	b := event.New().DrawPoint(geom.Zero, 1)
	first := b.Build()
	first.Draws[0].Text = "changed"
	b.DrawPoint(geom.One, 2)
	second := b.Build()

	if len(first.Draws) != 1 || len(second.Draws) != 2 {
		t.Fatalf("draws = %d and %d, want 1 and 2", len(first.Draws), len(second.Draws))
	}
	if second.Draws[0].Text != "" {
		t.Fatal("a built config shares draws with its builder")
	}
}
