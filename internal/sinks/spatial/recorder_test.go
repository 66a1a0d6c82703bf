package spatial_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dbglog/internal/event"
	"dbglog/internal/geom"
	"dbglog/internal/severity"
	"dbglog/internal/sinks/spatial"
)

type owner string

func (o owner) OwnerName() string { return string(o) }

func fixedClock() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

func TestRecordingRoundTrip(t *testing.T) {
	dir := t.TempDir()
	rec := spatial.New(spatial.Options{Dir: dir, SessionID: "sess", Clock: fixedClock})
	require.False(t, rec.Recording())

	path, err := rec.Start("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "rec-20240506-070809.jsonl"), path)
	require.True(t, rec.Recording())

	annotation := event.New().VisualLogSphere(owner("Player"), geom.Vec(1, 2, 3), 25, event.Wireframe()).Build().Spatial
	require.NoError(t, rec.Emit(annotation, "dbgAI", severity.Warning, "target acquired"))

	stoppedPath, written, err := rec.Stop()
	require.NoError(t, err)
	require.Equal(t, path, stoppedPath)
	require.Equal(t, 1, written)
	require.False(t, rec.Recording())

	records, err := spatial.ReadRecording(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	got := records[0]
	require.Equal(t, event.ShapeSphere, got.Shape)
	require.Equal(t, "Player", got.Owner)
	require.Equal(t, geom.Vec(1, 2, 3), got.Location)
	require.Equal(t, 25.0, got.Params1.X)
	require.True(t, got.Wireframe)
	require.Equal(t, "Warning", got.Severity)
	require.Equal(t, "sess", got.SessionID)
	require.Equal(t, geom.Orange.Hex(), got.Color)
}

func TestEmitWhileDisarmedIsIgnored(t *testing.T) {
	rec := spatial.New(spatial.Options{Dir: t.TempDir()})
	require.NoError(t, rec.Emit(event.Spatial{Shape: event.ShapeBox}, "dbg", severity.Display, "ignored"))
}

func TestDrawRecordsImmediateShapes(t *testing.T) {
	dir := t.TempDir()
	rec := spatial.New(spatial.Options{Dir: dir, SessionID: "sess", Clock: fixedClock})
	cfg := event.New().
		DrawString(geom.Vec(4, 5, 6), "spawn", event.LifeTime(1500*time.Millisecond)).
		DrawCylinder(geom.Zero, geom.Vec(0, 0, 20), 3, 12, event.Persistent(), event.Thickness(2)).
		Build()

	require.NoError(t, rec.Draw(cfg.Draws[0], "dbgNav"))

	path, err := rec.Start("draws")
	require.NoError(t, err)
	for _, d := range cfg.Draws {
		require.NoError(t, rec.Draw(d, "dbgNav"))
	}
	_, written, err := rec.Stop()
	require.NoError(t, err)
	require.Equal(t, 2, written)

	records, err := spatial.ReadRecording(path)
	require.NoError(t, err)
	require.Len(t, records, 2)

	label := records[0]
	require.True(t, label.Draw)
	require.Equal(t, event.ShapeString, label.Shape)
	require.Equal(t, "spawn", label.Label)
	require.Equal(t, int64(1500), label.LifeTimeMS)
	require.Equal(t, "dbgNav", label.Category)
	require.Empty(t, label.Severity)

	cyl := records[1]
	require.Equal(t, event.ShapeCylinder, cyl.Shape)
	require.Equal(t, 12, cyl.Segments)
	require.True(t, cyl.Persistent)
	require.Equal(t, 2.0, cyl.Thickness)
	require.Zero(t, cyl.LifeTimeMS)
}

func TestStopWithoutStart(t *testing.T) {
	rec := spatial.New(spatial.Options{Dir: t.TempDir()})
	_, _, err := rec.Stop()
	require.True(t, errors.Is(err, spatial.ErrNotRecording))
}

func TestStartTwiceReturnsActivePath(t *testing.T) {
	rec := spatial.New(spatial.Options{Dir: t.TempDir()})
	first, err := rec.Start("session-a")
	require.NoError(t, err)
	second, err := rec.Start("session-b")
	require.NoError(t, err)
	require.Equal(t, first, second)
	_, _, err = rec.Stop()
	require.NoError(t, err)
}

func TestRecordingLockIsExclusive(t *testing.T) {
	dir := t.TempDir()
	a := spatial.New(spatial.Options{Dir: dir})
	b := spatial.New(spatial.Options{Dir: dir})

	_, err := a.Start("shared")
	require.NoError(t, err)
	_, err = b.Start("shared")
	require.True(t, errors.Is(err, spatial.ErrRecordingLocked), "got %v", err)

	_, _, err = a.Stop()
	require.NoError(t, err)
	_, err = b.Start("shared")
	require.NoError(t, err)
	_, _, err = b.Stop()
	require.NoError(t, err)
}
