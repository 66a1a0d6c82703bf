package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type panicHandler struct{ NoopHandler }

func (panicHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (panicHandler) Handle(context.Context, slog.Record) error { panic("broken handler") }

type failingHandler struct{ NoopHandler }

func (failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestFanoutHandlerIsolatesFailures(t *testing.T) {
	var buf bytes.Buffer
	tail := slog.NewJSONHandler(&buf, nil)

	h := TeeHandler(panicHandler{}, failingHandler{}, tail)
	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelInfo, "still delivered", 0))
	if err == nil {
		t.Fatal("expected the first failure to be reported")
	}
	if buf.Len() == 0 {
		t.Fatal("healthy handler should still receive the record")
	}
}

func TestTeeHandlerCollapses(t *testing.T) {
	if _, ok := TeeHandler(nil, nil).(NoopHandler); !ok {
		t.Fatal("all-nil tee should discard")
	}
	inner := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if got := TeeHandler(nil, inner, nil); got != slog.Handler(inner) {
		t.Fatalf("single handler should be returned as is, got %T", got)
	}
}

func TestTeeHandlerPairsConsoleWithJSON(t *testing.T) {
	var console, file bytes.Buffer
	h := TeeHandler(
		newPrettyHandler(&console, slog.LevelWarn, false, false),
		newJSONHandler(&file, slog.LevelDebug, false),
	)
	logger := slog.New(h).With(String(FieldComponent, "host"))
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Fatal("tee should be enabled when any handler is")
	}

	logger.Debug("category created", String(FieldCategory, "dbgNet"))
	logger.Warn("sink failed", String(FieldSink, "overlay"))

	if strings.Contains(console.String(), "category created") {
		t.Fatalf("console handler should filter debug records:\n%s", console.String())
	}
	if !strings.Contains(console.String(), "WARN [host]") {
		t.Fatalf("expected console header, got:\n%s", console.String())
	}

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected both records in the JSON stream, got %d:\n%s", len(lines), file.String())
	}
	var first map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if first["level"] != "debug" || first[FieldCategory] != "dbgNet" || first[FieldComponent] != "host" {
		t.Fatalf("unexpected JSON record: %v", first)
	}
}

func TestTeeHandlerWithGroup(t *testing.T) {
	var buf1, buf2 bytes.Buffer
	h := TeeHandler(slog.NewJSONHandler(&buf1, nil), slog.NewJSONHandler(&buf2, nil))
	slog.New(h).WithGroup("rpc").Info("call", "method", "Emit")

	for _, out := range []string{buf1.String(), buf2.String()} {
		if !strings.Contains(out, `"rpc":{"method":"Emit"}`) {
			t.Fatalf("expected grouped attrs, got %s", out)
		}
	}
}
