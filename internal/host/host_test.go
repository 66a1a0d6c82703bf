package host_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dbglog/internal/config"
	"dbglog/internal/event"
	"dbglog/internal/host"
	"dbglog/internal/ipc"
	"dbglog/internal/logging"
	"dbglog/internal/sinks/msglog"
	"dbglog/internal/testsupport"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newHost(t *testing.T, cfg *config.Config, stdin string) (*host.Host, *syncBuffer) {
	t.Helper()
	out := &syncBuffer{}
	opts := host.Options{Logger: logging.NewNop(), Out: out, SessionID: "sess-1"}
	if stdin != "" {
		opts.Stdin = strings.NewReader(stdin)
	}
	h, err := host.New(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h, out
}

func TestEmitReachesConsole(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithCategories(map[string]bool{"dbgAI": false}))
	h, out := newHost(t, cfg, "")

	require.NoError(t, h.Emit(context.Background(), ipc.EmitRequest{Template: "hello {0}", Args: []string{"42"}}))
	require.NoError(t, h.Emit(context.Background(), ipc.EmitRequest{Template: "hidden", Category: "AI"}))
	require.Contains(t, out.String(), "hello 42")
	require.NotContains(t, out.String(), "hidden")
}

func TestEmitRejectsFatal(t *testing.T) {
	h, _ := newHost(t, testsupport.NewConfig(t), "")
	err := h.Emit(context.Background(), ipc.EmitRequest{Template: "boom", Severity: "fatal"})
	require.ErrorIs(t, err, host.ErrRemoteFatal)
}

func TestEmitWithContextDescriptor(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Session.Mode = "Client"
	cfg.Session.Instance = 2
	h, out := newHost(t, cfg, "")

	require.NoError(t, h.Emit(context.Background(), ipc.EmitRequest{Template: "joined", Context: true}))
	require.Contains(t, out.String(), "[Client | Instance: 2] joined")
}

func TestMessageLogPersistsWithSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	h, _ := newHost(t, cfg, "")

	require.NoError(t, h.Emit(context.Background(), ipc.EmitRequest{Template: "saved", Severity: "warning", MessageLog: true}))
	require.NoError(t, h.Close())

	store, err := msglog.Open(msglog.Options{Path: cfg.MessageLog.Path})
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.Query(context.Background(), msglog.Filter{SessionID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "saved", entries[0].Message)
}

func TestRecordingDisabled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Spatial.Enabled = false
	h, _ := newHost(t, cfg, "")

	_, err := h.StartRecording("")
	require.ErrorIs(t, err, host.ErrSpatialDisabled)
	require.NotContains(t, h.Status().Sinks, "spatial")
}

func TestServingHostHasNoDialogSink(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Dialog.Enabled = true
	cfg.Dialog.Interactive = "always"
	h, out := newHost(t, cfg, "")
	require.NotContains(t, h.Status().Sinks, "dialog")

	answered := false
	ask := event.New().LogToMessageDialog(event.DialogYesNo, func(event.Response) { answered = true }, false).Build()
	h.Dispatcher().Log(ask, "continue?")

	require.False(t, answered)
	require.Contains(t, out.String(), "continue?")
}

func TestHostWithInputAnswersDialogs(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Dialog.Enabled = true
	cfg.Dialog.Interactive = "always"
	out := &syncBuffer{}
	h, err := host.New(cfg, host.Options{Logger: logging.NewNop(), Out: out, In: strings.NewReader("yes\n"), SessionID: "local"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	require.Contains(t, h.Status().Sinks, "dialog")

	var got event.Response
	ask := event.New().LogToMessageDialog(event.DialogYesNo, func(r event.Response) { got = r }, false).Build()
	h.Dispatcher().LogContext(context.Background(), ask, "continue?")

	require.Equal(t, event.ResponseYes, got)
}

func TestReloadAppliesCategories(t *testing.T) {
	h, _ := newHost(t, testsupport.NewConfig(t), "")
	next := config.Default()
	next.Categories = map[string]bool{"dbgNet": false}
	h.Reload(&next)

	report := h.Categories().List()
	require.Equal(t, 1, report.Disabled)
}

func TestRunPumpsStdinUntilEOF(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	input := "plain {0} line\n" +
		`{"template":"piped {0}","args":["7"],"severity":"warning"}` + "\n" +
		`{"template":"nope","severity":"fatal"}` + "\n"
	h, out := newHost(t, cfg, input)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := h.Run(ctx)
	if err != nil && strings.Contains(err.Error(), "operation not permitted") {
		t.Skipf("skipping host run test: %v", err)
	}
	require.NoError(t, err)

	got := out.String()
	require.Contains(t, got, "plain {0} line")
	require.Contains(t, got, "piped 7")
	require.NotContains(t, got, "nope")
	_, statErr := os.Stat(cfg.Control.Socket)
	require.True(t, errors.Is(statErr, os.ErrNotExist), "socket should be removed on shutdown")
}

func TestRunServesIPCAndHoldsLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	h, out := newHost(t, cfg, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	var client *ipc.Client
	require.Eventually(t, func() bool {
		c, err := ipc.Dial(cfg.Control.Socket)
		if err != nil {
			return false
		}
		client = c
		return true
	}, 5*time.Second, 20*time.Millisecond)
	defer client.Close()

	second, _ := newHost(t, cfg, "")
	err := second.Run(context.Background())
	require.ErrorIs(t, err, host.ErrAlreadyRunning)

	status, err := client.Status()
	require.NoError(t, err)
	require.Equal(t, "sess-1", status.SessionID)
	require.Equal(t, os.Getpid(), status.PID)

	key := int32(1)
	_, err = client.Emit(ipc.EmitRequest{Template: "hp {0}", Args: []string{"12"}, Destination: "screen", Key: &key})
	require.NoError(t, err)
	overlay, err := client.Overlay()
	require.NoError(t, err)
	require.Len(t, overlay.Entries, 1)
	require.Equal(t, "hp 12", overlay.Entries[0].Message)

	started, err := client.RecordStart("arena")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(started.Path, "arena.jsonl"))
	stopped, err := client.RecordStop()
	require.NoError(t, err)
	require.Equal(t, started.Path, stopped.Path)

	_, err = client.DisableCategories([]string{"dbg"})
	require.NoError(t, err)
	_, err = client.Emit(ipc.EmitRequest{Template: "muted"})
	require.NoError(t, err)
	require.NotContains(t, out.String(), "muted")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("host did not stop")
	}
}
