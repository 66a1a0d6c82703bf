package ipc_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dbglog/internal/category"
	"dbglog/internal/control"
	"dbglog/internal/event"
	"dbglog/internal/geom"
	"dbglog/internal/ipc"
	"dbglog/internal/logging"
	"dbglog/internal/severity"
)

type fakeBackend struct {
	surface *control.Surface

	mu        sync.Mutex
	recording string
	emitted   []ipc.EmitRequest
	requests  []string
}

func (f *fakeBackend) Categories() *control.Surface { return f.surface }

func (f *fakeBackend) StartRecording(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recording = "/rec/" + name + ".jsonl"
	return f.recording, nil
}

func (f *fakeBackend) StopRecording() (string, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recording == "" {
		return "", 0, errors.New("spatial recorder is not recording")
	}
	path := f.recording
	f.recording = ""
	return path, 7, nil
}

func (f *fakeBackend) Emit(ctx context.Context, req ipc.EmitRequest) error {
	if _, err := req.Builder(); err != nil {
		return err
	}
	id, _ := logging.RequestIDFromContext(ctx)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emitted = append(f.emitted, req)
	f.requests = append(f.requests, id)
	return nil
}

func (f *fakeBackend) Status() ipc.StatusResponse {
	return ipc.StatusResponse{PID: 42, SessionID: "sess", Sinks: []string{"console"}}
}

func (f *fakeBackend) Overlay() []ipc.OverlayEntry {
	return []ipc.OverlayEntry{{Key: 9, Message: "hp low", Color: "#ff0000"}}
}

func startServer(t *testing.T) (*fakeBackend, *ipc.Client) {
	t.Helper()
	// Unix socket paths are length limited; t.TempDir can be too deep.
	dir, err := os.MkdirTemp("", "dbglog-ipc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	backend := &fakeBackend{surface: control.New(category.NewRegistry(), logging.NewNop())}
	socket := filepath.Join(dir, "dbglog.sock")
	srv, err := ipc.NewServer(context.Background(), socket, backend, logging.NewNop())
	if err != nil {
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping IPC server test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := ipc.Dial(socket)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return backend, client
}

func TestCategoryRPCs(t *testing.T) {
	_, client := startServer(t)

	toggled, err := client.DisableCategories([]string{"dbgAI"})
	require.NoError(t, err)
	require.Equal(t, []string{"dbgAI"}, toggled.Result.Created)

	list, err := client.Categories()
	require.NoError(t, err)
	require.Equal(t, 1, list.Report.Enabled)
	require.Equal(t, 1, list.Report.Disabled)

	toggled, err = client.EnableCategories([]string{"All"})
	require.NoError(t, err)
	require.True(t, toggled.Result.All)
	require.Equal(t, 2, toggled.Result.Updated)

	_, err = client.EnableCategories(nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), control.ErrNoCategories.Error())
}

func TestRecordRPCs(t *testing.T) {
	_, client := startServer(t)

	_, err := client.RecordStop()
	require.Error(t, err)

	started, err := client.RecordStart("arena")
	require.NoError(t, err)
	require.Equal(t, "/rec/arena.jsonl", started.Path)

	stopped, err := client.RecordStop()
	require.NoError(t, err)
	require.Equal(t, started.Path, stopped.Path)
	require.Equal(t, 7, stopped.Written)
}

func TestEmitStatusOverlayRPCs(t *testing.T) {
	backend, client := startServer(t)

	key := int32(4)
	resp, err := client.Emit(ipc.EmitRequest{Template: "hp {0}", Args: []string{"12"}, Severity: "warning", Destination: "both", Key: &key})
	require.NoError(t, err)
	require.True(t, resp.Accepted)

	_, err = client.Emit(ipc.EmitRequest{Template: "x", Destination: "sideways"})
	require.Error(t, err)

	backend.mu.Lock()
	require.Len(t, backend.emitted, 1)
	require.Equal(t, int32(4), *backend.emitted[0].Key)
	backend.mu.Unlock()

	status, err := client.Status()
	require.NoError(t, err)
	require.Equal(t, 42, status.PID)
	require.Equal(t, "sess", status.SessionID)

	overlay, err := client.Overlay()
	require.NoError(t, err)
	require.Len(t, overlay.Entries, 1)
	require.Equal(t, "hp low", overlay.Entries[0].Message)
}

func TestEmitRequestBuilder(t *testing.T) {
	key := int32(2)
	req := ipc.EmitRequest{
		Severity:    "error",
		Destination: "screen",
		Category:    "AI",
		Prefix:      "Bot",
		Color:       "blue",
		DurationMS:  1500,
		Key:         &key,
		OnlyNotify:  true,
		ShowLog:     true,
	}
	b, err := req.Builder()
	require.NoError(t, err)
	cfg := b.Build()
	require.Equal(t, severity.Error, cfg.Severity)
	require.Equal(t, event.Screen, cfg.Destination)
	require.Equal(t, "dbgAI", cfg.ResolveCategory())
	require.Equal(t, "Bot", cfg.Prefix)
	require.Equal(t, geom.Blue, cfg.ScreenColor)
	require.Equal(t, 1500*time.Millisecond, cfg.ScreenDuration)
	require.True(t, cfg.HasScreenKey)
	require.True(t, cfg.ToNotify)
	require.True(t, cfg.OnlyNotify)
	require.True(t, cfg.ToMessageLog)
	require.True(t, cfg.ShowLogNow)

	_, err = ipc.EmitRequest{Severity: "loud"}.Builder()
	require.Error(t, err)
	_, err = ipc.EmitRequest{Color: "plaid"}.Builder()
	require.Error(t, err)
}

func TestBoxedArgs(t *testing.T) {
	got := ipc.EmitRequest{Args: []string{"42", "-7", "3.5", "0.25", "lobby"}}.BoxedArgs()
	require.Equal(t, []any{int64(42), int64(-7), 3.5, 0.25, "lobby"}, got)
}

func TestBoxedArgsKeepsNonCanonicalNumbers(t *testing.T) {
	args := []string{"007", "+1", "1e3", "NaN", "Inf", "0x1F", ".5", "5.", "-0", "99999999999999999999"}
	got := ipc.EmitRequest{Args: args}.BoxedArgs()
	require.Len(t, got, len(args))
	for i, v := range got {
		require.Equal(t, args[i], v, "arg %q must stay text", args[i])
	}
}

func TestEmitCarriesRequestID(t *testing.T) {
	backend, client := startServer(t)

	for i := 0; i < 2; i++ {
		_, err := client.Emit(ipc.EmitRequest{Template: "tick"})
		require.NoError(t, err)
	}

	backend.mu.Lock()
	defer backend.mu.Unlock()
	require.Len(t, backend.requests, 2)
	require.NotEmpty(t, backend.requests[0])
	require.NotEqual(t, backend.requests[0], backend.requests[1])
}
