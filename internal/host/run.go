package host

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"

	"dbglog/internal/config"
	"dbglog/internal/event"
	"dbglog/internal/ipc"
	"dbglog/internal/logging"
)

// Run takes the single-instance lock, serves IPC and, when configured,
// watches the config file and pumps stdin. It returns when ctx is done or
// when the stdin stream ends.
func (h *Host) Run(ctx context.Context) error {
	ok, err := h.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, h.cfg.Control.Lock)
	}
	defer func() {
		if err := h.lock.Unlock(); err != nil {
			logging.WarnWithContext(h.logger, "failed to release host lock", "host_unlock_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "remove the lock file if the next start fails"))
		}
	}()

	if h.recorder != nil && h.cfg.Spatial.RecordOnStart {
		if path, err := h.recorder.Start(""); err != nil {
			logging.WarnWithContext(h.logger, "spatial recording did not start", "record_start_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the recordings directory"))
		} else {
			h.logger.Info("spatial recording started",
				logging.String(logging.FieldEventType, "record_start"),
				logging.String("path", path))
		}
	}

	srv, err := ipc.NewServer(ctx, h.cfg.Control.Socket, h, h.logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer srv.Close()
	srv.Serve()

	h.logger.Info("dbglog host started",
		logging.String(logging.FieldEventType, "host_started"),
		logging.String("socket", srv.Path()),
		logging.String(logging.FieldSessionID, h.sessionID),
		logging.Int("categories", h.registry.Len()),
	)

	g, gctx := errgroup.WithContext(ctx)
	if h.cfg.Control.WatchConfig && h.configPath != "" {
		g.Go(func() error {
			return config.Watch(gctx, h.configPath, h.Reload, func(err error) {
				logging.WarnWithContext(h.logger, "config reload failed", "config_reload_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "fix the config file; previous category states stay in effect"))
			})
		})
	}
	if h.stdin != nil {
		g.Go(func() error { return h.pump(gctx, h.stdin) })
	}
	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, io.EOF) {
		err = nil
	}
	h.logger.Info("dbglog host shutting down", logging.String(logging.FieldEventType, "host_stopped"))
	return err
}

// pump dispatches one event per input line. Lines that start with "{" are
// decoded as emit requests; anything else is logged verbatim with default
// options. The end of input is reported as io.EOF so Run can stop.
func (h *Host) pump(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("read stdin: %w", err)
					}
				default:
				}
				return io.EOF
			}
			h.dispatchLine(ctx, line)
		}
	}
}

func (h *Host) dispatchLine(ctx context.Context, line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	if strings.HasPrefix(trimmed, "{") {
		var req ipc.EmitRequest
		if err := json.Unmarshal([]byte(trimmed), &req); err == nil {
			if err := h.Emit(ctx, req); err != nil {
				logging.WarnWithContext(h.logger, "rejected piped event", "stdin_event_rejected",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check severity, destination and color fields"))
			}
			return
		}
	}
	h.dispatcher.LogAt(stdinSite, event.Default(), "{0}", line)
}
