package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"

	"github.com/google/uuid"

	"dbglog/internal/control"
	"dbglog/internal/logging"
)

// ServiceName prefixes every RPC method.
const ServiceName = "Dbglog"

// Backend is the host surface the server exposes.
type Backend interface {
	Categories() *control.Surface
	StartRecording(name string) (string, error)
	StopRecording() (string, int, error)
	Emit(ctx context.Context, req EmitRequest) error
	Status() StatusResponse
	Overlay() []OverlayEntry
}

// Server exposes a Backend via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// NewServer listens on path, replacing any stale socket file.
func NewServer(ctx context.Context, path string, backend Backend, logger *slog.Logger) (*Server, error) {
	if backend == nil {
		return nil, errors.New("ipc server requires a backend")
	}
	logger = logging.NewComponentLogger(logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	svc := &service{backend: backend, logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName(ServiceName, svc); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
		conns:     make(map[net.Conn]struct{}),
	}, nil
}

// Path returns the socket path.
func (s *Server) Path() string { return s.path }

// Serve accepts connections in the background until Close.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				if errors.Is(err, net.ErrClosed) {
					return
				}
				logging.WarnWithContext(s.logger, "accept failed", "ipc_accept_failed",
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the host if needed"))
				continue
			}
			s.track(conn, true)
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				defer s.track(c, false)
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

func (s *Server) track(c net.Conn, add bool) {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if add {
		s.conns[c] = struct{}{}
	} else {
		delete(s.conns, c)
	}
}

// Close stops accepting, drops open connections and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	_ = s.listener.Close()
	s.connMu.Lock()
	for c := range s.conns {
		_ = c.Close()
	}
	s.connMu.Unlock()
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		logging.WarnWithContext(s.logger, "failed to remove socket", "ipc_socket_cleanup_failed",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "remove the socket file manually"))
	}
}

type service struct {
	backend Backend
	logger  *slog.Logger
	ctx     context.Context
}

func (s *service) CategoryList(_ CategoryListRequest, resp *CategoryListResponse) error {
	resp.Report = s.backend.Categories().List()
	return nil
}

// call tags one RPC with a request id shared by its diagnostics and the
// context handed to the backend.
func (s *service) call(method string) (context.Context, *slog.Logger) {
	ctx := logging.WithRequestID(s.ctx, uuid.NewString())
	return ctx, logging.WithContext(ctx, s.logger).With(logging.String(logging.FieldRPC, method))
}

func (s *service) toggle(method string, names []string, fn func([]string) (control.Result, error), resp *CategoryToggleResponse) error {
	_, logger := s.call(method)
	res, err := fn(names)
	resp.Result = res
	if err != nil {
		return err
	}
	logger.Debug("categories toggled",
		logging.String(logging.FieldEventType, "category_toggle"),
		logging.Int("updated", res.Updated),
		logging.Bool("all", res.All))
	return nil
}

func (s *service) CategoryEnable(req CategoryToggleRequest, resp *CategoryToggleResponse) error {
	return s.toggle("CategoryEnable", req.Names, s.backend.Categories().Enable, resp)
}

func (s *service) CategoryDisable(req CategoryToggleRequest, resp *CategoryToggleResponse) error {
	return s.toggle("CategoryDisable", req.Names, s.backend.Categories().Disable, resp)
}

func (s *service) RecordStart(req RecordStartRequest, resp *RecordStartResponse) error {
	_, logger := s.call("RecordStart")
	path, err := s.backend.StartRecording(req.Name)
	if err != nil {
		return err
	}
	resp.Path = path
	logger.Info("spatial recording started",
		logging.String(logging.FieldEventType, "record_start"),
		logging.String("path", path))
	return nil
}

func (s *service) RecordStop(_ RecordStopRequest, resp *RecordStopResponse) error {
	_, logger := s.call("RecordStop")
	path, written, err := s.backend.StopRecording()
	if err != nil {
		return err
	}
	resp.Path = path
	resp.Written = written
	logger.Info("spatial recording stopped",
		logging.String(logging.FieldEventType, "record_stop"),
		logging.String("path", path),
		logging.Int("written", written))
	return nil
}

func (s *service) Emit(req EmitRequest, resp *EmitResponse) error {
	ctx, _ := s.call("Emit")
	if err := s.backend.Emit(ctx, req); err != nil {
		return err
	}
	resp.Accepted = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	*resp = s.backend.Status()
	return nil
}

func (s *service) Overlay(_ OverlayRequest, resp *OverlayResponse) error {
	resp.Entries = s.backend.Overlay()
	return nil
}
