package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"submerge/internal/daemon"
	"submerge/internal/history"
	"submerge/internal/logging"
)

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	daemon    *daemon.Daemon
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, d *daemon.Daemon, logger *slog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("ipc server requires daemon")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	srv := &service{daemon: d, logger: logging.NewComponentLogger(logger, "ipc"), ctx: serverCtx}
	if err := rpcServer.RegisterName(ServiceName, srv); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		daemon:    d,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
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
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "Check socket permissions and restart the daemon if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "Remove the socket file manually"))
	}
}

type service struct {
	daemon *daemon.Daemon
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) inputResponse(resp *InputResponse) {
	resp.Session = convertSession(s.daemon.SessionStatus())
}

func (s *service) SetVideo(req SetPathRequest, resp *InputResponse) error {
	s.logger.Debug("video captured", logging.String("path", req.Path))
	if err := s.daemon.SetVideo(s.ctx, req.Path); err != nil {
		return err
	}
	s.inputResponse(resp)
	return nil
}

func (s *service) SetSubtitle(req SetPathRequest, resp *InputResponse) error {
	s.logger.Debug("subtitle captured", logging.String("path", req.Path))
	if err := s.daemon.SetSubtitle(s.ctx, req.Path); err != nil {
		return err
	}
	s.inputResponse(resp)
	return nil
}

func (s *service) SetLanguage(req SetLanguageRequest, resp *InputResponse) error {
	if err := s.daemon.SetLanguage(s.ctx, req.Code); err != nil {
		return err
	}
	s.inputResponse(resp)
	return nil
}

func (s *service) Reset(_ ResetRequest, resp *InputResponse) error {
	if err := s.daemon.Reset(s.ctx); err != nil {
		return err
	}
	s.logger.Info("registry reset via IPC", logging.String(logging.FieldEventType, "registry_reset"))
	s.inputResponse(resp)
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.daemon.Status(s.ctx)
	resp.Running = status.Running
	resp.PID = status.PID
	if !status.StartedAt.IsZero() {
		resp.StartedAt = status.StartedAt.Format(time.RFC3339)
	}
	resp.LockPath = status.LockPath
	resp.HistoryDBPath = status.HistoryDBPath
	resp.Session = convertSession(status.Session)
	resp.LastMerge = NewMergeResult(status.LastMerge)
	resp.Dependencies = append(resp.Dependencies, status.Dependencies...)
	resp.HistoryStats = make(map[string]int, len(status.HistoryStats))
	for k, v := range status.HistoryStats {
		resp.HistoryStats[string(k)] = v
	}
	return nil
}

func (s *service) Merge(req MergeRequest, resp *MergeResponse) error {
	ctx := logging.WithRequestID(s.ctx, uuid.NewString())
	id, err := s.daemon.Trigger(ctx)
	if err != nil {
		return err
	}
	resp.ID = id
	s.logger.Info("merge triggered via IPC",
		logging.String(logging.FieldEventType, "merge_triggered"),
		logging.String(logging.FieldMergeID, id),
		logging.Bool("wait", req.Wait))
	if !req.Wait {
		return nil
	}

	waitCtx := ctx
	if req.TimeoutMillis > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMillis)*time.Millisecond)
		defer cancel()
	}
	res, err := s.daemon.Wait(waitCtx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return err
	}
	resp.Completed = true
	resp.Result = NewMergeResult(&res)
	return nil
}

func (s *service) History(req HistoryRequest, resp *HistoryResponse) error {
	statuses := make([]history.Status, 0, len(req.Statuses))
	for _, raw := range req.Statuses {
		parsed, ok := history.ParseStatus(raw)
		if !ok {
			return fmt.Errorf("unknown history status %q", raw)
		}
		statuses = append(statuses, parsed)
	}
	records, err := s.daemon.History(s.ctx, req.Limit, statuses)
	if err != nil {
		return err
	}
	resp.Records = records
	return nil
}

func (s *service) HistoryClear(_ HistoryClearRequest, resp *HistoryClearResponse) error {
	removed, err := s.daemon.ClearHistory(s.ctx)
	if err != nil {
		return err
	}
	resp.Removed = removed
	s.logger.Info("history cleared",
		logging.String(logging.FieldEventType, "history_clear"),
		logging.Int64("removed_count", removed))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.logger.Info("daemon stop requested via IPC", logging.String(logging.FieldEventType, "daemon_stop"))
	s.daemon.RequestShutdown()
	resp.Stopped = true
	return nil
}
