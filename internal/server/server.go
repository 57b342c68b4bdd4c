package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ogp-project/ogp/internal/observability"
	"github.com/ogp-project/ogp/internal/protocol/session"
)

var ErrBindFailed = errors.New("server: bind failed")

// Handler processes one received payload and returns the response payload.
type Handler func(payload []byte) ([]byte, error)

// EchoHandler returns every payload unchanged.
func EchoHandler(payload []byte) ([]byte, error) {
	return payload, nil
}

// Config defines the server listen endpoints and session behavior.
type Config struct {
	ServerID         string
	ListenAddr       string
	AdminListenAddr  string
	AdminCORSOrigins []string
	MaxSessions      int
	Session          session.Config
}

func DefaultConfig() Config {
	return Config{
		ServerID:    "ogpd.local",
		ListenAddr:  ":9300",
		MaxSessions: 256,
		Session:     session.DefaultConfig(),
	}
}

// SessionInfo is one entry of the admin-plane session snapshot.
type SessionInfo struct {
	ID         string    `json:"id"`
	RemoteAddr string    `json:"remote_addr"`
	OpenedAt   time.Time `json:"opened_at"`
}

// Server accepts connections and runs one independent session handler per
// connection. Handlers share nothing but read-only configuration, so one
// connection's failure never touches another session.
type Server struct {
	cfg     Config
	handler Handler

	startedAt time.Time

	connsMu sync.Mutex
	conns   map[net.Conn]struct{}

	sessionsMu sync.RWMutex
	sessions   map[string]SessionInfo
}

func New(cfg Config, handler Handler) *Server {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		cfg.ListenAddr = DefaultConfig().ListenAddr
	}
	if strings.TrimSpace(cfg.ServerID) == "" {
		cfg.ServerID = DefaultConfig().ServerID
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultConfig().MaxSessions
	}
	cfg.Session = cfg.Session.WithDefaults()
	if handler == nil {
		handler = EchoHandler
	}
	return &Server{
		cfg:       cfg,
		handler:   handler,
		startedAt: time.Now(),
		conns:     make(map[net.Conn]struct{}),
		sessions:  make(map[string]SessionInfo),
	}
}

func (s *Server) Config() Config {
	return s.cfg
}

// Listen acquires the configured listen address. Failure here is fatal at
// startup.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBindFailed, err)
	}
	return ln, nil
}

// Run blocks until signal shutdown or a fatal serve error.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := s.Listen()
	if err != nil {
		return err
	}
	log.Info().
		Str("server_id", s.cfg.ServerID).
		Str("addr", ln.Addr().String()).
		Uint16("protocol_version", s.cfg.Session.Version).
		Msg("listening")

	adminErr := make(chan error, 1)
	if addr := strings.TrimSpace(s.cfg.AdminListenAddr); addr != "" {
		go func() {
			adminErr <- s.serveAdmin(ctx, addr)
		}()
	}
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.Serve(ctx, ln)
	}()
	select {
	case err := <-serveErr:
		return err
	case err := <-adminErr:
		if err != nil {
			return err
		}
		return <-serveErr
	}
}

// Serve runs the accept loop on an existing listener. Each accepted
// connection is dispatched to the worker pool; when the pool is saturated
// the handler falls back to a plain goroutine so no accepted connection is
// ever dropped.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	pool, err := ants.NewPool(s.cfg.MaxSessions, ants.WithNonblocking(true))
	if err != nil {
		return err
	}
	defer pool.Release()

	defer ln.Close()
	go func() {
		<-ctx.Done()
		s.closeAllConns()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		s.trackConn(conn)
		c := conn
		if err := pool.Submit(func() { s.handleConn(c) }); err != nil {
			go s.handleConn(c)
		}
	}
}

// handleConn owns one session for its whole lifetime: receive, process,
// send, until the peer goes away.
func (s *Server) handleConn(conn net.Conn) {
	defer s.untrackConn(conn)

	sess := session.New(conn, s.cfg.Session)
	observability.RecordSessionOpened("server")
	logger := log.With().
		Str("session_id", sess.ID()).
		Str("remote", conn.RemoteAddr().String()).
		Logger()
	logger.Info().Msg("session opened")

	s.registerSession(sess, conn.RemoteAddr().String())
	defer func() {
		s.unregisterSession(sess.ID())
		_ = sess.Close()
		observability.RecordSessionClosed("server")
		logger.Info().Msg("session finished")
	}()

	for {
		payload, err := sess.Receive()
		if err != nil {
			s.logSessionEnd(logger, "receive", err)
			return
		}
		resp, err := s.handler(payload)
		if err != nil {
			observability.RecordSessionError("handler")
			logger.Error().Err(err).Msg("handler failed")
			return
		}
		if err := sess.Send(resp); err != nil {
			s.logSessionEnd(logger, "send", err)
			return
		}
	}
}

func (s *Server) logSessionEnd(logger zerolog.Logger, op string, err error) {
	kind := session.ErrorKind(err)
	if errors.Is(err, session.ErrConnectionClosed) || errors.Is(err, session.ErrSessionClosed) {
		logger.Debug().Str("op", op).Str("kind", kind).Msg("session ended")
		return
	}
	observability.RecordSessionError(kind)
	logger.Warn().Err(err).Str("op", op).Str("kind", kind).Msg("session error")
}

// SnapshotSessions returns the currently open sessions ordered by open time.
func (s *Server) SnapshotSessions() []SessionInfo {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	out := make([]SessionInfo, 0, len(s.sessions))
	for _, info := range s.sessions {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OpenedAt.Before(out[j].OpenedAt)
	})
	return out
}

func (s *Server) registerSession(sess *session.Session, remote string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[sess.ID()] = SessionInfo{
		ID:         sess.ID(),
		RemoteAddr: remote,
		OpenedAt:   time.Now(),
	}
}

func (s *Server) unregisterSession(id string) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, id)
}

func (s *Server) trackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrackConn(conn net.Conn) {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	delete(s.conns, conn)
}

func (s *Server) closeAllConns() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
		delete(s.conns, conn)
	}
}
