package session

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ogp-project/ogp/internal/observability"
	"github.com/ogp-project/ogp/internal/protocol/frame"
)

var (
	ErrSessionClosed    = errors.New("session: session closed")
	ErrConnectionClosed = errors.New("session: connection closed")
)

// Session owns one connected byte stream and converts it to and from whole
// OGP messages. One Session is driven by exactly one handling goroutine;
// Close is the only operation safe to call from any goroutine and it
// unblocks a Receive or Send stuck on the transport.
type Session struct {
	id     string
	cfg    Config
	conn   net.Conn
	reader *bufio.Reader
	logger zerolog.Logger

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool
}

func New(conn net.Conn, cfg Config) *Session {
	cfg = cfg.WithDefaults()
	id := uuid.NewString()
	return &Session{
		id:     id,
		cfg:    cfg,
		conn:   conn,
		reader: bufio.NewReader(conn),
		logger: log.With().Str("session_id", id).Logger(),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) Version() uint16 {
	return s.cfg.Version
}

func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Send frames payload and writes it fully to the transport. Valid only
// while the session is open.
func (s *Session) Send(payload []byte) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.cfg.WriteTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	}
	if err := frame.WriteFrame(s.conn, payload, s.cfg.frameConfig()); err != nil {
		return s.mapTransportErr(err)
	}
	observability.RecordFrameSent(len(payload))
	return nil
}

// Receive blocks until one complete frame arrives and returns its payload.
// The transport may deliver bytes in arbitrary chunks; buffering never loses
// or duplicates bytes across calls.
func (s *Session) Receive() ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrSessionClosed
	}
	if s.cfg.ReadTimeout > 0 {
		_ = s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
	payload, err := frame.ReadFrame(s.reader, s.cfg.frameConfig())
	if err != nil {
		return nil, s.mapTransportErr(err)
	}
	observability.RecordFrameReceived(len(payload))
	return payload, nil
}

// Close releases the transport. It is idempotent: repeat calls do nothing
// and never fail. A Receive or Send blocked on the transport observes
// ErrConnectionClosed.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		err = s.conn.Close()
		s.logger.Debug().Msg("session closed")
	})
	return err
}

// mapTransportErr keeps codec errors intact and folds every way the
// underlying stream can go away into ErrConnectionClosed.
func (s *Session) mapTransportErr(err error) error {
	switch {
	case errors.Is(err, frame.ErrVersionMismatch),
		errors.Is(err, frame.ErrCorruptFrame),
		errors.Is(err, frame.ErrPayloadTooLarge),
		errors.Is(err, frame.ErrNilPayload):
		return err
	case errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, frame.ErrTruncatedFrame),
		errors.Is(err, net.ErrClosed):
		return ErrConnectionClosed
	}
	if s.closed.Load() {
		return ErrConnectionClosed
	}
	return err
}
