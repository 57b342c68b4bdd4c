package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/ogp-project/ogp/internal/observability"
	"github.com/ogp-project/ogp/internal/protocol/session"
)

var (
	ErrAddressRequired = errors.New("client: server address required")
	ErrConnectFailed   = errors.New("client: connect failed")
)

// Config defines one client endpoint.
type Config struct {
	Address string
	Session session.Config
}

func DefaultConfig() Config {
	return Config{
		Session: session.DefaultConfig(),
	}
}

// Client establishes protocol sessions to one configured server address.
type Client struct {
	cfg Config
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Address) == "" {
		return nil, ErrAddressRequired
	}
	cfg.Session = cfg.Session.WithDefaults()
	return &Client{cfg: cfg}, nil
}

// Connect dials the configured address and returns a live session. The
// caller owns the session and must close it.
func (c *Client) Connect(ctx context.Context) (*session.Session, error) {
	dialer := net.Dialer{Timeout: c.cfg.Session.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConnectFailed, err)
	}
	sess := session.New(conn, c.cfg.Session)
	observability.RecordSessionOpened("client")
	log.Debug().
		Str("session_id", sess.ID()).
		Str("addr", c.cfg.Address).
		Msg("client connected")
	return sess, nil
}

// Exchange opens one session, sends every payload in order, and returns the
// responses in the order received. Session errors propagate unchanged; the
// session is always closed before returning. Responses collected before a
// failure are returned alongside the error.
func (c *Client) Exchange(ctx context.Context, payloads [][]byte) ([][]byte, error) {
	sess, err := c.Connect(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = sess.Close()
		observability.RecordSessionClosed("client")
	}()

	responses := make([][]byte, 0, len(payloads))
	for _, payload := range payloads {
		if err := sess.Send(payload); err != nil {
			observability.RecordSessionError(session.ErrorKind(err))
			return responses, err
		}
		resp, err := sess.Receive()
		if err != nil {
			observability.RecordSessionError(session.ErrorKind(err))
			return responses, err
		}
		responses = append(responses, resp)
	}
	return responses, nil
}
