package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/ogp-project/ogp/internal/protocol/frame"
	"github.com/ogp-project/ogp/internal/testutil/testlog"
)

// echoListener accepts connections and echoes whole frames back until the
// peer disconnects.
func echoListener(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				cfg := frame.DefaultConfig()
				for {
					payload, err := frame.ReadFrame(conn, cfg)
					if err != nil {
						return
					}
					if err := frame.WriteFrame(conn, payload, cfg); err != nil {
						return
					}
				}
			}(conn)
		}
	}()
	return ln.Addr().String()
}

func TestNewRequiresAddress(t *testing.T) {
	testlog.Start(t)
	if _, err := New(Config{}); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired, got %v", err)
	}
	if _, err := New(Config{Address: "   "}); !errors.Is(err, ErrAddressRequired) {
		t.Fatalf("expected ErrAddressRequired for blank address, got %v", err)
	}
}

func TestConnectFailedWrapsDialError(t *testing.T) {
	testlog.Start(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	c, err := New(Config{Address: addr})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if _, err := c.Connect(context.Background()); !errors.Is(err, ErrConnectFailed) {
		t.Fatalf("expected ErrConnectFailed, got %v", err)
	}
}

func TestExchangePreservesOrder(t *testing.T) {
	testlog.Start(t)
	addr := echoListener(t)

	c, err := New(Config{Address: addr})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	payloads := make([][]byte, 0, 5)
	for i := 0; i < 5; i++ {
		payloads = append(payloads, []byte(fmt.Sprintf("message-%d", i)))
	}
	responses, err := c.Exchange(context.Background(), payloads)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if len(responses) != len(payloads) {
		t.Fatalf("response count got=%d want=%d", len(responses), len(payloads))
	}
	for i := range payloads {
		if string(responses[i]) != string(payloads[i]) {
			t.Fatalf("response %d out of order: got=%q want=%q", i, responses[i], payloads[i])
		}
	}
}

func TestExchangePropagatesPayloadTooLarge(t *testing.T) {
	testlog.Start(t)
	addr := echoListener(t)

	cfg := DefaultConfig()
	cfg.Address = addr
	cfg.Session.MaxPayloadBytes = 8
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	_, err = c.Exchange(context.Background(), [][]byte{make([]byte, 9)})
	if !errors.Is(err, frame.ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}
