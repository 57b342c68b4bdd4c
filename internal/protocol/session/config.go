package session

import (
	"time"

	"github.com/ogp-project/ogp/internal/protocol/frame"
)

// Config defines per-session wire and timeout behavior. A zero read or
// write timeout means the call blocks until the transport completes or
// fails.
type Config struct {
	Version         uint16
	MaxPayloadBytes uint32
	ConnectTimeout  time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
}

func DefaultConfig() Config {
	return Config{
		Version:         frame.ProtocolVersion,
		MaxPayloadBytes: frame.DefaultConfig().MaxPayloadBytes,
		ConnectTimeout:  5 * time.Second,
	}
}

func (c Config) WithDefaults() Config {
	def := DefaultConfig()
	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.MaxPayloadBytes == 0 {
		c.MaxPayloadBytes = def.MaxPayloadBytes
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	return c
}

func (c Config) frameConfig() frame.Config {
	return frame.Config{
		Version:         c.Version,
		MaxPayloadBytes: c.MaxPayloadBytes,
	}
}
