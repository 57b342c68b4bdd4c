package frame

import (
	"encoding/binary"
	"errors"
	"io"
)

const (
	// HeaderLen is the fixed wire header size: version (2) + payload length (4).
	HeaderLen = 6

	// ProtocolVersion is the default OGP wire version.
	ProtocolVersion uint16 = 1
)

var (
	ErrNilPayload      = errors.New("frame: nil payload")
	ErrPayloadTooLarge = errors.New("frame: payload too large")
	ErrVersionMismatch = errors.New("frame: version mismatch")
	ErrCorruptFrame    = errors.New("frame: corrupt frame")
	ErrTruncatedFrame  = errors.New("frame: truncated frame")
)

// Config constrains frame encode/decode behavior. Version is carried per
// codec instance rather than as a package global so sessions speaking
// different versions can coexist.
type Config struct {
	Version         uint16
	MaxPayloadBytes uint32
}

func DefaultConfig() Config {
	return Config{
		Version:         ProtocolVersion,
		MaxPayloadBytes: 16 * 1024 * 1024,
	}
}

// Encode produces the wire bytes for one payload: exactly
// HeaderLen+len(payload) bytes, big-endian header.
func Encode(payload []byte, cfg Config) ([]byte, error) {
	if payload == nil {
		return nil, ErrNilPayload
	}
	if uint64(len(payload)) > uint64(cfg.MaxPayloadBytes) {
		return nil, ErrPayloadTooLarge
	}
	buf := make([]byte, HeaderLen+len(payload))
	binary.BigEndian.PutUint16(buf[0:2], cfg.Version)
	binary.BigEndian.PutUint32(buf[2:6], uint32(len(payload)))
	copy(buf[HeaderLen:], payload)
	return buf, nil
}

// Decode extracts the first complete frame from buf. It returns the payload
// and the number of bytes consumed. n == 0 with a nil error means more bytes
// are needed; nothing is consumed in that case. A version or length error
// also consumes nothing, so the caller can report exactly where the stream
// went bad.
func Decode(buf []byte, cfg Config) (payload []byte, n int, err error) {
	if len(buf) < HeaderLen {
		return nil, 0, nil
	}
	version := binary.BigEndian.Uint16(buf[0:2])
	if version != cfg.Version {
		return nil, 0, ErrVersionMismatch
	}
	length := binary.BigEndian.Uint32(buf[2:6])
	if uint64(length) > uint64(cfg.MaxPayloadBytes) {
		return nil, 0, ErrCorruptFrame
	}
	total := HeaderLen + int(length)
	if len(buf) < total {
		return nil, 0, nil
	}
	payload = make([]byte, length)
	copy(payload, buf[HeaderLen:total])
	return payload, total, nil
}

// ReadFrame reads exactly one frame from r. io.EOF is returned only when the
// stream ends cleanly on a frame boundary; an EOF mid-frame surfaces as
// ErrTruncatedFrame.
func ReadFrame(r io.Reader, cfg Config) ([]byte, error) {
	var header [HeaderLen]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrTruncatedFrame
		}
		return nil, err
	}

	version := binary.BigEndian.Uint16(header[0:2])
	if version != cfg.Version {
		return nil, ErrVersionMismatch
	}
	length := binary.BigEndian.Uint32(header[2:6])
	if uint64(length) > uint64(cfg.MaxPayloadBytes) {
		return nil, ErrCorruptFrame
	}

	payload := make([]byte, length)
	if length > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, ErrTruncatedFrame
			}
			return nil, err
		}
	}
	return payload, nil
}

// WriteFrame encodes payload and writes the full frame to w.
func WriteFrame(w io.Writer, payload []byte, cfg Config) error {
	buf, err := Encode(payload, cfg)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return err
	}
	return nil
}
