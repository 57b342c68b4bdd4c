package session

import (
	"errors"

	"github.com/ogp-project/ogp/internal/protocol/frame"
)

// ErrorKind names a session-level failure for logs and metrics labels.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, ErrConnectionClosed):
		return "connection_closed"
	case errors.Is(err, frame.ErrPayloadTooLarge):
		return "payload_too_large"
	case errors.Is(err, frame.ErrVersionMismatch):
		return "version_mismatch"
	case errors.Is(err, frame.ErrCorruptFrame):
		return "corrupt_frame"
	case errors.Is(err, frame.ErrNilPayload):
		return "nil_payload"
	default:
		return "io_error"
	}
}
