// Package session turns one raw byte-stream connection into an ordered
// sequence of OGP messages.
//
// Ownership boundary:
// - framing-aware Send/Receive over one net.Conn
// - session lifecycle (open -> closed, idempotent close)
// - per-session timeout configuration
package session
