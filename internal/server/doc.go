// Package server owns the OGP listen endpoint: the accept loop, the
// per-connection session handlers, and the optional admin HTTP surface.
package server
