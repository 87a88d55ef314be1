package config

import (
	"log/slog"
	"time"
)

const (
	// DefaultInitTimeout bounds the initialize handshake. It is longer than
	// the call timeout because servers may warm up on first contact.
	DefaultInitTimeout = 30 * time.Second

	// DefaultCallTimeout bounds tools/list and tools/call requests.
	DefaultCallTimeout = 10 * time.Second

	// DefaultClientName identifies this client in the handshake.
	DefaultClientName = "mcpcli"

	// DefaultClientVersion is reported alongside the client name.
	DefaultClientVersion = "0.1.0"
)

// Options configures a client connection.
type Options struct {
	// Logger receives structured debug output. If nil, logging is disabled.
	Logger *slog.Logger

	// Transport overrides the default subprocess transport. Used by tests.
	Transport Transport

	// InitTimeout bounds the initialize handshake. Zero means
	// DefaultInitTimeout.
	InitTimeout time.Duration

	// CallTimeout bounds tool operations unless overridden per call. Zero
	// means DefaultCallTimeout.
	CallTimeout time.Duration

	// ClientName and ClientVersion identify the client in the handshake.
	// Empty values fall back to the defaults.
	ClientName    string
	ClientVersion string

	// WorkDir is the working directory for the spawned server process.
	// Empty means inherit the current directory.
	WorkDir string
}

// Normalized returns a copy with zero values replaced by defaults.
func (o *Options) Normalized() Options {
	out := Options{}
	if o != nil {
		out = *o
	}

	if out.InitTimeout <= 0 {
		out.InitTimeout = DefaultInitTimeout
	}

	if out.CallTimeout <= 0 {
		out.CallTimeout = DefaultCallTimeout
	}

	if out.ClientName == "" {
		out.ClientName = DefaultClientName
	}

	if out.ClientVersion == "" {
		out.ClientVersion = DefaultClientVersion
	}

	return out
}
