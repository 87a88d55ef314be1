package config

import "context"

// Transport defines the line-oriented connection to a spawned tool server.
//
// The default implementation spawns a child process and frames messages over
// its standard streams. Custom transports can be injected via
// Options.Transport for testing.
type Transport interface {
	// Start spawns the server process. It reports failure if the spawn
	// fails or the process exits within a short grace window.
	Start(ctx context.Context, command string, args []string, workDir string) error

	// SendLine writes one line plus terminator and flushes.
	SendLine(ctx context.Context, line string) error

	// ReadLine blocks until one line is available, the context is
	// cancelled, or the stream ends. Cancellation abandons only this wait;
	// undelivered lines remain readable by later calls.
	ReadLine(ctx context.Context) (string, error)

	// Connected reports whether the server process is still running.
	Connected() bool

	// Close tears the connection down: stdin first, a grace period for
	// graceful exit, then a forced kill. Safe to call multiple times.
	Close() error
}
