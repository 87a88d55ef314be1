// Package transport provides the subprocess stdio transport for tool servers.
//
// This package spawns the server as a child process and frames messages as
// newline-delimited text over its standard input/output. It handles process
// lifecycle: spawn with an immediate-exit check, line send/receive with
// cancellation, and a teardown sequence that closes stdin, waits a grace
// period, then force-kills.
package transport
