// Package client implements the MCP connection state machine.
//
// A Client owns one transport and drives one tool server through its
// lifecycle: StartServer spawns the process, Initialize performs the
// handshake, then ListTools and CallTool issue requests one at a time with
// monotonically increasing correlation ids and per-call timeouts. The
// protocol is strictly request-then-response; no pipelining.
//
// Clients are single-use. Close terminates the server process and is safe to
// call multiple times and on every exit path.
package client
