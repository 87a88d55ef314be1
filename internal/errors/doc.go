// Package errors defines the error taxonomy for the MCP client.
//
// Every failure mode surfaced by the client maps to exactly one typed error
// so callers can pattern-match with errors.AsType instead of string checks:
// ProtocolError means the server said no, TimeoutError means it never
// answered, CorrelationError means the connection is desynchronized.
package errors
