// Package protocol implements the JSON-RPC 2.0 wire codec for MCP tool servers.
//
// The codec is pure and stateless: it translates between structured
// requests/responses and single-line JSON text. Correlation, timeouts, and
// connection state live in the client package; this package only encodes,
// decodes, and classifies what is on the wire.
//
// Wire format (newline-delimited, one message per line):
//
//	{"jsonrpc":"2.0","id":1,"method":"initialize","params":{...}}
//	{"jsonrpc":"2.0","id":1,"result":{...}}
//	{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"Invalid Request"}}
package protocol
