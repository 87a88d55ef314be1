// Package batch executes an ordered list of free-text steps against one
// live, already-initialized client connection.
//
// Each step is either a timed pause ("wait:250") or a tool invocation
// ("toolName key=value..."). Steps run strictly in order. A per-step server
// error or timeout is reported and does not abort the remaining steps;
// errors that mean the connection itself is no longer trustworthy do.
package batch
