package client

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/stoicstudio/McpCli/internal/config"
	"github.com/stoicstudio/McpCli/internal/errors"
	"github.com/stoicstudio/McpCli/internal/protocol"
	"github.com/stoicstudio/McpCli/internal/transport"
)

// State is a client lifecycle state.
type State string

// Client lifecycle states. Closed is terminal and reachable from any state.
const (
	StateNotStarted  State = "not_started"
	StateStarted     State = "started"
	StateInitialized State = "initialized"
	StateClosed      State = "closed"
)

// Client drives one MCP tool server over one exclusively-owned transport.
type Client struct {
	log       *slog.Logger
	opts      config.Options
	transport config.Transport

	// nextID is the monotonic request id counter. Atomic so the guarantee
	// holds even if callers share a client, though use is sequential.
	nextID atomic.Int64

	mu         sync.Mutex // protects state and serverInfo
	state      State
	serverInfo *protocol.ServerInfo

	// callMu serializes calls: exactly one outstanding request at a time.
	callMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// New creates a client with the given options. The client is in the
// NotStarted state; call StartServer to spawn the server process.
func New(opts *config.Options) *Client {
	normalized := opts.Normalized()

	log := normalized.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	// Tag all log output from this connection with a unique id.
	connID := ulid.Make().String()

	return &Client{
		log:   log.With("component", "client", "conn_id", connID),
		opts:  normalized,
		state: StateNotStarted,
	}
}

// State returns the current lifecycle state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// ServerInfo returns the server identity from the handshake, or nil before
// Initialize.
func (c *Client) ServerInfo() *protocol.ServerInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.serverInfo
}

// StartServer spawns the tool server process.
//
// Valid only in the NotStarted state; starting twice fails with an
// InvalidStateError. On a StartError the client is unusable and must be
// closed; it does not retry.
func (c *Client) StartServer(ctx context.Context, command string, args []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateNotStarted {
		return &errors.InvalidStateError{Op: "start server", State: string(c.state)}
	}

	t := c.opts.Transport
	if t == nil {
		t = transport.NewStdio(c.log)
	}

	c.transport = t

	if err := t.Start(ctx, command, args, c.opts.WorkDir); err != nil {
		return err
	}

	c.state = StateStarted
	c.log.Info("Server started", "command", command)

	return nil
}

// Initialize performs the MCP handshake.
//
// It sends the initialize request under the handshake timeout, records the
// server identity, and emits the initialized notification before the client
// becomes ready for tool operations. Any failure is propagated; the caller
// is expected to close the client rather than retry.
func (c *Client) Initialize(ctx context.Context) error {
	c.mu.Lock()

	if c.state != StateStarted {
		state := c.state
		c.mu.Unlock()

		return &errors.InvalidStateError{Op: "initialize", State: string(state)}
	}

	c.mu.Unlock()

	params := protocol.InitializeParams{
		ProtocolVersion: protocol.ProtocolVersion,
		Capabilities:    map[string]any{},
		ClientInfo: protocol.ClientInfo{
			Name:    c.opts.ClientName,
			Version: c.opts.ClientVersion,
		},
	}

	resp, err := c.roundTrip(ctx, protocol.MethodInitialize, params, c.opts.InitTimeout)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	result, err := protocol.ExtractResult[protocol.InitializeResult](resp)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	line, err := protocol.EncodeNotification(protocol.NotificationInitialized, nil)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	if err := c.transport.SendLine(ctx, line); err != nil {
		return fmt.Errorf("initialize: send initialized notification: %w", err)
	}

	c.mu.Lock()
	c.state = StateInitialized
	c.serverInfo = result.ServerInfo
	c.mu.Unlock()

	if result.ServerInfo != nil {
		c.log.Info("Handshake complete",
			"server", result.ServerInfo.Name,
			"server_version", result.ServerInfo.Version,
			"protocol_version", result.ProtocolVersion,
		)
	} else {
		c.log.Info("Handshake complete", "protocol_version", result.ProtocolVersion)
	}

	return nil
}

// ListTools fetches the server's tool catalog, following pagination cursors
// until the full list is accumulated.
func (c *Client) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	if err := c.requireInitialized("list tools"); err != nil {
		return nil, err
	}

	var tools []protocol.Tool

	cursor := ""

	for {
		// params is omitted entirely on the first page.
		var params any
		if cursor != "" {
			params = protocol.ListToolsParams{Cursor: cursor}
		}

		resp, err := c.roundTrip(ctx, protocol.MethodListTools, params, c.opts.CallTimeout)
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}

		result, err := protocol.ExtractResult[protocol.ListToolsResult](resp)
		if err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}

		tools = append(tools, result.Tools...)

		if result.NextCursor == "" {
			break
		}

		cursor = result.NextCursor
	}

	c.log.Debug("Listed tools", "count", len(tools))

	return tools, nil
}

// CallTool invokes a named tool with the given arguments.
//
// An optional timeout overrides the configured call timeout for this call
// only. A TimeoutError is fatal to this call but leaves the connection open.
func (c *Client) CallTool(
	ctx context.Context,
	name string,
	arguments map[string]any,
	timeout ...time.Duration,
) (*protocol.CallToolResult, error) {
	if err := c.requireInitialized("call tool"); err != nil {
		return nil, err
	}

	callTimeout := c.opts.CallTimeout
	if len(timeout) > 0 && timeout[0] > 0 {
		callTimeout = timeout[0]
	}

	params := protocol.CallToolParams{Name: name, Arguments: arguments}

	resp, err := c.roundTrip(ctx, protocol.MethodCallTool, params, callTimeout)
	if err != nil {
		return nil, fmt.Errorf("call tool %q: %w", name, err)
	}

	result, err := protocol.ExtractResult[protocol.CallToolResult](resp)
	if err != nil {
		return nil, fmt.Errorf("call tool %q: %w", name, err)
	}

	return &result, nil
}

// requireInitialized checks that tool operations are allowed and the server
// is still running.
func (c *Client) requireInitialized(op string) error {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state != StateInitialized {
		return &errors.InvalidStateError{Op: op, State: string(state)}
	}

	if !c.transport.Connected() {
		return &errors.InvalidStateError{Op: op, State: "disconnected"}
	}

	return nil
}

// roundTrip performs one request/response exchange: assign the next id,
// encode and send, then read lines under the deadline until the matching
// response arrives.
//
// Responses with an id lower than the outstanding one can only belong to an
// earlier call that timed out, so they are logged and discarded rather than
// poisoning this call's correlation. Any other mismatch is a
// CorrelationError. Server notifications are skipped.
func (c *Client) roundTrip(
	ctx context.Context,
	method string,
	params any,
	timeout time.Duration,
) (*protocol.Response, error) {
	c.callMu.Lock()
	defer c.callMu.Unlock()

	if !c.transport.Connected() {
		return nil, errors.ErrNotConnected
	}

	id := c.nextID.Add(1)

	line, err := protocol.EncodeRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	c.log.Debug("Sending request", "id", id, "method", method)

	if err := c.transport.SendLine(ctx, line); err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	for {
		raw, err := c.transport.ReadLine(callCtx)
		if err != nil {
			if stderrors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				c.log.Warn("Request timed out", "id", id, "method", method, "timeout", timeout)

				return nil, &errors.TimeoutError{Method: method, Timeout: timeout}
			}

			return nil, err
		}

		resp, err := protocol.DecodeResponse(raw)
		if err != nil {
			return nil, err
		}

		if resp.IsNotification() {
			c.log.Debug("Skipping server notification", "method", resp.Method)

			continue
		}

		received := *resp.ID

		switch {
		case received == id:
			c.log.Debug("Received response", "id", id)

			return resp, nil

		case received < id:
			// Late reply to a request that already timed out. Drain it so
			// the stream stays aligned for this and future calls.
			c.log.Warn("Discarding stale response", "id", received, "outstanding_id", id)

		default:
			return nil, &errors.CorrelationError{Expected: id, Received: received}
		}
	}
}

// Close terminates the server process and releases the transport.
//
// Close is idempotent, safe on every exit path, and suppresses teardown
// errors beyond logging them. After Close the client cannot be reused.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.state = StateClosed
		t := c.transport
		c.mu.Unlock()

		if t == nil {
			return
		}

		c.log.Info("Closing client")

		if err := t.Close(); err != nil {
			c.log.Debug("Transport close error", "error", err)
			c.closeErr = err
		}
	})

	return c.closeErr
}
