package protocol

import (
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// MCP method names.
const (
	MethodInitialize = "initialize"
	MethodListTools  = "tools/list"
	MethodCallTool   = "tools/call"

	// NotificationInitialized is sent after a successful handshake to tell
	// the server the client is ready for normal operations.
	NotificationInitialized = "notifications/initialized"
)

// ProtocolVersion is the MCP protocol revision this client speaks.
const ProtocolVersion = "2024-11-05"

// ClientInfo identifies this client in the initialize handshake.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerInfo identifies the server in the initialize response.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

// InitializeParams is the payload of the initialize request.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities"`
	ClientInfo      ClientInfo     `json:"clientInfo"`
}

// InitializeResult is the payload of the initialize response.
type InitializeResult struct {
	ProtocolVersion string         `json:"protocolVersion,omitempty"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ServerInfo      *ServerInfo    `json:"serverInfo,omitempty"`
}

// Tool describes one named operation exposed by the server.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	InputSchema *jsonschema.Schema `json:"inputSchema,omitempty"`
}

// ListToolsParams is the payload of a tools/list request. The cursor is only
// present when fetching a continuation page.
type ListToolsParams struct {
	Cursor string `json:"cursor,omitempty"`
}

// ListToolsResult is the payload of a tools/list response.
type ListToolsResult struct {
	Tools      []Tool `json:"tools"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// CallToolParams is the payload of a tools/call request.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// CallToolResult is the payload of a tools/call response.
type CallToolResult struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

// ContentItem is one element of a tool call result. Known types are "text"
// and "image"; unknown types are preserved verbatim through the raw bytes.
type ContentItem struct {
	Type     string
	Text     string
	MimeType string
	Data     string

	raw json.RawMessage
}

// contentItemWire is the JSON shape of a content item.
type contentItemWire struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// UnmarshalJSON decodes the known fields and retains the original bytes so
// content types this client does not understand pass through opaquely.
func (c *ContentItem) UnmarshalJSON(data []byte) error {
	var w contentItemWire

	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	c.Type = w.Type
	c.Text = w.Text
	c.MimeType = w.MimeType
	c.Data = w.Data
	c.raw = append(json.RawMessage(nil), data...)

	return nil
}

// MarshalJSON emits the retained raw bytes when present, so round-tripping a
// result never drops fields this client does not model.
func (c ContentItem) MarshalJSON() ([]byte, error) {
	if c.raw != nil {
		return c.raw, nil
	}

	return json.Marshal(contentItemWire{
		Type:     c.Type,
		Text:     c.Text,
		MimeType: c.MimeType,
		Data:     c.Data,
	})
}

// Raw returns the original wire bytes of the item, if it was decoded from
// server output.
func (c *ContentItem) Raw() json.RawMessage {
	return c.raw
}
