package protocol

import (
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stoicstudio/McpCli/internal/errors"
)

func TestEncodeRequest_OmitsParamsWhenAbsent(t *testing.T) {
	line, err := EncodeRequest(1, MethodListTools, nil)
	require.NoError(t, err)

	require.NotContains(t, line, "params")
	require.NotContains(t, line, "\n")
	require.Contains(t, line, `"jsonrpc":"2.0"`)
	require.Contains(t, line, `"id":1`)
	require.Contains(t, line, `"method":"tools/list"`)
}

func TestEncodeRequest_RoundTripsMethodAndParams(t *testing.T) {
	params := CallToolParams{
		Name:      "echo",
		Arguments: map[string]any{"text": "hello", "count": float64(3)},
	}

	line, err := EncodeRequest(42, MethodCallTool, params)
	require.NoError(t, err)

	var req struct {
		Version string         `json:"jsonrpc"`
		ID      int64          `json:"id"`
		Method  string         `json:"method"`
		Params  CallToolParams `json:"params"`
	}
	require.NoError(t, json.Unmarshal([]byte(line), &req))

	require.Equal(t, Version, req.Version)
	require.Equal(t, int64(42), req.ID)
	require.Equal(t, MethodCallTool, req.Method)
	require.Equal(t, params, req.Params)
}

func TestEncodeNotification_HasNoID(t *testing.T) {
	line, err := EncodeNotification(NotificationInitialized, nil)
	require.NoError(t, err)

	require.NotContains(t, line, `"id"`)
	require.Contains(t, line, `"method":"notifications/initialized"`)
}

func TestDecodeResponse(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr bool
	}{
		{
			name: "result response",
			line: `{"jsonrpc":"2.0","id":1,"result":{}}`,
		},
		{
			name: "error response",
			line: `{"jsonrpc":"2.0","id":1,"error":{"code":-32600,"message":"Invalid Request"}}`,
		},
		{
			name: "server notification",
			line: `{"jsonrpc":"2.0","method":"notifications/message","params":{}}`,
		},
		{
			name:    "not json",
			line:    "garbage",
			wantErr: true,
		},
		{
			name:    "json but not an object",
			line:    `[1,2,3]`,
			wantErr: true,
		},
		{
			name:    "no id and no method",
			line:    `{"jsonrpc":"2.0","result":{}}`,
			wantErr: true,
		},
		{
			name:    "wrong jsonrpc version",
			line:    `{"jsonrpc":"1.0","id":1,"result":{}}`,
			wantErr: true,
		},
		{
			name:    "missing jsonrpc version",
			line:    `{"id":1,"result":{}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := DecodeResponse(tt.line)

			if tt.wantErr {
				var decodeErr *errors.DecodeError
				require.ErrorAs(t, err, &decodeErr)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, resp)
		})
	}
}

func TestDecodeResponse_NotificationDetection(t *testing.T) {
	resp, err := DecodeResponse(`{"jsonrpc":"2.0","method":"notifications/progress"}`)
	require.NoError(t, err)
	require.True(t, resp.IsNotification())

	resp, err = DecodeResponse(`{"jsonrpc":"2.0","id":7,"result":{}}`)
	require.NoError(t, err)
	require.False(t, resp.IsNotification())
	require.Equal(t, int64(7), *resp.ID)
}

func TestExtractResult_ErrorYieldsProtocolError(t *testing.T) {
	resp, err := DecodeResponse(
		`{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Method not found","data":"nope"}}`,
	)
	require.NoError(t, err)

	_, err = ExtractResult[ListToolsResult](resp)

	protoErr, ok := stderrors.AsType[*errors.ProtocolError](err)
	require.True(t, ok)
	require.Equal(t, -32601, protoErr.Code)
	require.Equal(t, "Method not found", protoErr.Message)
	require.Equal(t, "nope", protoErr.Data)
}

func TestExtractResult_MissingResultIsDecodeError(t *testing.T) {
	// A message can decode (it has an id) yet carry neither result nor error.
	resp := &Response{Version: Version, ID: ptr(int64(1))}

	_, err := ExtractResult[ListToolsResult](resp)

	var decodeErr *errors.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	require.ErrorIs(t, err, errors.ErrNoResult)
}

func TestExtractResult_ShapeMismatchIsDecodeError(t *testing.T) {
	resp, err := DecodeResponse(`{"jsonrpc":"2.0","id":1,"result":"just a string"}`)
	require.NoError(t, err)

	_, err = ExtractResult[ListToolsResult](resp)

	var decodeErr *errors.DecodeError
	require.ErrorAs(t, err, &decodeErr)
}

func TestExtractResult_DecodesCallToolResult(t *testing.T) {
	resp, err := DecodeResponse(`{"jsonrpc":"2.0","id":1,"result":{` +
		`"content":[{"type":"text","text":"hi"},` +
		`{"type":"image","mimeType":"image/png","data":"aGk="},` +
		`{"type":"resource","uri":"file:///x"}],"isError":false}}`)
	require.NoError(t, err)

	result, err := ExtractResult[CallToolResult](resp)
	require.NoError(t, err)
	require.Len(t, result.Content, 3)

	require.Equal(t, "text", result.Content[0].Type)
	require.Equal(t, "hi", result.Content[0].Text)

	require.Equal(t, "image", result.Content[1].Type)
	require.Equal(t, "image/png", result.Content[1].MimeType)
	require.Equal(t, "aGk=", result.Content[1].Data)

	// Unknown content types pass through with their raw bytes intact.
	require.Equal(t, "resource", result.Content[2].Type)
	require.Contains(t, string(result.Content[2].Raw()), `"uri":"file:///x"`)
}

func TestContentItem_MarshalPreservesUnknownFields(t *testing.T) {
	var item ContentItem

	original := `{"type":"resource","uri":"file:///x","blob":"data"}`
	require.NoError(t, json.Unmarshal([]byte(original), &item))

	out, err := json.Marshal(item)
	require.NoError(t, err)
	require.JSONEq(t, original, string(out))
}

func TestTool_InputSchemaDecodes(t *testing.T) {
	raw := `{"name":"echo","description":"echoes input","inputSchema":{` +
		`"type":"object",` +
		`"properties":{"text":{"type":"string","description":"what to echo"}},` +
		`"required":["text"]}}`

	var tool Tool
	require.NoError(t, json.Unmarshal([]byte(raw), &tool))

	require.Equal(t, "echo", tool.Name)
	require.NotNil(t, tool.InputSchema)
	require.Equal(t, "object", tool.InputSchema.Type)
	require.Contains(t, tool.InputSchema.Properties, "text")
	require.Equal(t, []string{"text"}, tool.InputSchema.Required)
}

func TestEncodeRequest_SingleLineForNestedParams(t *testing.T) {
	params := map[string]any{
		"nested": map[string]any{"multi": "no\nnewlines\nleak"},
	}

	line, err := EncodeRequest(1, MethodCallTool, params)
	require.NoError(t, err)

	// Embedded newlines must be escaped, never literal.
	require.False(t, strings.ContainsAny(line, "\n\r"))
}

func ptr[T any](v T) *T { return &v }
