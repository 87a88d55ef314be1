// Package format renders tool catalogs, schemas, and call results for
// humans. It consumes the protocol types and produces plain text; nothing in
// here touches the connection.
package format

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/stoicstudio/McpCli/internal/batch"
	"github.com/stoicstudio/McpCli/internal/protocol"
)

// Renderer writes human-readable output to a single destination.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

// ToolTable prints one row per tool: name and description.
func (r *Renderer) ToolTable(tools []protocol.Tool) {
	if len(tools) == 0 {
		fmt.Fprintln(r.w, "no tools available")

		return
	}

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")

	for _, tool := range tools {
		fmt.Fprintf(tw, "%s\t%s\n", tool.Name, tool.Description)
	}

	tw.Flush()
}

// ToolHelp prints a tool's description and its input parameters derived
// from the JSON schema: name, type, and whether the parameter is required.
func (r *Renderer) ToolHelp(tool protocol.Tool) {
	fmt.Fprintln(r.w, tool.Name)

	if tool.Description != "" {
		fmt.Fprintf(r.w, "  %s\n", tool.Description)
	}

	schema := tool.InputSchema
	if schema == nil || len(schema.Properties) == 0 {
		fmt.Fprintln(r.w, "  (no parameters)")

		return
	}

	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}

	sort.Strings(names)

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  PARAMETER\tTYPE\t\tDESCRIPTION")

	for _, name := range names {
		prop := schema.Properties[name]

		marker := ""
		if required[name] {
			marker = "(required)"
		}

		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", name, schemaType(prop), marker, prop.Description)
	}

	tw.Flush()
}

// CallResult prints a tool call result: text content verbatim, images
// summarized, unknown content types by tag.
func (r *Renderer) CallResult(result *protocol.CallToolResult) {
	if result.IsError {
		fmt.Fprintln(r.w, "tool reported an error:")
	}

	for _, item := range result.Content {
		switch item.Type {
		case "text":
			fmt.Fprintln(r.w, item.Text)
		case "image":
			fmt.Fprintf(r.w, "[image %s, %d bytes base64]\n", item.MimeType, len(item.Data))
		default:
			fmt.Fprintf(r.w, "[%s content]\n", item.Type)
		}
	}
}

// schemaType describes a schema's type for display.
func schemaType(s *jsonschema.Schema) string {
	if s == nil || s.Type == "" {
		return "any"
	}

	return s.Type
}

// BatchSink renders batch step outcomes as they arrive.
type BatchSink struct {
	r *Renderer
}

// Compile-time verification that BatchSink implements batch.Sink.
var _ batch.Sink = (*BatchSink)(nil)

// NewBatchSink creates a sink rendering through r.
func NewBatchSink(r *Renderer) *BatchSink {
	return &BatchSink{r: r}
}

// StepResult implements batch.Sink.
func (s *BatchSink) StepResult(index int, step batch.InvokeStep, result *protocol.CallToolResult) {
	fmt.Fprintf(s.r.w, "step %d: %s\n", index+1, step.Tool)
	s.r.CallResult(result)
}

// StepError implements batch.Sink.
func (s *BatchSink) StepError(index int, raw string, err error) {
	fmt.Fprintf(s.r.w, "step %d failed (%s): %v\n", index+1, raw, err)
}

// StepSkipped implements batch.Sink.
func (s *BatchSink) StepSkipped(index int, raw string, err error) {
	fmt.Fprintf(s.r.w, "step %d skipped (%q): %v\n", index+1, raw, err)
}
