package batch

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stoicstudio/McpCli/internal/errors"
	"github.com/stoicstudio/McpCli/internal/protocol"
)

// Caller is the slice of the client the runner needs.
type Caller interface {
	CallTool(
		ctx context.Context,
		name string,
		arguments map[string]any,
		timeout ...time.Duration,
	) (*protocol.CallToolResult, error)
}

// Sink receives per-step outcomes as the batch progresses.
type Sink interface {
	// StepResult reports a completed tool invocation.
	StepResult(index int, step InvokeStep, result *protocol.CallToolResult)

	// StepError reports a tool invocation that failed with a server error
	// or timeout. Execution continues.
	StepError(index int, raw string, err error)

	// StepSkipped reports an empty or unparseable step. Execution continues.
	StepSkipped(index int, raw string, err error)
}

// Runner sequences steps over one client connection.
type Runner struct {
	log    *slog.Logger
	client Caller
	sink   Sink
}

// NewRunner creates a runner. The client must already be initialized.
func NewRunner(log *slog.Logger, client Caller, sink Sink) *Runner {
	return &Runner{
		log:    log.With("component", "batch"),
		client: client,
		sink:   sink,
	}
}

// Run executes the steps strictly in order.
//
// Per-step ProtocolError and TimeoutError are reported to the sink and do
// not abort the batch: a tool saying no or stalling is that step's problem.
// CorrelationError, DecodeError, InvalidStateError, and transport failures
// abort immediately because the connection can no longer be trusted.
// Unparseable steps are reported and skipped.
func (r *Runner) Run(ctx context.Context, steps []string) error {
	for i, raw := range steps {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		step, err := ParseStep(raw)
		if err != nil {
			r.log.Warn("Skipping step", "index", i, "error", err)
			r.sink.StepSkipped(i, raw, err)

			continue
		}

		switch s := step.(type) {
		case WaitStep:
			r.log.Debug("Waiting", "index", i, "duration", s.Duration)

			select {
			case <-time.After(s.Duration):
			case <-ctx.Done():
				return ctx.Err()
			}

		case InvokeStep:
			r.log.Debug("Invoking tool", "index", i, "tool", s.Tool)

			result, err := r.client.CallTool(ctx, s.Tool, s.Arguments)
			if err != nil {
				if isStepLocal(err) {
					r.log.Warn("Step failed, continuing", "index", i, "tool", s.Tool, "error", err)
					r.sink.StepError(i, raw, err)

					continue
				}

				return fmt.Errorf("step %d (%s): %w", i+1, s.Tool, err)
			}

			r.sink.StepResult(i, s, result)
		}
	}

	return nil
}

// isStepLocal reports whether the error is confined to one step. Server
// errors and timeouts are; everything else indicates connection-level
// trouble.
func isStepLocal(err error) bool {
	if _, ok := stderrors.AsType[*errors.ProtocolError](err); ok {
		return true
	}

	if _, ok := stderrors.AsType[*errors.TimeoutError](err); ok {
		return true
	}

	return false
}
