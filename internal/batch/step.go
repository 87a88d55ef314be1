package batch

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/stoicstudio/McpCli/internal/args"
	"github.com/stoicstudio/McpCli/internal/errors"
)

// waitPrefix marks a timed-pause step, matched case-insensitively.
const waitPrefix = "wait:"

// Step is one unit of a batch script.
// Implementations: WaitStep, InvokeStep.
type Step interface {
	step() // marker method
}

// WaitStep suspends execution for a duration and performs no I/O.
type WaitStep struct {
	Duration time.Duration
}

func (WaitStep) step() {}

// InvokeStep calls one tool on the connection.
type InvokeStep struct {
	Tool      string
	Arguments map[string]any
}

func (InvokeStep) step() {}

// ParseStep parses a single free-text command string.
//
// "wait:<milliseconds>" (case-insensitive) becomes a WaitStep; anything else
// is "toolName key=value..." and becomes an InvokeStep. Empty strings are
// errors, not steps.
func ParseStep(raw string) (Step, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.ErrEmptyStep
	}

	if strings.HasPrefix(strings.ToLower(trimmed), waitPrefix) {
		value := trimmed[len(waitPrefix):]

		ms, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || ms < 0 {
			return nil, fmt.Errorf("wait step %q: milliseconds must be a non-negative integer", raw)
		}

		return WaitStep{Duration: time.Duration(ms) * time.Millisecond}, nil
	}

	fields := strings.Fields(trimmed)

	arguments, err := args.Parse(fields[1:])
	if err != nil {
		return nil, fmt.Errorf("invoke step %q: %w", raw, err)
	}

	return InvokeStep{Tool: fields[0], Arguments: arguments}, nil
}
