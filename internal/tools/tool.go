// Package tools provides the verification tools the pipeline can run and the
// registry that ranks and executes them.
package tools

import (
	"context"
	"errors"

	"github.com/ppiankov/veritas/internal/model"
)

// ErrUnknownTool is returned when executing a tool that was never registered
var ErrUnknownTool = errors.New("unknown verification tool")

// Tool checks a claim and reports what it found.
// Verify returns (nil, nil) when the tool has nothing to say.
type Tool interface {
	Name() string
	Describe() Capability
	Verify(ctx context.Context, content string) (*model.ToolResult, error)
}

// Capability tells the registry when a tool applies and how much to trust it
type Capability struct {
	Reason string
	// Keywords are regular expressions; each match counts as one hit
	Keywords []string
	Priority int
	// Confidence is the weight aggregation gives the tool's verdicts
	Confidence float64
	// Always makes the tool applicable to any claim
	Always bool
}
