// Package steps provides the built-in build step variants and the name
// factory the orchestrator instantiates them through.
package steps

import (
	"fmt"

	"github.com/systemstart/forge/pkg/build"
)

const (
	StepStart   = "start"
	StepCommand = "command"
	StepStage   = "stage"
)

// New creates a Step implementation for the given identifier.
func New(name string) (build.Step, error) {
	switch name {
	case StepStart:
		return &startStep{}, nil
	case StepCommand:
		return &commandStep{}, nil
	case StepStage:
		return &stageStep{}, nil
	default:
		return nil, fmt.Errorf("unknown build step: %s", name)
	}
}
