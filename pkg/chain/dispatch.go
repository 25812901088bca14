// Package chain plans and dispatches a step's successors: event gating,
// successor directory and config preparation, and the sequential dispatch
// loop with its failure-aggregation rule.
package chain

import (
	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/build"
)

// Request asks the orchestrator to run one build step. Events pass through
// a chain unchanged; Precursor is the dispatching step, used by the
// successor only as a configuration fallback.
type Request struct {
	Build          string
	Path           string
	BuildIn        string
	Events         api.Events
	Precursor      *build.State
	ClearBuildPath *bool
}

// Dispatcher is the orchestrator contract the planner calls back into. A
// Dispatch call returns only once the requested step and, transitively,
// all of its own successors have completed. A nil error is success.
type Dispatcher interface {
	Dispatch(req Request) error
}
