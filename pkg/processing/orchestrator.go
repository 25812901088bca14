// Package processing owns the top-level dispatch loop: it instantiates
// build steps by name, runs each through its lifecycle, and recursively
// dispatches the successors its planner selects. The call stack is the
// chain: a Dispatch call returns only once the step and all transitive
// successors have completed.
package processing

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/build"
	"github.com/systemstart/forge/pkg/chain"
	"github.com/systemstart/forge/pkg/config"
)

// Factory instantiates a concrete build step for an identifier.
type Factory func(name string) (build.Step, error)

// Orchestrator dispatches build steps sequentially. It must never be used
// to run two chains against the same root path concurrently; directory
// creation and deletion are shared resources.
type Orchestrator struct {
	// Factory resolves step identifiers. Required.
	Factory Factory

	// Config is the orchestrator-level configuration, the fallback scope
	// for steps with no precursor and no local config file.
	Config api.Config

	// rootPath is the chain's top-level root, captured on the first
	// non-headless dispatch.
	rootPath string

	dispatched int
}

// New creates an orchestrator around a step factory.
func New(factory Factory, cfg api.Config) *Orchestrator {
	return &Orchestrator{Factory: factory, Config: cfg}
}

// Dispatch implements chain.Dispatcher: instantiate, configure, run, then
// plan and dispatch successors. Any failure propagates to the caller; this
// loop performs no retries and no recovery.
func (o *Orchestrator) Dispatch(req chain.Request) error {
	step, err := o.Factory(req.Build)
	if err != nil {
		return fmt.Errorf("%w: %v", build.ErrConfiguration, err)
	}

	o.dispatched++
	o.captureRoot(req)

	state := build.NewState(req.Build)
	if err := state.Configure(req.Path, req.BuildIn, req.Events, req.Precursor, o.resolver(), req.ClearBuildPath); err != nil {
		slog.Error("step configuration failed", "step", req.Build, "error", err)
		return err
	}

	if err := build.Run(state, step); err != nil {
		slog.Error("step failed", "step", req.Build, "error", err)
		return err
	}

	planner := &chain.Planner{State: state, Dispatcher: o, TopRootPath: o.rootPath}
	ran, err := planner.CallNext()
	if err != nil {
		return err
	}
	if !ran {
		slog.Debug("no successors declared", "step", req.Build)
	}
	return nil
}

// Dispatched reports how many steps this orchestrator has run.
func (o *Orchestrator) Dispatched() int { return o.dispatched }

// RootPath is the captured top-level root of the current chain.
func (o *Orchestrator) RootPath() string { return o.rootPath }

func (o *Orchestrator) captureRoot(req chain.Request) {
	if o.rootPath != "" || req.Path == "" {
		return
	}
	abs, err := filepath.Abs(req.Path)
	if err != nil {
		slog.Warn("could not resolve top-level root", "path", req.Path, "error", err)
		return
	}
	o.rootPath = abs
}

// resolver exposes the orchestrator-level config as a resolution scope.
func (o *Orchestrator) resolver() *config.Resolver {
	if o.Config == nil {
		return nil
	}
	return &config.Resolver{Local: o.Config}
}
