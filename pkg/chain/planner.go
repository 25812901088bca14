package chain

import (
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/build"
)

// Planner evaluates one step's declared successors against the runtime
// events, prepares each eligible successor's directory and config, and
// dispatches it back through the orchestrator.
type Planner struct {
	State      *build.State
	Dispatcher Dispatcher

	// TopRootPath is the chain's top-level root; successor paths with a
	// leading separator resolve against it instead of the current build
	// path.
	TopRootPath string
}

// ValidateNext decides whether a successor spec should run given this
// step's events. A spec with no gating sets always runs.
func (p *Planner) ValidateNext(spec api.NextStepSpec) bool {
	events := p.State.Events

	if len(spec.RunWhenNone) > 0 && events.ContainsAny(spec.RunWhenNone) {
		slog.Info("skipping successor, prohibitive event present",
			"build", spec.Build, "runWhenNone", spec.RunWhenNone, "events", events)
		return false
	}

	if spec.RunWhenAny != nil && !events.ContainsAny(spec.RunWhenAny) {
		slog.Info("skipping successor, no required event present",
			"build", spec.Build, "runWhenAny", spec.RunWhenAny, "events", events)
		return false
	}

	if spec.RunWhenAll != nil && !events.ContainsAll(spec.RunWhenAll) {
		slog.Info("skipping successor, required events incomplete",
			"build", spec.Build, "runWhenAll", spec.RunWhenAll, "events", events)
		return false
	}

	return true
}

// PrepareNext creates the successor's directory tree, stages its copy
// instructions, and writes its generated config. It returns the successor's
// root path, or "" without touching the filesystem when the current step is
// headless.
func (p *Planner) PrepareNext(spec api.NextStepSpec) (string, error) {
	if p.State.Headless() {
		slog.Debug("headless step, skipping successor preparation", "build", spec.Build)
		return "", nil
	}

	nextRoot := p.resolveNextRoot(spec.Path)
	slog.Debug("preparing successor", "build", spec.Build, "root", nextRoot)

	if err := os.MkdirAll(filepath.Join(nextRoot, spec.BuildFolder()), 0o750); err != nil {
		return "", fmt.Errorf("creating successor build path: %w", err)
	}

	p.runCopies(spec, nextRoot)

	if spec.Config != nil {
		if err := p.writeNextConfig(spec, nextRoot); err != nil {
			return "", err
		}
	}

	return nextRoot, nil
}

// resolveNextRoot resolves a successor's path declaration. A leading
// separator marks it root-relative; everything else is relative to this
// step's build path, defaulting to the build path itself.
func (p *Planner) resolveNextRoot(path string) string {
	if path == "" {
		path = "."
	}
	if strings.HasPrefix(path, "/") {
		return filepath.Join(p.TopRootPath, strings.TrimPrefix(path, "/"))
	}
	return filepath.Join(p.State.BuildPath, path)
}

// writeNextConfig merges this step's config-key-map values into the spec's
// inline config for any key the spec does not set itself, and serializes
// the result to the successor's conventional config location.
func (p *Planner) writeNextConfig(spec api.NextStepSpec, nextRoot string) error {
	merged := maps.Clone(spec.Config)

	inherited := make(map[string]any)
	for key, field := range p.State.ConfigKeyMap() {
		inherited[key] = p.State.FieldValue(field)
	}

	// mergo fills only keys absent from merged; inline overrides win.
	if err := mergo.Merge(&merged, inherited); err != nil {
		return fmt.Errorf("merging successor config: %w", err)
	}

	path, err := api.WriteConfigFile(nextRoot, merged)
	if err != nil {
		return fmt.Errorf("writing successor config: %w", err)
	}
	slog.Debug("wrote successor config", "build", spec.Build, "path", path)
	return nil
}

// CallNext dispatches this step's eligible successors strictly in
// declaration order. It returns ran=false when the step declares no
// successor list at all, which is distinct from success or failure.
//
// Aggregation: a failed dispatch stops the loop and fails the chain unless
// the spec tolerates failure; a tolerated failure is recorded and iteration
// continues. The final result is that of the last dispatched successor.
func (p *Planner) CallNext() (ran bool, err error) {
	if p.State.Next == nil {
		return false, nil
	}

	var last error
	for _, spec := range p.State.Next {
		if !p.ValidateNext(spec) {
			continue
		}

		nextRoot, prepErr := p.PrepareNext(spec)
		if prepErr == nil {
			slog.Info("dispatching successor", "build", spec.Build, "root", nextRoot)
			prepErr = p.Dispatcher.Dispatch(Request{
				Build:     spec.Build,
				Path:      nextRoot,
				BuildIn:   spec.BuildFolder(),
				Events:    p.State.Events,
				Precursor: p.State,
			})
		}

		last = prepErr
		if prepErr != nil {
			if !spec.TolerateFailure {
				slog.Error("successor failed, aborting remaining successors",
					"build", spec.Build, "error", prepErr)
				return true, fmt.Errorf("successor %q: %w", spec.Build, prepErr)
			}
			slog.Warn("successor failed, tolerated", "build", spec.Build, "error", prepErr)
		}
	}

	if last != nil {
		return true, fmt.Errorf("last successor failed: %w", last)
	}
	return true, nil
}
