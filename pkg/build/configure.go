package build

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cast"
	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/config"
)

// Configure populates the step state before any lifecycle hook runs: paths,
// local config (discovered, else inherited from the precursor or the
// orchestrator scope, else empty), project identity, clear-build-path, and
// the declared successor list.
//
// parent is the orchestrator-level resolver; it becomes the fallback scope
// only when the step has no precursor. clearArg carries an explicit
// clear-build-path argument from the dispatch request; nil means not given.
func (s *State) Configure(rootPath, buildFolder string, events api.Events, precursor *State, parent *config.Resolver, clearArg *bool) error {
	if len(events) == 0 {
		slog.Warn("no events supplied", "step", s.Name)
	}
	s.Events = events
	s.Precursor = precursor

	if err := s.PopulatePaths(rootPath, buildFolder); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	if err := s.populateLocalConfig(precursor, parent); err != nil {
		return err
	}

	parentResolver := parent
	if precursor != nil {
		parentResolver = precursor.Resolver
	}
	s.Resolver = &config.Resolver{
		State:  s,
		Local:  s.Local,
		Parent: parentResolver,
	}

	s.populateIdentity()

	// clear_build_path must come from an explicit argument or a config
	// value. The environment and parent scopes never decide a recursive
	// delete.
	if clearArg != nil {
		s.ClearBuildPath = *clearArg
	} else {
		v := s.Resolver.Fetch(api.KeyClearBuildPath, false,
			[]config.Source{config.SourceState, config.SourceConfig})
		s.ClearBuildPath = cast.ToBool(v)
	}

	if err := s.populateNext(); err != nil {
		return err
	}

	s.Phase = PhaseConfigured
	return nil
}

func (s *State) populateLocalConfig(precursor *State, parent *config.Resolver) error {
	cfg, path, err := api.DiscoverConfig(s.RootPath, s.Name)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	switch {
	case cfg != nil:
		slog.Debug("using local config", "step", s.Name, "path", path)
	case precursor != nil:
		cfg = precursor.Local
		s.inheritedLocal = true
		slog.Debug("inheriting precursor config", "step", s.Name)
	case parent != nil && parent.Local != nil:
		cfg = parent.Local
		slog.Debug("using orchestrator config", "step", s.Name)
	}

	if cfg == nil {
		cfg = api.Config{}
	}
	s.Local = cfg
	return nil
}

// populateIdentity resolves every key in the config key map, defaulting to
// the identity derived from the root directory's name.
func (s *State) populateIdentity() {
	defType, defName := DefaultIdentity(s.RootPath)
	defaults := map[Field]string{
		FieldProjectType: defType,
		FieldProjectName: defName,
	}

	for key, field := range s.keyMap {
		s.SetField(field, s.Resolver.FetchString(key, defaults[field], config.DefaultOrder))
	}
	slog.Debug("resolved project identity", "step", s.Name,
		"projectName", s.ProjectName, "projectType", s.ProjectType)
}

// populateNext fetches the declared successor list verbatim. Only this
// step's own scopes are consulted: a precursor's successor list describes
// the precursor's chain, and fetching it here would re-dispatch the same
// successors without end.
func (s *State) populateNext() error {
	sources := []config.Source{config.SourceState, config.SourceConfig}
	if s.inheritedLocal {
		sources = []config.Source{config.SourceState}
	}
	raw := s.Resolver.FetchRaw(api.KeyNext, nil, sources)

	next, err := api.DecodeNextSteps(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	s.Next = next
	return nil
}
