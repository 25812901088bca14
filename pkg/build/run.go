package build

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
)

// Run drives a configured step through its lifecycle. Failures from the
// hooks propagate unwrapped to the caller; the core performs no local
// recovery.
func Run(s *State, step Step) error {
	if err := prepareBuildPath(s); err != nil {
		return err
	}

	s.Phase = PhasePreBuilding
	if err := step.PreBuild(s); err != nil {
		return err
	}

	if supported := step.SupportedProjectTypes(); len(supported) > 0 && !slices.Contains(supported, s.ProjectType) {
		return fmt.Errorf("%w: %q is not buildable by %s (supported: %v)",
			ErrProjectTypeNotSupported, s.ProjectType, s.Name, supported)
	}

	slog.Info("building", "step", s.Name, "projectName", s.ProjectName,
		"projectType", s.ProjectType, "buildPath", s.BuildPath)

	s.Phase = PhaseBuilding
	if err := step.Build(s); err != nil {
		return err
	}

	s.Phase = PhasePostBuilding
	if err := step.PostBuild(s); err != nil {
		return err
	}

	s.Phase = PhaseCompleted
	if !step.DidBuildSucceed(s) {
		return fmt.Errorf("%w: %s reported an unsuccessful build of %q", ErrBuild, s.Name, s.ProjectName)
	}
	return nil
}

// prepareBuildPath clears the build path when asked (the delete is
// irreversible and completes before anything else) and then (re)creates it.
// Headless steps skip both.
func prepareBuildPath(s *State) error {
	if s.Headless() {
		return nil
	}

	if s.ClearBuildPath {
		if _, err := os.Stat(s.BuildPath); err == nil {
			slog.Info("clearing build path", "step", s.Name, "buildPath", s.BuildPath)
			if err := os.RemoveAll(s.BuildPath); err != nil {
				return fmt.Errorf("clearing build path %s: %w", s.BuildPath, err)
			}
		}
	}

	if err := os.MkdirAll(s.BuildPath, 0o750); err != nil {
		return fmt.Errorf("creating build path %s: %w", s.BuildPath, err)
	}
	return nil
}
