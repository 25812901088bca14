package build

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// PopulatePaths resolves the step's directory tree. With an empty rootPath
// the step is headless: every path field stays absent and no filesystem
// operation happens. Otherwise the root is canonicalized, the build path
// rootPath/buildFolder is created (idempotently), and each conventional
// subdirectory that already exists under the root is recorded. Convention
// directories are only ever detected here, never created.
func (s *State) PopulatePaths(rootPath, buildFolder string) error {
	if rootPath == "" {
		slog.Warn("no root path supplied, running headless", "step", s.Name)
		s.RootPath = ""
		s.BuildPath = ""
		s.SubPaths = nil
		return nil
	}

	abs, err := filepath.Abs(rootPath)
	if err != nil {
		return fmt.Errorf("resolving root path %q: %w", rootPath, err)
	}
	s.RootPath = abs
	slog.Debug("resolved root path", "step", s.Name, "root", s.RootPath)

	s.BuildPath = filepath.Join(abs, buildFolder)
	if err := os.MkdirAll(s.BuildPath, 0o750); err != nil {
		return fmt.Errorf("creating build path %s: %w", s.BuildPath, err)
	}
	slog.Debug("resolved build path", "step", s.Name, "build", s.BuildPath)

	s.SubPaths = make(map[string]string)
	for _, name := range ConventionalSubdirs {
		candidate := filepath.Join(abs, name)
		st, err := os.Stat(candidate)
		if err == nil && st.IsDir() {
			s.SubPaths[name] = candidate
			slog.Debug("detected conventional directory", "step", s.Name, "name", name, "path", candidate)
		}
	}

	return nil
}
