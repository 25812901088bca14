package steps

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/systemstart/forge/pkg/build"
	"github.com/systemstart/forge/pkg/chain"
)

// stageStep mirrors the project's detected convention directories (src,
// inc, dep, ...) into the build path so later steps in the chain find the
// sources where they expect them. Headless steps have nothing to stage.
type stageStep struct {
	build.Base
}

func (s *stageStep) Build(st *build.State) error {
	if st.Headless() {
		slog.Debug("headless step, nothing to stage", "step", st.Name)
		return nil
	}

	names := make([]string, 0, len(st.SubPaths))
	for name := range st.SubPaths {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		target := filepath.Join(st.BuildPath, name)
		if err := chain.CopyTree(st.SubPaths[name], target); err != nil {
			return fmt.Errorf("%w: staging %s: %v", build.ErrBuild, name, err)
		}
		slog.Info("staged directory", "step", st.Name, "name", name, "target", target)
	}
	return nil
}
