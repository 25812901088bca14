package chain

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/build"
)

// runCopies executes a successor's copy instructions in declaration order.
// Each entry is independent best-effort: a failure is logged and skipped
// and never aborts the remaining entries or the preparation.
func (p *Planner) runCopies(spec api.NextStepSpec, nextRoot string) {
	if len(spec.Copy) == 0 {
		return
	}

	srcRoot := p.TopRootPath
	if srcRoot == "" {
		srcRoot = p.State.RootPath
	}

	for _, ins := range spec.Copy {
		if err := copyInstruction(srcRoot, nextRoot, ins); err != nil {
			slog.Warn("copy instruction failed, skipping",
				"build", spec.Build, "source", ins.Source, "destination", ins.Destination, "error", err)
		}
	}
}

// copyInstruction resolves the source glob against srcRoot and copies every
// match under dstRoot. With multiple matches, or a destination written with
// a trailing separator, matches land inside the destination directory under
// their own base names.
func copyInstruction(srcRoot, dstRoot string, ins api.CopyInstruction) error {
	matches, err := doublestar.Glob(os.DirFS(srcRoot), ins.Source)
	if err != nil {
		return fmt.Errorf("%w: glob %q: %v", build.ErrCopy, ins.Source, err)
	}
	if len(matches) == 0 {
		return fmt.Errorf("%w: %q matched nothing under %s", build.ErrCopy, ins.Source, srcRoot)
	}

	intoDir := len(matches) > 1 || strings.HasSuffix(ins.Destination, "/")
	for _, m := range matches {
		target := filepath.Join(dstRoot, ins.Destination)
		if intoDir {
			target = filepath.Join(target, filepath.Base(m))
		}
		if err := copyPath(filepath.Join(srcRoot, m), target); err != nil {
			return fmt.Errorf("%w: %v", build.ErrCopy, err)
		}
		slog.Debug("copied", "source", m, "target", target)
	}
	return nil
}

func copyPath(src, dst string) error {
	st, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if st.IsDir() {
		return CopyTree(src, dst)
	}
	return copyFile(src, dst, st.Mode())
}

// CopyTree recursively copies a directory tree, creating directories and
// preserving file modes. Step variants reuse it for staging work.
func CopyTree(src, dst string) error {
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error at %s: %w", path, err)
		}

		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return fmt.Errorf("computing relative path for %s: %w", path, relErr)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if mkErr := os.MkdirAll(target, 0o750); mkErr != nil {
				return fmt.Errorf("creating directory %s: %w", target, mkErr)
			}
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return fmt.Errorf("stat %s: %w", path, infoErr)
		}
		return copyFile(path, target, info.Mode())
	})
	if err != nil {
		return fmt.Errorf("copying tree %s: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string, mode fs.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return fmt.Errorf("creating directory for %s: %w", dst, err)
	}
	if err := os.WriteFile(dst, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}
