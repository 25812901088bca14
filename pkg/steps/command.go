package steps

import (
	"bytes"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/spf13/cast"
	"github.com/systemstart/forge/pkg/build"
	"github.com/systemstart/forge/pkg/config"
)

// commandStep runs an external tool inside the build path. The tool and
// its arguments come from configuration:
//
//	command: make
//	arguments: ["-j4", "all"]
type commandStep struct {
	build.Base
}

func (s *commandStep) Build(st *build.State) error {
	command := st.Resolver.FetchString("command", "", config.DefaultOrder)
	if command == "" {
		return fmt.Errorf("%w: no value for \"command\" from any source", build.ErrBuild)
	}

	args := cast.ToStringSlice(st.Resolver.FetchRaw("arguments", nil, config.DefaultOrder))

	if _, err := exec.LookPath(command); err != nil {
		return fmt.Errorf("%w: %q not found in PATH: %v", build.ErrBuild, command, err)
	}

	slog.Info("running command", "step", st.Name, "command", command, "arguments", args)

	cmd := exec.Command(command, args...)
	if !st.Headless() {
		cmd.Dir = st.BuildPath
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		st.MarkBuildResult(false)
		return fmt.Errorf("%w: %q failed: %v\nstderr: %s", build.ErrBuild, command, err, stderr.String())
	}

	slog.Debug("command finished", "step", st.Name, "stdout", stdout.String())
	st.MarkBuildResult(true)
	return nil
}
