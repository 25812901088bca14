package steps

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/build"
)

// writeTestFile writes content to a file under dir, creating parents.
func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

// configuredState builds a state over root with the given local config
// already written to disk.
func configuredState(t *testing.T, root string, cfg string) *build.State {
	t.Helper()
	if cfg != "" {
		writeTestFile(t, root, "build.yaml", cfg)
	}

	s := build.NewState("test")
	if err := s.Configure(root, "build", api.Events{"test"}, nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	return s
}
