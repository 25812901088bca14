package steps

import (
	"github.com/systemstart/forge/pkg/build"
)

// startStep does no work of its own. It exists to anchor a build tree: its
// config declares the successors and the chain unfolds from there.
type startStep struct {
	build.Base
}
