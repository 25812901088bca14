package build

import "errors"

// Error taxonomy for the build core. Failures are wrapped with
// fmt.Errorf("%w: ...") so callers can classify with errors.Is.
var (
	// ErrConfiguration marks an unreadable or unsupported config file, or
	// a malformed successor declaration.
	ErrConfiguration = errors.New("configuration error")

	// ErrProjectTypeNotSupported marks a resolved project type outside a
	// step's declared supported set.
	ErrProjectTypeNotSupported = errors.New("project type not supported")

	// ErrBuild marks a generic build failure, including a required
	// setting with no value from any source.
	ErrBuild = errors.New("build failed")

	// ErrCopy marks a failed copy instruction. Copy failures are logged
	// and skipped per entry; they never abort preparation.
	ErrCopy = errors.New("copy failed")
)
