package build

// Step is the hook contract concrete build variants implement. Build is
// the only hook most variants override; a step with every hook defaulted
// exists purely to start a chain.
type Step interface {
	// SupportedProjectTypes returns the project types this step can
	// build. An empty set means any type.
	SupportedProjectTypes() []string

	// PreBuild runs before the supported-type check.
	PreBuild(s *State) error

	// Build performs the step's work.
	Build(s *State) error

	// PostBuild runs after Build.
	PostBuild(s *State) error

	// DidBuildSucceed decides the step's final result after PostBuild.
	DidBuildSucceed(s *State) bool
}

// Base is an embeddable no-op implementation of every hook. Concrete steps
// embed it and override what they need.
type Base struct{}

func (Base) SupportedProjectTypes() []string { return nil }

func (Base) PreBuild(*State) error { return nil }

func (Base) Build(*State) error { return nil }

func (Base) PostBuild(*State) error { return nil }

// DidBuildSucceed defaults to the explicit flag a Build hook may have
// recorded on the state, or true when none was.
func (Base) DidBuildSucceed(s *State) bool { return s.BuildSucceeded() }
