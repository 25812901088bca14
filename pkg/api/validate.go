package api

import (
	"fmt"
)

// Validate checks one successor spec for declaration errors.
func (s NextStepSpec) Validate() error {
	if s.Build == "" {
		return fmt.Errorf("build is required")
	}

	for i, cpy := range s.Copy {
		if cpy.Source == "" {
			return fmt.Errorf("copy entry %d: source is empty", i)
		}
		if cpy.Destination == "" {
			return fmt.Errorf("copy entry %d: destination is empty", i)
		}
	}

	// An event both required and prohibited can never be satisfied.
	for _, e := range s.RunWhenNone {
		if Events(s.RunWhenAll).Contains(e) {
			return fmt.Errorf("event %q appears in both run_when_all and run_when_none", e)
		}
	}

	return nil
}

// ValidateNextSteps checks every spec in a successor list.
func ValidateNextSteps(specs []NextStepSpec) error {
	for i, s := range specs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("next step %d: %w", i, err)
		}
	}
	return nil
}
