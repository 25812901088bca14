package api

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	// GenericConfigName is the conventional base name for build config files.
	GenericConfigName = "build"

	// NextBuildFolderPrefix derives a successor's build folder from its
	// step identifier when build_in is not given.
	NextBuildFolderPrefix = "then_build_"

	KeyProjectName    = "name"
	KeyProjectType    = "type"
	KeyClearBuildPath = "clear_build_path"
	KeyNext           = "next"
)

// RecognizedExtensions are tried in order during config discovery.
var RecognizedExtensions = []string{"yaml", "yml", "json"}

// Events is the set of opaque tags the invoking context supplied for this
// build chain. Order is preserved for logging; membership is what matters.
type Events []string

// Contains reports whether the event set includes e.
func (ev Events) Contains(e string) bool {
	for _, have := range ev {
		if have == e {
			return true
		}
	}
	return false
}

// ContainsAny reports whether the event set intersects want.
func (ev Events) ContainsAny(want []string) bool {
	for _, w := range want {
		if ev.Contains(w) {
			return true
		}
	}
	return false
}

// ContainsAll reports whether want is a subset of the event set.
func (ev Events) ContainsAll(want []string) bool {
	for _, w := range want {
		if !ev.Contains(w) {
			return false
		}
	}
	return true
}

// CopyInstruction stages one source glob into a successor's root before the
// successor runs. In YAML each entry is a single-pair mapping:
//
//	copy:
//	  - lib/**: dep/
//	  - README.md: docs/README.md
type CopyInstruction struct {
	Source      string
	Destination string
}

// UnmarshalYAML decodes the single-pair mapping form.
func (c *CopyInstruction) UnmarshalYAML(value *yaml.Node) error {
	var pair map[string]string
	if err := value.Decode(&pair); err != nil {
		return fmt.Errorf("decoding copy entry: %w", err)
	}
	if len(pair) != 1 {
		return fmt.Errorf("copy entry must have exactly one source: destination pair, got %d", len(pair))
	}
	for src, dst := range pair {
		c.Source = src
		c.Destination = dst
	}
	return nil
}

// MarshalYAML emits the single-pair mapping form.
func (c CopyInstruction) MarshalYAML() (any, error) {
	return map[string]string{c.Source: c.Destination}, nil
}

// NextStepSpec declares one conditional successor of a build step.
type NextStepSpec struct {
	Build           string            `yaml:"build"`
	Path            string            `yaml:"path,omitempty"`
	BuildIn         string            `yaml:"build_in,omitempty"`
	RunWhenAny      []string          `yaml:"run_when_any,omitempty"`
	RunWhenAll      []string          `yaml:"run_when_all,omitempty"`
	RunWhenNone     []string          `yaml:"run_when_none,omitempty"`
	Copy            []CopyInstruction `yaml:"copy,omitempty"`
	Config          map[string]any    `yaml:"config,omitempty"`
	TolerateFailure bool              `yaml:"tolerate_failure,omitempty"`
}

// BuildFolder returns build_in, or the conventional default derived from
// the successor's identifier.
func (s NextStepSpec) BuildFolder() string {
	if s.BuildIn != "" {
		return s.BuildIn
	}
	return NextBuildFolderPrefix + s.Build
}

// DecodeNextSteps converts the raw value fetched for the "next" key into
// successor specs. The raw value comes out of a config mapping untyped, so
// it is round-tripped through YAML rather than walked by hand.
func DecodeNextSteps(raw any) ([]NextStepSpec, error) {
	if raw == nil {
		return nil, nil
	}
	if specs, ok := raw.([]NextStepSpec); ok {
		return specs, nil
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encoding successor list: %w", err)
	}

	var specs []NextStepSpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("decoding successor list: %w", err)
	}

	if err := ValidateNextSteps(specs); err != nil {
		return nil, err
	}
	return specs, nil
}
