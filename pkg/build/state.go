// Package build holds the per-step state record and the build lifecycle:
// path population, hierarchical configuration, and the hook sequence
// PreBuild → Build → PostBuild → success check.
package build

import (
	"path/filepath"
	"strings"

	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/config"
)

// Phase tracks where a step is in its lifecycle.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseConfigured
	PhasePreBuilding
	PhaseBuilding
	PhasePostBuilding
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseConfigured:
		return "configured"
	case PhasePreBuilding:
		return "pre-building"
	case PhaseBuilding:
		return "building"
	case PhasePostBuilding:
		return "post-building"
	case PhaseCompleted:
		return "completed"
	}
	return "unknown"
}

// Field names a state field addressable through the config key map.
type Field int

const (
	FieldProjectName Field = iota
	FieldProjectType
)

// ConventionalSubdirs are the project subdirectories PopulatePaths detects
// (never creates) under the root path.
var ConventionalSubdirs = []string{"src", "inc", "dep", "lib", "exe", "test"}

// State is the per-step record. It is populated once by Configure, mutated
// only by the step's own hooks, and discarded when the step and all of its
// dispatched successors have returned. Precursor is a one-way
// back-reference used solely as a configuration fallback.
type State struct {
	Name string

	ProjectType string
	ProjectName string

	// RootPath empty means headless: no path was supplied and every
	// filesystem operation is skipped.
	RootPath  string
	BuildPath string

	// SubPaths holds the conventional subdirectories that exist under
	// RootPath, keyed by name; absent entries were not detected.
	SubPaths map[string]string

	Events         api.Events
	ClearBuildPath bool
	Next           []api.NextStepSpec

	Local     api.Config
	Resolver  *config.Resolver
	Precursor *State

	Phase Phase

	keyMap         map[string]Field
	buildSucceeded *bool
	inheritedLocal bool
}

// NewState creates a step state in the Created phase. The config key map is
// fixed here and used in both directions: inbound resolution of identity
// keys and outbound generation of successor configs.
func NewState(name string) *State {
	return &State{
		Name: name,
		keyMap: map[string]Field{
			api.KeyProjectName: FieldProjectName,
			api.KeyProjectType: FieldProjectType,
		},
	}
}

// ConfigKeyMap returns a copy of the key→field table.
func (s *State) ConfigKeyMap() map[string]Field {
	out := make(map[string]Field, len(s.keyMap))
	for k, f := range s.keyMap {
		out[k] = f
	}
	return out
}

// FieldValue reads a mapped field.
func (s *State) FieldValue(f Field) string {
	switch f {
	case FieldProjectName:
		return s.ProjectName
	case FieldProjectType:
		return s.ProjectType
	}
	return ""
}

// SetField writes a mapped field.
func (s *State) SetField(f Field, value string) {
	switch f {
	case FieldProjectName:
		s.ProjectName = value
	case FieldProjectType:
		s.ProjectType = value
	}
}

// StateValue implements config.StateSource. Only keys in the config key
// map are answered, and only once the mapped field has a value.
func (s *State) StateValue(key string) (any, bool) {
	f, ok := s.keyMap[key]
	if !ok {
		return nil, false
	}
	v := s.FieldValue(f)
	if v == "" {
		return nil, false
	}
	return v, true
}

// MarkBuildResult lets a concrete Build hook record an explicit success
// flag for DidBuildSucceed.
func (s *State) MarkBuildResult(succeeded bool) {
	s.buildSucceeded = &succeeded
}

// BuildSucceeded reports the explicitly recorded result. A step that never
// records one succeeded by default.
func (s *State) BuildSucceeded() bool {
	return s.buildSucceeded == nil || *s.buildSucceeded
}

// Headless reports whether the step runs without a working directory.
func (s *State) Headless() bool {
	return s.RootPath == ""
}

// DefaultIdentity derives the default project type and name from the root
// directory's base name, split on its final dot: the last segment is the
// type, the joined remainder the name. "web.site.exe" yields type "exe"
// and name "web.site"; a name with no dot is both.
func DefaultIdentity(rootPath string) (projectType, projectName string) {
	if rootPath == "" {
		return "", ""
	}

	segments := strings.Split(filepath.Base(rootPath), ".")
	projectType = segments[len(segments)-1]
	projectName = projectType
	if len(segments) > 1 {
		projectName = strings.Join(segments[:len(segments)-1], ".")
	}
	return projectType, projectName
}
