package build

import (
	"testing"

	"github.com/systemstart/forge/pkg/api"
)

func TestDefaultIdentity(t *testing.T) {
	tests := []struct {
		root     string
		wantType string
		wantName string
	}{
		{"/work/web.site.exe", "exe", "web.site"},
		{"/work/mylib.lib", "lib", "mylib"},
		{"/work/plainproject", "plainproject", "plainproject"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.root, func(t *testing.T) {
			gotType, gotName := DefaultIdentity(tt.root)
			if gotType != tt.wantType || gotName != tt.wantName {
				t.Errorf("DefaultIdentity(%q) = (%q, %q), want (%q, %q)",
					tt.root, gotType, gotName, tt.wantType, tt.wantName)
			}
		})
	}
}

func TestConfigKeyMap_BothDirections(t *testing.T) {
	s := NewState("test")
	s.ProjectName = "demo"
	s.ProjectType = "lib"

	keyMap := s.ConfigKeyMap()
	if len(keyMap) != 2 {
		t.Fatalf("expected 2 mapped keys, got %d", len(keyMap))
	}

	// A key that maps to field F when reading must map from F when
	// writing: reading through the key and reading the field agree.
	for key, field := range keyMap {
		fromKey, ok := s.StateValue(key)
		if !ok {
			t.Fatalf("StateValue(%q) should be present", key)
		}
		if fromKey != s.FieldValue(field) {
			t.Errorf("key %q resolves to %v but field holds %q", key, fromKey, s.FieldValue(field))
		}
	}

	if v, _ := s.StateValue(api.KeyProjectName); v != "demo" {
		t.Errorf("StateValue(name) = %v, want demo", v)
	}
	if v, _ := s.StateValue(api.KeyProjectType); v != "lib" {
		t.Errorf("StateValue(type) = %v, want lib", v)
	}
}

func TestStateValue_UnmappedAndEmpty(t *testing.T) {
	s := NewState("test")

	if _, ok := s.StateValue("next"); ok {
		t.Error("unmapped keys must not resolve from state")
	}
	if _, ok := s.StateValue(api.KeyProjectName); ok {
		t.Error("an unset field must not resolve from state")
	}
}

func TestSetField(t *testing.T) {
	s := NewState("test")
	s.SetField(FieldProjectType, "img")
	s.SetField(FieldProjectName, "webserver")

	if s.ProjectType != "img" || s.ProjectName != "webserver" {
		t.Errorf("unexpected identity: %q / %q", s.ProjectType, s.ProjectName)
	}
}

func TestBuildSucceeded(t *testing.T) {
	s := NewState("test")
	if !s.BuildSucceeded() {
		t.Error("default must be success")
	}

	s.MarkBuildResult(false)
	if s.BuildSucceeded() {
		t.Error("explicit failure must stick")
	}

	s.MarkBuildResult(true)
	if !s.BuildSucceeded() {
		t.Error("explicit success must stick")
	}
}

func TestPhaseString(t *testing.T) {
	phases := map[Phase]string{
		PhaseCreated:      "created",
		PhaseConfigured:   "configured",
		PhasePreBuilding:  "pre-building",
		PhaseBuilding:     "building",
		PhasePostBuilding: "post-building",
		PhaseCompleted:    "completed",
		Phase(99):         "unknown",
	}
	for p, want := range phases {
		if p.String() != want {
			t.Errorf("Phase(%d).String() = %q, want %q", p, p.String(), want)
		}
	}
}
