package chain

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/systemstart/forge/pkg/api"
	"github.com/systemstart/forge/pkg/build"
)

// fakeDispatcher records requests and answers from a script of results.
type fakeDispatcher struct {
	requests []Request
	results  map[string]error
}

func (f *fakeDispatcher) Dispatch(req Request) error {
	f.requests = append(f.requests, req)
	return f.results[req.Build]
}

func (f *fakeDispatcher) dispatched() []string {
	names := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		names = append(names, r.Build)
	}
	return names
}

func testPlanner(t *testing.T, events api.Events) (*Planner, *fakeDispatcher) {
	t.Helper()
	root := t.TempDir()

	state := build.NewState("test")
	if err := state.Configure(root, "build", events, nil, nil, nil); err != nil {
		t.Fatal(err)
	}

	d := &fakeDispatcher{results: map[string]error{}}
	return &Planner{State: state, Dispatcher: d, TopRootPath: state.RootPath}, d
}

func TestValidateNext(t *testing.T) {
	tests := []struct {
		name   string
		spec   api.NextStepSpec
		events api.Events
		want   bool
	}{
		{
			name:   "no gating always accepts",
			spec:   api.NextStepSpec{Build: "pkg"},
			events: nil,
			want:   true,
		},
		{
			name:   "run_when_any met",
			spec:   api.NextStepSpec{Build: "pkg", RunWhenAny: []string{"publish", "release"}},
			events: api.Events{"publish"},
			want:   true,
		},
		{
			name:   "run_when_any not met",
			spec:   api.NextStepSpec{Build: "pkg", RunWhenAny: []string{"publish"}},
			events: api.Events{"test"},
			want:   false,
		},
		{
			name:   "empty run_when_any present never matches",
			spec:   api.NextStepSpec{Build: "pkg", RunWhenAny: []string{}},
			events: api.Events{"test"},
			want:   false,
		},
		{
			name:   "run_when_all subset",
			spec:   api.NextStepSpec{Build: "pkg", RunWhenAll: []string{"test", "publish"}},
			events: api.Events{"test", "publish", "extra"},
			want:   true,
		},
		{
			name:   "run_when_all incomplete",
			spec:   api.NextStepSpec{Build: "pkg", RunWhenAll: []string{"test", "publish"}},
			events: api.Events{"test"},
			want:   false,
		},
		{
			name:   "run_when_none intersects",
			spec:   api.NextStepSpec{Build: "pkg", RunWhenNone: []string{"dry-run"}},
			events: api.Events{"dry-run", "test"},
			want:   false,
		},
		{
			name:   "run_when_none disjoint",
			spec:   api.NextStepSpec{Build: "pkg", RunWhenNone: []string{"dry-run"}},
			events: api.Events{"test"},
			want:   true,
		},
		{
			name: "all three combined",
			spec: api.NextStepSpec{
				Build:       "pkg",
				RunWhenAny:  []string{"publish"},
				RunWhenAll:  []string{"test"},
				RunWhenNone: []string{"dry-run"},
			},
			events: api.Events{"publish", "test"},
			want:   true,
		},
		{
			name: "none beats any",
			spec: api.NextStepSpec{
				Build:       "pkg",
				RunWhenAny:  []string{"publish"},
				RunWhenNone: []string{"dry-run"},
			},
			events: api.Events{"publish", "dry-run"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _ := testPlanner(t, tt.events)
			if got := p.ValidateNext(tt.spec); got != tt.want {
				t.Errorf("ValidateNext() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCallNext_EventGating(t *testing.T) {
	// A successor gated on "publish" must never be dispatched with only
	// "test" in the event set.
	p, d := testPlanner(t, api.Events{"test"})
	p.State.Next = []api.NextStepSpec{
		{Build: "pkg", RunWhenAny: []string{"publish"}},
	}

	ran, err := p.CallNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ran {
		t.Error("a declared successor list means the planner ran")
	}
	if len(d.requests) != 0 {
		t.Errorf("pkg must not be dispatched, got %v", d.dispatched())
	}
}

func TestCallNext_EventGatingMet(t *testing.T) {
	p, d := testPlanner(t, api.Events{"publish", "test"})
	p.State.Next = []api.NextStepSpec{
		{Build: "pkg", RunWhenAny: []string{"publish"}},
	}

	if _, err := p.CallNext(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.requests) != 1 || d.requests[0].Build != "pkg" {
		t.Fatalf("expected one dispatch of pkg, got %v", d.dispatched())
	}

	req := d.requests[0]
	if req.BuildIn != "then_build_pkg" {
		t.Errorf("buildIn = %q, want default folder", req.BuildIn)
	}
	if req.Precursor != p.State {
		t.Error("precursor must be the dispatching step")
	}
	if len(req.Events) != 2 {
		t.Errorf("events must pass through unchanged, got %v", req.Events)
	}
}

func TestCallNext_NoSuccessorList(t *testing.T) {
	p, d := testPlanner(t, nil)

	ran, err := p.CallNext()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ran {
		t.Error("no declared successor list is distinct from success")
	}
	if len(d.requests) != 0 {
		t.Errorf("nothing should be dispatched, got %v", d.dispatched())
	}
}

func TestCallNext_StopsOnNonToleratedFailure(t *testing.T) {
	p, d := testPlanner(t, nil)
	p.State.Next = []api.NextStepSpec{
		{Build: "compile"},
		{Build: "pkg"},
		{Build: "publish"},
	}
	d.results["pkg"] = errors.New("pkg broke")

	ran, err := p.CallNext()
	if !ran {
		t.Error("expected ran")
	}
	if err == nil {
		t.Fatal("expected failure")
	}

	want := []string{"compile", "pkg"}
	got := d.dispatched()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("dispatched %v, want %v and nothing after the failure", got, want)
	}
}

func TestCallNext_ToleratedFailureContinues(t *testing.T) {
	p, d := testPlanner(t, nil)
	p.State.Next = []api.NextStepSpec{
		{Build: "lint", TolerateFailure: true},
		{Build: "pkg"},
	}
	d.results["lint"] = errors.New("lint broke")

	ran, err := p.CallNext()
	if !ran || err != nil {
		t.Fatalf("tolerated failure followed by success must succeed, got ran=%v err=%v", ran, err)
	}
	if len(d.requests) != 2 {
		t.Errorf("dispatched %v, want both", d.dispatched())
	}
}

func TestCallNext_ToleratedFailureLastSpecFails(t *testing.T) {
	// The final result is the result of the last dispatched spec.
	p, d := testPlanner(t, nil)
	p.State.Next = []api.NextStepSpec{
		{Build: "pkg"},
		{Build: "lint", TolerateFailure: true},
	}
	d.results["lint"] = errors.New("lint broke")

	_, err := p.CallNext()
	if err == nil {
		t.Fatal("a tolerated failure on the last spec is still the last result")
	}
	if len(d.requests) != 2 {
		t.Errorf("dispatched %v, want both", d.dispatched())
	}
}

func TestCallNext_AllFilteredOut(t *testing.T) {
	p, d := testPlanner(t, api.Events{"test"})
	p.State.Next = []api.NextStepSpec{
		{Build: "pkg", RunWhenAny: []string{"publish"}},
		{Build: "image", RunWhenAny: []string{"release"}},
	}

	ran, err := p.CallNext()
	if !ran || err != nil {
		t.Errorf("fully filtered list reports ran with success, got ran=%v err=%v", ran, err)
	}
	if len(d.requests) != 0 {
		t.Errorf("nothing should be dispatched, got %v", d.dispatched())
	}
}

func TestPrepareNext_Headless(t *testing.T) {
	state := build.NewState("test")
	if err := state.Configure("", "build", nil, nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	p := &Planner{State: state, Dispatcher: &fakeDispatcher{}}

	got, err := p.PrepareNext(api.NextStepSpec{Build: "pkg", Config: map[string]any{"k": "v"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "" {
		t.Errorf("headless preparation must return absent, got %q", got)
	}
}

func TestPrepareNext_CreatesBuildFolder(t *testing.T) {
	p, _ := testPlanner(t, nil)

	got, err := p.PrepareNext(api.NextStepSpec{Build: "pkg"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got != p.State.BuildPath {
		t.Errorf("default path resolves to the build path, got %q", got)
	}
	folder := filepath.Join(got, "then_build_pkg")
	if st, err := os.Stat(folder); err != nil || !st.IsDir() {
		t.Errorf("successor build folder not created: %v", err)
	}
}

func TestPrepareNext_RelativePath(t *testing.T) {
	p, _ := testPlanner(t, nil)

	got, err := p.PrepareNext(api.NextStepSpec{Build: "pkg", Path: "sub/dir", BuildIn: "out"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(p.State.BuildPath, "sub", "dir")
	if got != want {
		t.Errorf("nextRoot = %q, want %q", got, want)
	}
	if st, err := os.Stat(filepath.Join(want, "out")); err != nil || !st.IsDir() {
		t.Errorf("successor build folder not created: %v", err)
	}
}

func TestPrepareNext_RootRelativePath(t *testing.T) {
	p, _ := testPlanner(t, nil)

	got, err := p.PrepareNext(api.NextStepSpec{Build: "pkg", Path: "/side"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := filepath.Join(p.TopRootPath, "side")
	if got != want {
		t.Errorf("nextRoot = %q, want root-relative %q", got, want)
	}
}

func TestPrepareNext_ConfigRoundTrip(t *testing.T) {
	p, _ := testPlanner(t, nil)
	p.State.ProjectName = "myproj"
	p.State.ProjectType = "lib"

	nextRoot, err := p.PrepareNext(api.NextStepSpec{
		Build:  "pkg",
		Config: map[string]any{"custom": "v", "type": "overridden"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The successor's own discovery phase must reproduce the mapping,
	// with inline overrides beating injected key-map values.
	cfg, _, err := api.DiscoverConfig(nextRoot, "pkg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("generated config not discoverable")
	}

	if v, _ := cfg.GetString("custom"); v != "v" {
		t.Errorf("custom = %q, want v", v)
	}
	if v, _ := cfg.GetString("type"); v != "overridden" {
		t.Errorf("type = %q, inline override must win", v)
	}
	if v, _ := cfg.GetString("name"); v != "myproj" {
		t.Errorf("name = %q, want injected key-map value", v)
	}
}

func TestPrepareNext_NoConfigMeansNoFile(t *testing.T) {
	p, _ := testPlanner(t, nil)

	nextRoot, err := p.PrepareNext(api.NextStepSpec{Build: "pkg"})
	if err != nil {
		t.Fatal(err)
	}

	cfg, _, err := api.DiscoverConfig(nextRoot, "pkg")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != nil {
		t.Errorf("no config block means no generated file, found %v", cfg)
	}
}
