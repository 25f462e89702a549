package project

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/matzehuels/critpath/pkg/cpm"
	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/network"
)

const diamondTOML = `
name = "Diamond"

[[activity]]
key = "a"
label = "Prepare"
duration = 2.0
after = ["start"]

[[activity]]
key = "b"
duration = 3.0
after = ["start"]

[[activity]]
key = "c"
label = "Assemble"
duration = 4.0
after = ["a", "b"]

[[edge]]
from = "c"
to = "finish"
`

const diamondJSON = `{
  "name": "Diamond",
  "activities": [
    {"key": "a", "label": "Prepare", "duration": 2, "after": ["start"]},
    {"key": "b", "duration": 3, "after": ["start"]},
    {"key": "c", "label": "Assemble", "duration": 4, "after": ["a", "b"]}
  ],
  "edges": [{"from": "c", "to": "finish"}]
}`

func TestReadAndBuild(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"toml", diamondTOML, FormatTOML},
		{"json", diamondJSON, FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file, err := Read(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			p, err := file.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			if p.Name != "Diamond" {
				t.Errorf("Name = %q", p.Name)
			}
			n := p.Network
			if n.Len() != 5 {
				t.Fatalf("Len() = %d, want 5", n.Len())
			}
			if n.HasEdge(network.StartID, network.FinishID) {
				t.Error("default Start->Finish edge should be dropped")
			}
			b, _ := n.Activity(p.Keys["b"])
			if b.Label != "b" {
				t.Errorf("label defaults to key: got %q", b.Label)
			}
			want := []network.ID{p.Keys["a"], p.Keys["b"]}
			if diff := cmp.Diff(want, n.Parents(p.Keys["c"])); diff != "" {
				t.Errorf("parents of c (-want +got):\n%s", diff)
			}
			if p.KeyOf(p.Keys["c"]) != "c" {
				t.Errorf("KeyOf = %q", p.KeyOf(p.Keys["c"]))
			}

			res, err := cpm.Calculate(n)
			if err != nil {
				t.Fatalf("Calculate: %v", err)
			}
			if res.ProjectDuration != 7 {
				t.Errorf("ProjectDuration = %v, want 7", res.ProjectDuration)
			}
		})
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		file File
		code errs.Code
	}{
		{
			name: "missing key",
			file: File{Activities: []ActivityDef{{Duration: 1}}},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "reserved key",
			file: File{Activities: []ActivityDef{{Key: "start", Duration: 1}}},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "duplicate key",
			file: File{Activities: []ActivityDef{{Key: "a", Duration: 1}, {Key: "a", Duration: 2}}},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "bad duration",
			file: File{Activities: []ActivityDef{{Key: "a", Duration: 0}}},
			code: errs.ErrCodeInvalidActivity,
		},
		{
			name: "unknown dependency",
			file: File{Activities: []ActivityDef{{Key: "a", Duration: 1, After: []string{"ghost"}}}},
			code: errs.ErrCodeInvalidInput,
		},
		{
			name: "cycle",
			file: File{
				Activities: []ActivityDef{
					{Key: "a", Duration: 1, After: []string{"b"}},
					{Key: "b", Duration: 1, After: []string{"a"}},
				},
			},
			code: errs.ErrCodeCycle,
		},
		{
			name: "edge out of finish",
			file: File{
				Activities: []ActivityDef{{Key: "a", Duration: 1}},
				Edges:      []EdgeDef{{From: "finish", To: "a"}},
			},
			code: errs.ErrCodeInvalidEdge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.file.Build()
			if !errs.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestBuildKeepsDefaultEdgeWithoutDependencies(t *testing.T) {
	file := File{Activities: []ActivityDef{{Key: "a", Duration: 1}}}
	p, err := file.Build()
	if err != nil {
		t.Fatal(err)
	}
	if !p.Network.HasEdge(network.StartID, network.FinishID) {
		t.Error("Start->Finish should remain when no dependencies are declared")
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.toml")
	if err := os.WriteFile(path, []byte(diamondTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(path)
	if err != nil {
		t.Fatalf("LoadProject: %v", err)
	}
	if p.Network.Len() != 5 {
		t.Errorf("Len() = %d, want 5", p.Network.Len())
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := Load(filepath.Join(dir, "plan.yaml")); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("yaml error = %v, want INVALID_FORMAT", err)
	}
}

func TestReadMalformed(t *testing.T) {
	if _, err := Read(strings.NewReader("[[activity"), FormatTOML); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("toml error = %v, want INVALID_FORMAT", err)
	}
	if _, err := Read(strings.NewReader("{"), FormatJSON); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("json error = %v, want INVALID_FORMAT", err)
	}
}

func TestRoundTrip(t *testing.T) {
	file, err := Read(strings.NewReader(diamondTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	original, err := file.Build()
	if err != nil {
		t.Fatal(err)
	}

	for _, format := range []Format{FormatTOML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, FromNetwork("Diamond", original.Network, original.KeysByID()), format); err != nil {
				t.Fatalf("Write: %v", err)
			}
			decoded, err := Read(&buf, format)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			rebuilt, err := decoded.Build()
			if err != nil {
				t.Fatalf("Build: %v", err)
			}

			if diff := cmp.Diff(original.Network.Edges(), rebuilt.Network.Edges()); diff != "" {
				t.Errorf("edges differ (-original +rebuilt):\n%s", diff)
			}
			for _, a := range original.Network.Activities() {
				b, ok := rebuilt.Network.Activity(a.ID)
				if !ok {
					t.Fatalf("activity %d missing after round trip", a.ID)
				}
				if a.Label != b.Label || a.Duration != b.Duration {
					t.Errorf("activity %d: got (%q, %v), want (%q, %v)", a.ID, b.Label, b.Duration, a.Label, a.Duration)
				}
			}
			if diff := cmp.Diff(original.Keys, rebuilt.Keys); diff != "" {
				t.Errorf("keys differ (-original +rebuilt):\n%s", diff)
			}
		})
	}
}

func TestFromNetworkKeepsKeys(t *testing.T) {
	file := File{
		Activities: []ActivityDef{
			{Key: "design", Duration: 3, After: []string{"start"}},
			{Key: "build", Duration: 5, After: []string{"design"}},
		},
		Edges: []EdgeDef{{From: "build", To: "finish"}},
	}
	p, err := file.Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, FromNetwork("Plan", p.Network, p.KeysByID()), FormatTOML); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`key = "design"`, `key = "build"`, `after = ["design"]`, `from = "build"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if strings.Contains(out, `"a3"`) || strings.Contains(out, `"a4"`) {
		t.Errorf("declared keys were replaced by generated ones:\n%s", out)
	}
}

func TestFromNetworkGeneratedKeys(t *testing.T) {
	// The declared key "a4" collides with the key generated for activity 4.
	file := File{Activities: []ActivityDef{{Key: "a4", Duration: 1, After: []string{"start"}}}}
	p, err := file.Build()
	if err != nil {
		t.Fatal(err)
	}
	added, err := p.Network.AddActivity("Added", 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Network.Connect(p.Keys["a4"], added.ID); err != nil {
		t.Fatal(err)
	}
	if added.ID != 4 {
		t.Fatalf("added id = %d, want 4", added.ID)
	}

	got := FromNetwork("", p.Network, p.KeysByID())
	want := []ActivityDef{
		{Key: "a4", Duration: 1, After: []string{"start"}},
		{Key: "a4_2", Label: "Added", Duration: 2, After: []string{"a4"}},
	}
	if diff := cmp.Diff(want, got.Activities, cmpopts.IgnoreFields(ActivityDef{}, "Label")); diff != "" {
		t.Errorf("activities (-want +got):\n%s", diff)
	}

	if _, err := got.Build(); err != nil {
		t.Errorf("generated file should build: %v", err)
	}
}

func TestBuildTrimsKeys(t *testing.T) {
	file := File{
		Activities: []ActivityDef{
			{Key: " a ", Duration: 1, After: []string{" start"}},
			{Key: "b", Duration: 2, After: []string{"a "}},
		},
		Edges: []EdgeDef{{From: " b", To: "finish "}},
	}
	p, err := file.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if diff := cmp.Diff([]network.ID{p.Keys["a"]}, p.Network.Parents(p.Keys["b"])); diff != "" {
		t.Errorf("parents of b (-want +got):\n%s", diff)
	}
	if _, err := cpm.Calculate(p.Network); err != nil {
		t.Errorf("Calculate: %v", err)
	}
}

func TestNewView(t *testing.T) {
	file, _ := Read(strings.NewReader(diamondTOML), FormatTOML)
	p, err := file.Build()
	if err != nil {
		t.Fatal(err)
	}

	before := NewView(p.Name, p.Network, nil)
	if before.Calculated || !before.Stale || before.ProjectDuration != nil {
		t.Errorf("uncalculated view = calculated %v stale %v", before.Calculated, before.Stale)
	}
	if before.Activities[2].EarliestStart != nil {
		t.Error("schedule fields should be absent before calculating")
	}

	res, err := cpm.Calculate(p.Network)
	if err != nil {
		t.Fatal(err)
	}
	v := NewView(p.Name, p.Network, res.CriticalPaths)

	if !v.Calculated || v.Stale || *v.ProjectDuration != 7 {
		t.Errorf("view = calculated %v stale %v duration %v", v.Calculated, v.Stale, v.ProjectDuration)
	}
	wantPath := []PathView{{
		IDs:    []int{1, int(p.Keys["b"]), int(p.Keys["c"]), 2},
		Labels: []string{"Start", "b", "Assemble", "Finish"},
	}}
	if diff := cmp.Diff(wantPath, v.CriticalPaths); diff != "" {
		t.Errorf("paths (-want +got):\n%s", diff)
	}

	critical := map[[2]int]bool{}
	for _, e := range v.Edges {
		critical[[2]int{e.From, e.To}] = e.Critical
	}
	a, b, c := int(p.Keys["a"]), int(p.Keys["b"]), int(p.Keys["c"])
	if !critical[[2]int{1, b}] || !critical[[2]int{b, c}] || !critical[[2]int{c, 2}] {
		t.Errorf("critical path edges not flagged: %v", critical)
	}
	if critical[[2]int{1, a}] || critical[[2]int{a, c}] {
		t.Errorf("non-critical edges flagged: %v", critical)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, v); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if decoded["project_duration"] != 7.0 {
		t.Errorf("project_duration = %v", decoded["project_duration"])
	}
}
