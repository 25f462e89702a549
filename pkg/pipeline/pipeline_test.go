package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/critpath/pkg/cache"
	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/network"
	"github.com/matzehuels/critpath/pkg/project"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats(" SVG, json,,dot ")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"svg", "json", "dot"}, got); diff != "" {
		t.Errorf("ParseFormats (-want +got):\n%s", diff)
	}

	if _, err := ParseFormats("svg,pdf"); !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{FormatSVG}, opts.Formats); diff != "" {
		t.Errorf("default formats (-want +got):\n%s", diff)
	}
	if opts.Logger == nil {
		t.Error("logger should default to a discard logger")
	}
}

func chain(t *testing.T) *network.Network {
	t.Helper()
	file := project.File{
		Activities: []project.ActivityDef{
			{Key: "a", Label: "Design", Duration: 3, After: []string{"start"}},
			{Key: "b", Label: "Build", Duration: 5, After: []string{"a"}},
		},
		Edges: []project.EdgeDef{{From: "b", To: "finish"}},
	}
	p, err := file.Build()
	if err != nil {
		t.Fatal(err)
	}
	return p.Network
}

func TestExecute_CalculatesAndDraws(t *testing.T) {
	n := chain(t)
	r := NewRunner(nil, nil)

	res, err := r.Execute(context.Background(), n, Options{
		Title:     "Plan",
		Formats:   []string{FormatDOT, FormatJSON},
		Calculate: true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Calculation == nil || res.Calculation.ProjectDuration != 8 {
		t.Fatalf("calculation = %+v", res.Calculation)
	}
	if n.Stale() {
		t.Error("network should be calculated after the run")
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), `label="Plan";`) {
		t.Errorf("dot artifact missing title:\n%s", res.Artifacts[FormatDOT])
	}

	var view project.NetworkView
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &view); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if view.Name != "Plan" || len(view.CriticalPaths) != 1 {
		t.Errorf("view = %+v", view)
	}
	if res.Stats.Activities != 4 {
		t.Errorf("Stats.Activities = %d, want 4", res.Stats.Activities)
	}
}

func TestExecute_IncompleteNetwork(t *testing.T) {
	n := chain(t)
	if _, err := n.AddActivity("Loose", 1); err != nil {
		t.Fatal(err)
	}

	_, err := NewRunner(nil, nil).Execute(context.Background(), n, Options{
		Formats:   []string{FormatDOT},
		Calculate: true,
	})
	if !errs.Is(err, errs.ErrCodeIncompleteGraph) {
		t.Errorf("error = %v, want INCOMPLETE_GRAPH", err)
	}
}

func TestExecute_InvalidFormat(t *testing.T) {
	_, err := NewRunner(nil, nil).Execute(context.Background(), chain(t), Options{Formats: []string{"pdf"}})
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestExecute_ServesCachedSVG(t *testing.T) {
	ctx := context.Background()
	n := chain(t)
	c := newMemCache()
	r := NewRunner(c, nil)

	// Learn the DOT source, then seed the cache with a fake SVG for it.
	first, err := r.Execute(ctx, n, Options{Formats: []string{FormatDOT}, Calculate: true})
	if err != nil {
		t.Fatal(err)
	}
	_ = c.Set(ctx, cache.DiagramKey(first.DOT, FormatSVG), []byte("<svg>cached</svg>"), 0)

	res, err := r.Execute(ctx, n, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	if string(res.Artifacts[FormatSVG]) != "<svg>cached</svg>" {
		t.Errorf("svg = %q, want cached value", res.Artifacts[FormatSVG])
	}
	if !res.CacheInfo.AllHit() {
		t.Errorf("CacheInfo = %+v, want all hits", res.CacheInfo)
	}
	if res.Calculation != nil {
		t.Error("no calculation was requested")
	}
}

type memCache struct{ data map[string][]byte }

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (m *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.data[key] = data
	return nil
}

func (m *memCache) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *memCache) Close() error { return nil }
