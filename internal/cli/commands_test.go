package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/observability"
	"github.com/matzehuels/critpath/pkg/project"
)

const launchTOML = `
name = "Launch"

[[activity]]
key = "design"
label = "Design"
duration = 3.0
after = ["start"]

[[activity]]
key = "build"
label = "Build"
duration = 5.0
after = ["design"]

[[activity]]
key = "docs"
label = "Docs"
duration = 2.0
after = ["design"]

[[edge]]
from = "build"
to = "finish"

[[edge]]
from = "docs"
to = "finish"
`

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProject(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCalculateCommand(t *testing.T) {
	path := writeProject(t, "launch.toml", launchTOML)

	out, err := execute(t, "calculate", path)
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	for _, want := range []string{"Launch", "Design", "Docs", "Project duration", "8", "Start → Design → Build → Finish"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCalculateCommandJSON(t *testing.T) {
	path := writeProject(t, "launch.toml", launchTOML)

	out, err := execute(t, "calculate", "--json", path)
	if err != nil {
		t.Fatalf("calculate --json: %v", err)
	}
	var view project.NetworkView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if view.ProjectDuration == nil || *view.ProjectDuration != 8 {
		t.Errorf("project duration = %v, want 8", view.ProjectDuration)
	}
	for _, a := range view.Activities {
		if a.Label == "Docs" && (a.Float == nil || *a.Float != 3) {
			t.Errorf("Docs float = %v, want 3", a.Float)
		}
	}
}

func TestCalculateCommandIncomplete(t *testing.T) {
	path := writeProject(t, "broken.toml", launchTOML+`
[[activity]]
key = "orphan"
duration = 1.0
`)
	out, err := execute(t, "calculate", path)
	if !errs.Is(err, errs.ErrCodeIncompleteGraph) {
		t.Fatalf("error = %v, want INCOMPLETE_GRAPH", err)
	}
	if !strings.Contains(out, "Not reachable from Start: orphan") {
		t.Errorf("output should name the unreachable activity, got %q", out)
	}

	var buf bytes.Buffer
	PrintError(&buf, err)
	if !strings.Contains(buf.String(), "orphan") || !strings.Contains(buf.String(), "INCOMPLETE_GRAPH") {
		t.Errorf("PrintError = %q", buf.String())
	}
}

func TestCalculateCommandMissingFile(t *testing.T) {
	_, err := execute(t, "calculate", filepath.Join(t.TempDir(), "nope.toml"))
	if !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Fatalf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestRenderCommand(t *testing.T) {
	path := writeProject(t, "launch.toml", launchTOML)
	base := filepath.Join(t.TempDir(), "out", "launch")

	out, err := execute(t, "render", "--no-cache", "-f", "dot,json", "-o", base, path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `label="Launch";`) {
		t.Errorf("dot missing title:\n%s", dot)
	}
	if _, err := os.Stat(base + ".json"); err != nil {
		t.Errorf("json artifact not written: %v", err)
	}
	if !strings.Contains(out, base+".dot") {
		t.Errorf("output should list written files:\n%s", out)
	}
}

func TestRenderCommandRefusesToOverwriteInput(t *testing.T) {
	data, err := json.Marshal(project.File{
		Activities: []project.ActivityDef{{Key: "a", Duration: 1, After: []string{"start"}}},
		Edges:      []project.EdgeDef{{From: "a", To: "finish"}},
	})
	if err != nil {
		t.Fatal(err)
	}
	path := writeProject(t, "plan.json", string(data))

	_, err = execute(t, "render", "--no-cache", "-f", "json", path)
	if !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Fatalf("error = %v, want INVALID_INPUT", err)
	}
}

func TestRenderCommandInvalidFormat(t *testing.T) {
	path := writeProject(t, "launch.toml", launchTOML)
	_, err := execute(t, "render", "-f", "pdf", path)
	if !errs.Is(err, errs.ErrCodeInvalidFormat) {
		t.Fatalf("error = %v, want INVALID_FORMAT", err)
	}
}

func TestCacheCommands(t *testing.T) {
	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("cache path = %q", out)
	}

	out, err = execute(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("cache clear on a missing dir = %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "critpath") {
		t.Error("bash completion should mention the command name")
	}

	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should be rejected")
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	_, err := execute(t, "--config", filepath.Join(t.TempDir(), "missing.toml"), "cache", "path")
	if err == nil {
		t.Fatal("expected error for missing --config file")
	}
}
