package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/critpath/pkg/cpm"
	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/project"
	"github.com/matzehuels/critpath/pkg/session"
)

func run(t *testing.T, s *session.Session, line string) editorAction {
	t.Helper()
	act, err := execEditorCommand(context.Background(), s, line, "")
	if err != nil {
		t.Fatalf("%q: %v", line, err)
	}
	return act
}

func TestEditorCommands(t *testing.T) {
	s := session.New("Plan", 0)

	if act := run(t, s, "add Write spec 3"); act.status != "Added Write spec (#3)" {
		t.Errorf("status = %q", act.status)
	}
	run(t, s, "add Build 5")
	run(t, s, "connect start 3")
	run(t, s, "connect 3 build")
	run(t, s, "c BUILD finish")
	run(t, s, "disconnect start finish")

	act := run(t, s, "calc")
	if !strings.Contains(act.status, "Project duration 8") {
		t.Errorf("calc status = %q", act.status)
	}

	run(t, s, "delete build")
	v := s.View()
	if len(v.Activities) != 3 || !v.Stale {
		t.Errorf("after delete: %d activities, stale=%v", len(v.Activities), v.Stale)
	}

	if act := run(t, s, "quit"); !act.quit {
		t.Error("quit should end the editor")
	}
}

func TestEditorCommandErrors(t *testing.T) {
	ctx := context.Background()
	s := session.New("", 0)
	run(t, s, "add Twin 1")
	run(t, s, "add twin 2")

	tests := []struct {
		line string
		code errs.Code
	}{
		{"add OnlyLabel", errs.ErrCodeInvalidInput},
		{"add Task soon", errs.ErrCodeInvalidInput},
		{"add Task -1", errs.ErrCodeInvalidActivity},
		{"connect start ghost", errs.ErrCodeActivityNotFound},
		{"connect start twin", errs.ErrCodeInvalidInput},
		{"connect 3 99", errs.ErrCodeActivityNotFound},
		{"delete finish", errs.ErrCodeProtectedActivity},
		{"save", errs.ErrCodeInvalidInput},
		{"frobnicate", errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		_, err := execEditorCommand(ctx, s, tt.line, "")
		if !errs.Is(err, tt.code) {
			t.Errorf("%q: error = %v, want %s", tt.line, err, tt.code)
		}
	}
}

func TestEditorSave(t *testing.T) {
	s := session.New("Saved", 0)
	run(t, s, "add Only 4")
	run(t, s, "connect start only")
	run(t, s, "connect only finish")

	path := filepath.Join(t.TempDir(), "saved.toml")
	act, err := execEditorCommand(context.Background(), s, "save", path)
	if err != nil {
		t.Fatal(err)
	}
	if act.saved != path {
		t.Errorf("saved = %q, want %q", act.saved, path)
	}

	p, err := project.LoadProject(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	res, err := cpm.Calculate(p.Network)
	if err != nil {
		t.Fatal(err)
	}
	if res.ProjectDuration != 4 {
		t.Errorf("reloaded duration = %v, want 4", res.ProjectDuration)
	}
}

func TestEditorSaveKeepsProjectKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.toml")
	src := `name = "Plan"

[[activity]]
key = "design"
label = "Design"
duration = 3.0
after = ["start"]

[[edge]]
from = "design"
to = "finish"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := openSession([]string{path})
	if err != nil {
		t.Fatal(err)
	}
	run(t, s, "add Review 1")
	run(t, s, "connect design review")
	if _, err := execEditorCommand(context.Background(), s, "save", path); err != nil {
		t.Fatal(err)
	}

	p, err := project.LoadProject(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	design, ok := p.Keys["design"]
	if !ok {
		t.Fatalf("key design lost on save, keys = %v", p.Keys)
	}
	review, ok := p.Keys["a4"]
	if !ok {
		t.Fatalf("added activity should get a generated key, keys = %v", p.Keys)
	}
	if !p.Network.HasEdge(design, review) {
		t.Error("edge design -> review lost on save")
	}
}

func typeLine(m tea.Model, line string) tea.Model {
	for i, word := range strings.Split(line, " ") {
		if i > 0 {
			m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
		}
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(word)})
	}
	return m
}

func TestEditorModel(t *testing.T) {
	s := session.New("Model", 0)
	var m tea.Model = newEditorModel(context.Background(), s, "")

	m = typeLine(m, "add Task 2x")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	em := m.(editorModel)
	if em.failed || len(em.view.Activities) != 3 {
		t.Fatalf("status=%q failed=%v activities=%d", em.status, em.failed, len(em.view.Activities))
	}
	if em.input != "" {
		t.Errorf("input should be cleared after enter, got %q", em.input)
	}

	m = typeLine(m, "calc")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	em = m.(editorModel)
	if !em.failed {
		t.Error("calculating with a disconnected activity should fail")
	}
	if !strings.Contains(em.View(), "Task") {
		t.Error("view should list activities")
	}

	m = typeLine(m, "quit")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Error("quit should return a command")
	}
}
