package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/project"
	"github.com/matzehuels/critpath/pkg/session"
)

var (
	editorPromptStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editorOKStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	editorErrStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// editorModel - Interactive network editor
// =============================================================================

// editorModel is the bubbletea model behind "critpath edit". Every command
// goes through the session, so the view is always a consistent snapshot.
type editorModel struct {
	ctx      context.Context
	sess     *session.Session
	savePath string

	view   project.NetworkView
	input  string
	status string
	failed bool
	saved  string

	offset int
	height int
}

func newEditorModel(ctx context.Context, s *session.Session, savePath string) editorModel {
	return editorModel{
		ctx:      ctx,
		sess:     s,
		savePath: savePath,
		view:     s.View(),
		status:   "Type help for commands",
		height:   15,
	}
}

func (m editorModel) Init() tea.Cmd {
	return nil
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		case tea.KeyUp:
			if m.offset > 0 {
				m.offset--
			}
		case tea.KeyDown:
			if m.offset+m.height < len(m.view.Activities) {
				m.offset++
			}
		}
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-14, 5)
	}
	return m, nil
}

// submit runs the prompt line and refreshes the snapshot.
func (m editorModel) submit() (tea.Model, tea.Cmd) {
	line := strings.TrimSpace(m.input)
	m.input = ""
	if line == "" {
		return m, nil
	}

	act, err := execEditorCommand(m.ctx, m.sess, line, m.savePath)
	if err != nil {
		m.status, m.failed = errs.UserMessage(err), true
	} else {
		m.status, m.failed = act.status, false
		if act.saved != "" {
			m.saved = act.saved
		}
	}
	m.view = m.sess.View()
	if act.quit {
		return m, tea.Quit
	}
	return m, nil
}

func (m editorModel) View() string {
	var b strings.Builder

	title := m.view.Name
	if title == "" {
		title = "Network"
	}
	b.WriteString(StyleTitle.Render(title))
	if m.view.Stale && m.view.Calculated {
		b.WriteString(" " + StyleWarning.Render("(stale: run calc)"))
	}
	b.WriteString("\n\n")

	b.WriteString(m.activityTable())
	b.WriteString("\n")
	b.WriteString(m.edgeLine())
	b.WriteString("\n")

	if d := m.view.ProjectDuration; d != nil {
		b.WriteString(StyleDim.Render("Project duration ") + StyleNumber.Render(num(*d)) + "\n")
	}
	for _, p := range m.view.CriticalPaths {
		b.WriteString(StyleDim.Render("Critical path ") + StyleCritical.Render(joinPath(p.Labels)) + "\n")
	}
	b.WriteString("\n")

	if m.failed {
		b.WriteString(editorErrStyle.Render(iconError + " " + m.status))
	} else {
		b.WriteString(editorOKStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(editorPromptStyle.Render("> ") + m.input + StyleDim.Render("█"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("enter run  ↑/↓ scroll  esc quit"))

	return b.String()
}

func (m editorModel) activityTable() string {
	acts := m.view.Activities
	end := min(m.offset+m.height, len(acts))

	rows := make([][]string, 0, end-m.offset)
	for _, a := range acts[m.offset:end] {
		rows = append(rows, []string{
			strconv.Itoa(a.ID), a.Label, num(a.Duration),
			optNum(a.EarliestStart), optNum(a.LatestStart), optNum(a.Float),
		})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Activity", "Duration", "EST", "LST", "Float").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			idx := m.offset + row
			if idx < 0 || idx >= len(acts) {
				return base
			}
			switch a := acts[idx]; {
			case a.Critical:
				return base.Foreground(colorRed).Bold(true)
			case a.Fixed:
				return base.Foreground(colorGray)
			}
			return base
		}).
		Render()
}

func (m editorModel) edgeLine() string {
	if len(m.view.Edges) == 0 {
		return StyleDim.Render("No dependencies")
	}
	parts := make([]string, len(m.view.Edges))
	for i, e := range m.view.Edges {
		s := fmt.Sprintf("%d%s%d", e.From, iconArrow, e.To)
		if e.Critical {
			s = StyleCritical.Render(s)
		} else {
			s = StyleDim.Render(s)
		}
		parts[i] = s
	}
	return StyleDim.Render("Edges ") + strings.Join(parts, "  ")
}

func optNum(f *float64) string {
	if f == nil {
		return "—"
	}
	return num(*f)
}
