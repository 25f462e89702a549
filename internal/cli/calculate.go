package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/critpath/pkg/cpm"
	"github.com/matzehuels/critpath/pkg/network"
	"github.com/matzehuels/critpath/pkg/project"
)

// calculateCommand creates the calculate command, which prints the schedule
// of a project file.
func (c *CLI) calculateCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "calculate [file]",
		Short: "Calculate the schedule and critical path of a project file",
		Long: `Calculate loads a project file (TOML or JSON), runs the forward and
backward passes and prints earliest/latest start, float and the critical
path(s).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCalculate(cmd.Context(), cmd.OutOrStdout(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

func runCalculate(ctx context.Context, w io.Writer, path string, asJSON bool) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	p, err := project.LoadProject(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded project", "path", path, "activities", p.Network.Len(), "edges", p.Network.EdgeCount())

	res, err := cpm.Calculate(p.Network)
	if err != nil {
		if ids := cpm.Unreachable(p.Network); len(ids) > 0 && !asJSON {
			printInfo(w, "Not reachable from Start: %s", strings.Join(activityLabels(p.Network, ids), ", "))
		}
		return err
	}
	prog.done(fmt.Sprintf("Calculated %d activities", p.Network.Len()))

	if asJSON {
		return project.WriteJSON(w, project.NewView(p.Name, p.Network, res.CriticalPaths))
	}
	printSchedule(w, p, res)
	return nil
}

// printSchedule writes the schedule table in topological order, critical
// rows in red, followed by the project duration and the critical paths.
func printSchedule(w io.Writer, p *project.Project, res *cpm.Result) {
	if p.Name != "" {
		fmt.Fprintln(w, StyleTitle.Render(p.Name))
	}

	rows := make([][]string, 0, len(res.Order))
	critical := make([]bool, 0, len(res.Order))
	for _, id := range res.Order {
		a, _ := p.Network.Activity(id)
		s := res.Schedules[id]
		mark := ""
		if res.Critical(id) {
			mark = "●"
		}
		rows = append(rows, []string{
			p.KeyOf(id), a.Label, num(a.Duration),
			num(s.EarliestStart), num(s.EarliestFinish(a.Duration)),
			num(s.LatestStart), num(s.Float), mark,
		})
		critical = append(critical, res.Critical(id))
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Key", "Activity", "Duration", "EST", "EFT", "LST", "Float", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			if row >= 0 && row < len(critical) && critical[row] {
				return base.Foreground(colorRed)
			}
			return base
		})

	fmt.Fprintln(w, t.Render())
	printKeyValue(w, "Project duration", num(res.ProjectDuration))

	for i, path := range res.CriticalPaths {
		labels := activityLabels(p.Network, path)
		printKeyValue(w, fmt.Sprintf("Critical path %d", i+1), StyleCritical.Render(joinPath(labels)))
	}
}

// activityLabels returns the labels of ids in order.
func activityLabels(n *network.Network, ids []network.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		if a, ok := n.Activity(id); ok {
			out[i] = a.Label
		}
	}
	return out
}
