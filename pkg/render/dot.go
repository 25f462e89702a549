package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/critpath/pkg/network"
)

const criticalColor = "#d62728"

// Options configures diagram generation.
type Options struct {
	// Detailed adds the activity id and earliest finish to node labels.
	Detailed bool
	// Title is shown as the graph caption when non-empty.
	Title string
}

// ToDOT converts a network to Graphviz DOT source.
func ToDOT(n *network.Network, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	if caption := title(n, opts.Title); caption != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", caption)
	}
	buf.WriteString("\n")

	for _, a := range n.Activities() {
		label := fmtLabel(a, opts.Detailed)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(a.ID), strings.Join(fmtAttrs(a, label), ", "))
	}

	buf.WriteString("\n")
	for _, e := range n.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s", nodeID(e.From), nodeID(e.To))
		if n.IsCriticalEdge(e.From, e.To) {
			fmt.Fprintf(&buf, " [color=%q, penwidth=2.5]", criticalColor)
		}
		buf.WriteString(";\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id network.ID) string { return "a" + strconv.Itoa(int(id)) }

func title(n *network.Network, t string) string {
	if !n.Stale() || n.Finish().Schedule == nil {
		return t
	}
	if t == "" {
		return "(stale)"
	}
	return t + " (stale)"
}

func fmtLabel(a *network.Activity, detailed bool) string {
	var lines []string
	if detailed {
		lines = append(lines, fmt.Sprintf("#%d %s", a.ID, a.Label))
	} else {
		lines = append(lines, a.Label)
	}
	if !a.IsFixed() {
		lines = append(lines, "Duration: "+num(a.Duration))
	}
	if s := a.Schedule; s != nil {
		lines = append(lines, fmt.Sprintf("EST: %s  LST: %s", num(s.EarliestStart), num(s.LatestStart)))
		if detailed {
			lines = append(lines, "EFT: "+num(s.EarliestFinish(a.Duration)))
		}
		lines = append(lines, "Float: "+num(s.Float))
	}
	return strings.Join(lines, "\n")
}

func fmtAttrs(a *network.Activity, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if a.IsFixed() {
		attrs = append(attrs, "shape=ellipse", "style=filled", "fillcolor=lightgrey")
	}
	if a.Highlighted {
		attrs = append(attrs, fmt.Sprintf("color=%q", criticalColor), fmt.Sprintf("fontcolor=%q", criticalColor), "penwidth=2.5")
	}
	return attrs
}

func num(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }
