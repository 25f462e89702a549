// Package render draws activity networks as Graphviz diagrams.
//
// # Overview
//
// [ToDOT] converts a network into Graphviz DOT source. Each activity is a
// box showing its label and duration and, once calculated, its earliest
// start, latest start and float. Activities and edges on a critical path
// are drawn in red; Start and Finish are drawn as grey ellipses.
//
// [RenderSVG] and [RenderPNG] lay the DOT source out in-process with
// [github.com/goccy/go-graphviz], so no Graphviz installation is needed:
//
//	dot := render.ToDOT(n, render.Options{Title: "Relaunch"})
//	svg, err := render.RenderSVG(ctx, dot)
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: include activity ids and earliest finish in node labels
//   - Title: graph caption; "(stale)" is appended when the schedule is out of date
//
// Layout is left entirely to Graphviz (rankdir=LR).
package render
