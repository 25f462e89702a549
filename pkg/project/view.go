package project

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/critpath/pkg/network"
)

// NetworkView is the JSON shape of a network and its last calculation.
type NetworkView struct {
	Name            string         `json:"name,omitempty"`
	Activities      []ActivityView `json:"activities"`
	Edges           []EdgeView     `json:"edges"`
	CriticalPaths   []PathView     `json:"critical_paths"`
	ProjectDuration *float64       `json:"project_duration,omitempty"`
	Calculated      bool           `json:"calculated"`
	Stale           bool           `json:"stale"`
}

// ActivityView is one activity. Schedule fields are omitted until the
// activity has been calculated.
type ActivityView struct {
	ID             int      `json:"id"`
	Label          string   `json:"label"`
	Duration       float64  `json:"duration"`
	EarliestStart  *float64 `json:"earliest_start,omitempty"`
	EarliestFinish *float64 `json:"earliest_finish,omitempty"`
	LatestStart    *float64 `json:"latest_start,omitempty"`
	Float          *float64 `json:"float,omitempty"`
	Critical       bool     `json:"critical"`
	Fixed          bool     `json:"fixed,omitempty"`
}

// EdgeView is one dependency.
type EdgeView struct {
	From     int  `json:"from"`
	To       int  `json:"to"`
	Critical bool `json:"critical"`
}

// PathView is one critical path by id and by label.
type PathView struct {
	IDs    []int    `json:"ids"`
	Labels []string `json:"labels"`
}

// NewView flattens n. paths are the critical paths of the last
// calculation, if any.
func NewView(name string, n *network.Network, paths [][]network.ID) NetworkView {
	v := NetworkView{
		Name:          name,
		Activities:    make([]ActivityView, 0, n.Len()),
		Edges:         make([]EdgeView, 0, n.EdgeCount()),
		CriticalPaths: make([]PathView, 0, len(paths)),
		Stale:         n.Stale(),
	}

	for _, a := range n.Activities() {
		av := ActivityView{
			ID:       int(a.ID),
			Label:    a.Label,
			Duration: a.Duration,
			Critical: a.Highlighted,
			Fixed:    a.IsFixed(),
		}
		if s := a.Schedule; s != nil {
			ef := s.EarliestFinish(a.Duration)
			av.EarliestStart = ptr(s.EarliestStart)
			av.EarliestFinish = &ef
			av.LatestStart = ptr(s.LatestStart)
			av.Float = ptr(s.Float)
		}
		v.Activities = append(v.Activities, av)
	}
	for _, e := range n.Edges() {
		v.Edges = append(v.Edges, EdgeView{
			From:     int(e.From),
			To:       int(e.To),
			Critical: n.IsCriticalEdge(e.From, e.To),
		})
	}
	for _, path := range paths {
		pv := PathView{}
		for _, id := range path {
			pv.IDs = append(pv.IDs, int(id))
			if a, ok := n.Activity(id); ok {
				pv.Labels = append(pv.Labels, a.Label)
			} else {
				pv.Labels = append(pv.Labels, "")
			}
		}
		v.CriticalPaths = append(v.CriticalPaths, pv)
	}

	if s := n.Finish().Schedule; s != nil {
		v.Calculated = true
		v.ProjectDuration = ptr(s.EarliestStart)
	}
	return v
}

// WriteJSON encodes v as indented JSON.
func WriteJSON(w io.Writer, v NetworkView) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func ptr(f float64) *float64 { return &f }
