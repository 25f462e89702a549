package cpm

import (
	"math"

	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/network"
)

// CheckComplete verifies that every activity other than Start has a parent
// and every activity other than Finish has a child. Activities are checked
// in ascending id order and the first violation is returned as an
// [errs.IncompleteGraphError].
func CheckComplete(g *network.Network) error {
	for _, a := range g.Activities() {
		if a.ID != network.StartID && len(g.Parents(a.ID)) == 0 {
			return &errs.IncompleteGraphError{ActivityID: int(a.ID), Label: a.Label, Missing: "predecessor"}
		}
		if a.ID != network.FinishID && len(g.Children(a.ID)) == 0 {
			return &errs.IncompleteGraphError{ActivityID: int(a.ID), Label: a.Label, Missing: "successor"}
		}
	}
	return nil
}

// Schedule runs the forward and backward passes and commits the derived
// values to g. Highlights are left as they were; use [Calculate] to refresh
// them too.
//
// On error g is not modified.
func Schedule(g *network.Network) (*Result, error) {
	res, err := analyze(g)
	if err != nil {
		return nil, err
	}
	g.SetSchedules(res.Schedules)
	return res, nil
}

// analyze computes a Result without touching g.
func analyze(g *network.Network) (*Result, error) {
	if err := CheckComplete(g); err != nil {
		return nil, err
	}
	order, err := TopologicalOrder(g)
	if err != nil {
		return nil, err
	}

	duration := func(id network.ID) float64 {
		a, _ := g.Activity(id)
		return a.Duration
	}

	// Forward pass.
	es := make(map[network.ID]float64, len(order))
	for _, id := range order {
		start := 0.0
		for _, p := range g.Parents(id) {
			start = math.Max(start, es[p]+duration(p))
		}
		es[id] = start
	}

	// Backward pass.
	ls := make(map[network.ID]float64, len(order))
	ls[network.FinishID] = es[network.FinishID]
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		if id == network.FinishID {
			continue
		}
		latest := math.Inf(1)
		for _, c := range g.Children(id) {
			latest = math.Min(latest, ls[c])
		}
		ls[id] = latest - duration(id)
	}

	schedules := make(map[network.ID]network.Schedule, len(order))
	for _, id := range order {
		schedules[id] = network.Schedule{
			EarliestStart: es[id],
			LatestStart:   ls[id],
			Float:         ls[id] - es[id],
		}
	}

	return &Result{
		Order:           order,
		Schedules:       schedules,
		ProjectDuration: es[network.FinishID],
	}, nil
}
