package cpm

import (
	"slices"

	"github.com/matzehuels/critpath/pkg/network"
)

// Calculate schedules g and extracts its critical paths, then commits the
// schedules and highlights together. On error g is not modified.
func Calculate(g *network.Network) (*Result, error) {
	res, err := analyze(g)
	if err != nil {
		return nil, err
	}
	res.CriticalPaths = criticalPaths(g, func(id network.ID) (network.Schedule, bool) {
		s, ok := res.Schedules[id]
		return s, ok
	})

	g.SetSchedules(res.Schedules)
	g.SetHighlighted(res.Members())
	return res, nil
}

// Extract collects the critical paths from the schedules already committed
// on g and updates every activity's highlight to match. Activities without
// a schedule are treated as non-critical, so an uncalculated network yields
// no paths and no highlights.
func Extract(g *network.Network) [][]network.ID {
	paths := criticalPaths(g, func(id network.ID) (network.Schedule, bool) {
		a, ok := g.Activity(id)
		if !ok || a.Schedule == nil {
			return network.Schedule{}, false
		}
		return *a.Schedule, true
	})

	members := make(map[network.ID]bool)
	for _, path := range paths {
		for _, id := range path {
			members[id] = true
		}
	}
	g.SetHighlighted(members)
	return paths
}

// criticalPaths walks depth-first from Start. It steps from an activity to
// a child only when the child has zero float and starts exactly when the
// activity finishes; each arrival at Finish records the current path.
func criticalPaths(g *network.Network, schedule func(network.ID) (network.Schedule, bool)) [][]network.ID {
	start, ok := schedule(network.StartID)
	if !ok || start.Float != 0 {
		return nil
	}

	var (
		paths  [][]network.ID
		path   []network.ID
		onPath = make(map[network.ID]bool)
	)

	var walk func(id network.ID, s network.Schedule)
	walk = func(id network.ID, s network.Schedule) {
		path = append(path, id)
		onPath[id] = true
		defer func() {
			path = path[:len(path)-1]
			delete(onPath, id)
		}()

		if id == network.FinishID {
			paths = append(paths, slices.Clone(path))
			return
		}

		a, _ := g.Activity(id)
		finish := s.EarliestFinish(a.Duration)
		for _, c := range g.Children(id) {
			if onPath[c] {
				continue
			}
			cs, ok := schedule(c)
			if !ok || cs.Float != 0 || cs.EarliestStart != finish {
				continue
			}
			walk(c, cs)
		}
	}
	walk(network.StartID, start)

	return paths
}
