package cpm

import (
	"slices"

	errs "github.com/matzehuels/critpath/pkg/errors"
	"github.com/matzehuels/critpath/pkg/network"
)

// TopologicalOrder returns every activity reachable from Start such that
// each activity comes after all of its parents. In-degrees count only
// reachable parents, so disconnected activities neither appear nor block.
// Among activities that are ready at the same time, the lowest id goes first.
//
// Returns a GRAPH_CYCLE error if some reachable activity can never become
// ready. [network.Network.Connect] rejects cycles, so this only guards
// against a corrupted network.
func TopologicalOrder(g *network.Network) ([]network.ID, error) {
	reach := reachable(g)

	inDegree := make(map[network.ID]int, len(reach))
	for id := range reach {
		for _, p := range g.Parents(id) {
			if reach[p] {
				inDegree[id]++
			}
		}
	}

	ready := []network.ID{network.StartID}
	order := make([]network.ID, 0, len(reach))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)

		for _, c := range g.Children(id) {
			inDegree[c]--
			if inDegree[c] == 0 {
				i, _ := slices.BinarySearch(ready, c)
				ready = slices.Insert(ready, i, c)
			}
		}
	}

	if len(order) != len(reach) {
		return nil, errs.New(errs.ErrCodeCycle,
			"topological sort failed: %d of %d reachable activities ordered", len(order), len(reach))
	}
	return order, nil
}

// BreadthFirst returns the activities reachable from Start in breadth-first
// order, children visited in ascending id and each activity listed once.
//
// The result is not a dependency order: on branches of uneven depth a
// shared child can be listed before one of its parents. Use
// [TopologicalOrder] for scheduling.
func BreadthFirst(g *network.Network) []network.ID {
	seen := map[network.ID]bool{network.StartID: true}
	queue := []network.ID{network.StartID}
	var order []network.ID
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, id)
		for _, c := range g.Children(id) {
			if !seen[c] {
				seen[c] = true
				queue = append(queue, c)
			}
		}
	}
	return order
}

// Unreachable returns the ids of activities that Start cannot reach, in
// ascending order.
func Unreachable(g *network.Network) []network.ID {
	reach := reachable(g)
	var out []network.ID
	for _, id := range g.IDs() {
		if !reach[id] {
			out = append(out, id)
		}
	}
	return out
}

func reachable(g *network.Network) map[network.ID]bool {
	reach := make(map[network.ID]bool)
	for _, id := range BreadthFirst(g) {
		reach[id] = true
	}
	return reach
}
