package cpm

import "github.com/matzehuels/critpath/pkg/network"

// Result is the outcome of a calculation.
type Result struct {
	// Order is the topological order used by both passes.
	Order []network.ID
	// Schedules holds the derived values of every ordered activity.
	Schedules map[network.ID]network.Schedule
	// CriticalPaths lists every zero-float path from Start to Finish, each
	// as a sequence of ids beginning with Start and ending with Finish.
	// Consecutive activities on a path are joined by a tight edge: the child
	// starts exactly when the parent finishes. A shortcut edge between two
	// critical activities that carries slack is not part of any path.
	// Nil when produced by Schedule alone.
	CriticalPaths [][]network.ID
	// ProjectDuration is the earliest start of Finish.
	ProjectDuration float64
}

// Critical reports whether id lies on any of the result's critical paths.
func (r *Result) Critical(id network.ID) bool {
	for _, path := range r.CriticalPaths {
		for _, p := range path {
			if p == id {
				return true
			}
		}
	}
	return false
}

// Members returns the set of ids on any critical path.
func (r *Result) Members() map[network.ID]bool {
	m := make(map[network.ID]bool)
	for _, path := range r.CriticalPaths {
		for _, id := range path {
			m[id] = true
		}
	}
	return m
}
