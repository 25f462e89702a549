package network

import (
	"maps"
	"slices"
)

// ID identifies an activity within a network.
type ID int

const (
	// StartID is the fixed Start activity present in every network.
	StartID ID = 1
	// FinishID is the fixed Finish activity present in every network.
	FinishID ID = 2

	firstUserID ID = 3
)

// Default labels of the fixed activities.
const (
	StartLabel  = "Start"
	FinishLabel = "Finish"
)

// Schedule holds the values derived by a calculation.
type Schedule struct {
	EarliestStart float64
	LatestStart   float64
	Float         float64
}

// EarliestFinish returns EarliestStart plus the given duration.
func (s Schedule) EarliestFinish(duration float64) float64 {
	return s.EarliestStart + duration
}

// Activity is a unit of work in the project network.
//
// Adjacency is owned by the [Network]; use [Network.Parents] and
// [Network.Children] to navigate.
type Activity struct {
	ID       ID
	Label    string
	Duration float64

	// Schedule is nil until a calculation commits, and stale after any
	// mutation until the next one.
	Schedule *Schedule
	// Highlighted is true iff the activity lies on a critical path found
	// by the last calculation.
	Highlighted bool
}

// IsFixed reports whether the activity is Start or Finish.
func (a *Activity) IsFixed() bool { return a.ID == StartID || a.ID == FinishID }

type idSet map[ID]struct{}

func (s idSet) sorted() []ID { return slices.Sorted(maps.Keys(s)) }

// Edge is a directed dependency: To cannot start before From finishes.
type Edge struct {
	From ID
	To   ID
}

// Network is the activity arena with its dependency relation.
//
// The zero value is not usable - use New to create a network.
type Network struct {
	activities map[ID]*Activity
	children   map[ID]idSet
	parents    map[ID]idSet
	nextID     ID

	revision     uint64
	calculatedAt uint64
	calculated   bool
}

// New creates a network holding Start and Finish joined by one edge.
func New() *Network {
	n := &Network{
		activities: make(map[ID]*Activity),
		children:   make(map[ID]idSet),
		parents:    make(map[ID]idSet),
		nextID:     firstUserID,
	}
	n.insert(&Activity{ID: StartID, Label: StartLabel})
	n.insert(&Activity{ID: FinishID, Label: FinishLabel})
	n.link(StartID, FinishID)
	return n
}

func (n *Network) insert(a *Activity) {
	n.activities[a.ID] = a
	n.children[a.ID] = idSet{}
	n.parents[a.ID] = idSet{}
}

func (n *Network) link(from, to ID) {
	n.children[from][to] = struct{}{}
	n.parents[to][from] = struct{}{}
}

func (n *Network) unlink(from, to ID) {
	delete(n.children[from], to)
	delete(n.parents[to], from)
}

// Activity returns the activity with the given id and true, or nil and false.
// The returned pointer refers to the record in the network.
func (n *Network) Activity(id ID) (*Activity, bool) {
	a, ok := n.activities[id]
	return a, ok
}

// Start returns the fixed Start activity.
func (n *Network) Start() *Activity { return n.activities[StartID] }

// Finish returns the fixed Finish activity.
func (n *Network) Finish() *Activity { return n.activities[FinishID] }

// Activities returns all activities ordered by ascending id.
func (n *Network) Activities() []*Activity {
	out := make([]*Activity, 0, len(n.activities))
	for _, id := range n.IDs() {
		out = append(out, n.activities[id])
	}
	return out
}

// IDs returns all activity ids in ascending order.
func (n *Network) IDs() []ID {
	return slices.Sorted(maps.Keys(n.activities))
}

// Len returns the number of activities, Start and Finish included.
func (n *Network) Len() int { return len(n.activities) }

// Children returns the ids of the immediate successors of id in ascending
// order. Returns nil if the activity has no children or doesn't exist.
func (n *Network) Children(id ID) []ID {
	if len(n.children[id]) == 0 {
		return nil
	}
	return n.children[id].sorted()
}

// Parents returns the ids of the immediate predecessors of id in ascending
// order. Returns nil if the activity has no parents or doesn't exist.
func (n *Network) Parents(id ID) []ID {
	if len(n.parents[id]) == 0 {
		return nil
	}
	return n.parents[id].sorted()
}

// HasEdge reports whether the edge from→to exists.
func (n *Network) HasEdge(from, to ID) bool {
	_, ok := n.children[from][to]
	return ok
}

// Edges returns all edges sorted by From, then To.
func (n *Network) Edges() []Edge {
	var edges []Edge
	for _, from := range n.IDs() {
		for _, to := range n.Children(from) {
			edges = append(edges, Edge{From: from, To: to})
		}
	}
	return edges
}

// EdgeCount returns the number of edges.
func (n *Network) EdgeCount() int {
	count := 0
	for _, c := range n.children {
		count += len(c)
	}
	return count
}

// Reachable reports whether to can be reached from from by following
// edges forward. An activity is reachable from itself.
func (n *Network) Reachable(from, to ID) bool {
	if _, ok := n.activities[from]; !ok {
		return false
	}
	seen := idSet{from: {}}
	stack := []ID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		for c := range n.children[id] {
			if _, ok := seen[c]; !ok {
				seen[c] = struct{}{}
				stack = append(stack, c)
			}
		}
	}
	return false
}

// Revision returns a counter incremented by every successful mutation.
func (n *Network) Revision() uint64 { return n.revision }

// Stale reports whether the derived fields are missing or out of date.
func (n *Network) Stale() bool {
	return !n.calculated || n.calculatedAt != n.revision
}
