package network

import (
	"strings"

	errs "github.com/matzehuels/critpath/pkg/errors"
)

// AddActivity creates a disconnected activity with the next unused id.
// Returns an INVALID_ACTIVITY error if the label is empty or the duration
// is not a finite positive number; the network is unchanged in that case.
//
// The new activity is not reachable from Start until it is connected.
func (n *Network) AddActivity(label string, duration float64) (*Activity, error) {
	label = strings.TrimSpace(label)
	if err := errs.ValidateLabel(label); err != nil {
		return nil, err
	}
	if err := errs.ValidateDuration(duration); err != nil {
		return nil, err
	}

	a := &Activity{ID: n.nextID, Label: label, Duration: duration}
	n.nextID++
	n.insert(a)
	n.revision++
	return a, nil
}

// Connect adds the edge from→to, making from an immediate predecessor of to.
//
// Returns ACTIVITY_NOT_FOUND if either id is unknown, INVALID_EDGE if the
// edge would give Start a parent or Finish a child, and GRAPH_CYCLE if to
// already reaches from. Connecting an activity to itself or re-adding an
// existing edge is a no-op.
func (n *Network) Connect(from, to ID) error {
	if err := n.mustExist(from); err != nil {
		return err
	}
	if err := n.mustExist(to); err != nil {
		return err
	}
	if from == to || n.HasEdge(from, to) {
		return nil
	}
	if to == StartID {
		return errs.New(errs.ErrCodeInvalidEdge, "Start cannot depend on another activity")
	}
	if from == FinishID {
		return errs.New(errs.ErrCodeInvalidEdge, "no activity can follow Finish")
	}
	if n.Reachable(to, from) {
		return errs.New(errs.ErrCodeCycle, "edge %d->%d would create a cycle", from, to)
	}

	n.link(from, to)
	n.revision++
	return nil
}

// Disconnect removes the edge from→to if present. Unknown ids and missing
// edges are a no-op.
func (n *Network) Disconnect(from, to ID) {
	if !n.HasEdge(from, to) {
		return
	}
	n.unlink(from, to)
	n.revision++
}

// DeleteActivity removes an activity and prunes it from its neighbours.
// Every former parent is linked directly to every former child so paths
// drawn through the deleted activity stay connected.
//
// Returns PROTECTED_ACTIVITY for Start and Finish and ACTIVITY_NOT_FOUND
// for unknown ids.
func (n *Network) DeleteActivity(id ID) error {
	if id == StartID || id == FinishID {
		return errs.New(errs.ErrCodeProtectedActivity, "%s cannot be deleted", n.activities[id].Label)
	}
	if err := n.mustExist(id); err != nil {
		return err
	}

	parents := n.parents[id].sorted()
	children := n.children[id].sorted()
	for _, p := range parents {
		n.unlink(p, id)
	}
	for _, c := range children {
		n.unlink(id, c)
	}
	delete(n.activities, id)
	delete(n.parents, id)
	delete(n.children, id)

	// Bridging cannot close a cycle: each p already reached each c through id.
	for _, p := range parents {
		for _, c := range children {
			n.link(p, c)
		}
	}

	n.revision++
	return nil
}

func (n *Network) mustExist(id ID) error {
	if _, ok := n.activities[id]; !ok {
		return errs.New(errs.ErrCodeActivityNotFound, "activity %d not found", id)
	}
	return nil
}
