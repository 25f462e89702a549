package network

// SetSchedules commits derived schedule values and marks the network as
// calculated at the current revision. Activities not present in the map
// retain their current schedule.
//
// SetSchedules is the commit step of the scheduling engine; callers should
// compute every value first so a failed calculation never leaves a
// half-written network.
func (n *Network) SetSchedules(schedules map[ID]Schedule) {
	for id, s := range schedules {
		if a, ok := n.activities[id]; ok {
			a.Schedule = &s
		}
	}
	n.calculated = true
	n.calculatedAt = n.revision
}

// SetHighlighted sets every activity's highlight flag to its membership in
// the given set, so highlights from an earlier calculation do not linger.
func (n *Network) SetHighlighted(critical map[ID]bool) {
	for id, a := range n.activities {
		a.Highlighted = critical[id]
	}
}

// Tight reports whether child starts exactly when parent finishes
// according to their committed schedules. Returns false if either
// schedule is missing.
func Tight(parent, child *Activity) bool {
	if parent.Schedule == nil || child.Schedule == nil {
		return false
	}
	return parent.Schedule.EarliestFinish(parent.Duration) == child.Schedule.EarliestStart
}

// IsCriticalEdge reports whether from→to exists, both endpoints are
// highlighted and the edge is tight with zero float on the target.
func (n *Network) IsCriticalEdge(from, to ID) bool {
	if !n.HasEdge(from, to) {
		return false
	}
	p, c := n.activities[from], n.activities[to]
	if !p.Highlighted || !c.Highlighted || c.Schedule == nil {
		return false
	}
	return c.Schedule.Float == 0 && Tight(p, c)
}
