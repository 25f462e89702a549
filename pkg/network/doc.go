// Package network provides the activity network of a project schedule:
// an arena of activities keyed by stable integer ids, with predecessor and
// successor relations stored as id sets.
//
// # Overview
//
// Every network starts with two fixed activities, [StartID] and [FinishID],
// joined by a single edge. Users add activities with [Network.AddActivity],
// draw dependencies with [Network.Connect] and remove them with
// [Network.Disconnect] or [Network.DeleteActivity]. These four methods are
// the only writers of adjacency; callers never edit parent or child sets
// directly.
//
//	n := network.New()
//	design, _ := n.AddActivity("Design", 3)
//	build, _ := n.AddActivity("Build", 5)
//	_ = n.Connect(network.StartID, design.ID)
//	_ = n.Connect(design.ID, build.ID)
//	_ = n.Connect(build.ID, network.FinishID)
//
// # Invariants
//
// The network maintains the following at all times:
//
//   - Start has no parents and Finish has no children; neither can be deleted.
//   - b is a child of a if and only if a is a parent of b.
//   - The graph is acyclic. Connect rejects any edge that would close a cycle.
//   - Ids are never reused after deletion.
//
// Deleting an activity bridges every former parent directly to every former
// child, so a path drawn through the deleted activity stays connected.
//
// # Derived Fields
//
// Each [Activity] carries a [Schedule] (earliest start, latest start, float)
// and a highlight flag. They are written only by the scheduling engine
// through [Network.SetSchedules] and [Network.SetHighlighted]. After any
// mutation the values are stale until the next calculation; [Network.Stale]
// reports this.
//
// # Concurrency
//
// Network instances are not safe for concurrent use. Wrap a network in a
// session (see package session) when mutations and calculations can arrive
// from several goroutines.
package network
