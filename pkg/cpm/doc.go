// Package cpm implements the critical path method over a [network.Network].
//
// # Overview
//
// A calculation runs in three stages:
//
//  1. [TopologicalOrder] lists every activity reachable from Start so that
//     each appears after all of its parents (Kahn's algorithm, ties broken
//     by ascending id).
//  2. The forward pass assigns each activity its earliest start, the
//     latest earliest-finish among its parents. The backward pass walks the
//     same order in reverse and assigns each activity its latest start, the
//     earliest latest-start among its children minus its own duration.
//     Float is latest start minus earliest start.
//  3. The extractor walks zero-float activities from Start to Finish and
//     collects every such path.
//
// # Usage
//
//	n := network.New()
//	a, _ := n.AddActivity("Design", 3)
//	_ = n.Connect(network.StartID, a.ID)
//	_ = n.Connect(a.ID, network.FinishID)
//
//	res, err := cpm.Calculate(n)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.ProjectDuration, res.CriticalPaths)
//
// # Atomicity
//
// Every value is computed on a private map before anything is written.
// If the network is incomplete (an activity other than Start without a
// parent, or other than Finish without a child) the calculation returns an
// [errors.IncompleteGraphError] and the network is left exactly as it was.
//
// # Exactness
//
// Durations are float64 and compared exactly. An activity is critical only
// when its float is exactly zero; no tolerance is applied.
//
// [errors.IncompleteGraphError]: github.com/matzehuels/critpath/pkg/errors.IncompleteGraphError
package cpm
