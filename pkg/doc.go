// Package pkg provides the core libraries for critpath, a critical path
// method (CPM) scheduler for activity-on-node networks.
//
// # Overview
//
// A project is a network of activities with durations, joined by
// finish-to-start dependencies between a fixed Start and Finish. critpath
// computes when each activity can start at the earliest and at the latest
// without delaying the project, the slack (float) in between, and the
// critical path(s): chains of zero-float activities from Start to Finish.
//
// # Architecture
//
// The typical data flow:
//
//	project file (TOML/JSON) or editing session
//	         ↓
//	    [network] (activity arena + mutation API)
//	         ↓
//	    [cpm] (topological order → forward/backward pass → critical paths)
//	         ↓
//	    [render] (Graphviz DOT → SVG/PNG)
//
// # Quick Start
//
//	p, err := project.LoadProject("launch.toml")
//	if err != nil {
//	    return err
//	}
//	res, err := cpm.Calculate(p.Network)
//	if err != nil {
//	    return err // e.g. an activity with no path to Finish
//	}
//	fmt.Println(res.ProjectDuration, res.CriticalPaths)
//
// # Main Packages
//
// ## Scheduling
//
// [network] - The activity graph. Owns activities and adjacency, validates
// every edit and rejects cycles before they are created.
//
// [cpm] - The scheduling engine. A calculation either commits every
// schedule field and highlight, or fails and changes nothing.
//
// ## Input and Output
//
// [project] - Project files and the JSON view of a calculated network.
//
// [render] - Diagrams with critical activities and edges in red.
//
// ## Infrastructure
//
// [pipeline] - calculate → draw → render, shared by the CLI and the API.
//
// [session] - Mutex-guarded networks with TTL, kept in an in-memory store.
//
// [cache] - Rendered diagram cache (file, Redis or none).
//
// [config] - Settings from file and CRITPATH_* environment variables.
//
// [observability] - Hooks for sessions, rendering, cache and HTTP events.
//
// [errors] - Error codes shared by every package.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test ./pkg/cpm/...                # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [network]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/network
// [cpm]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/cpm
// [project]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/project
// [render]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/pipeline
// [session]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/config
// [observability]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/critpath/pkg/errors
package pkg
