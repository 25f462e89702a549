// Package project reads project definition files into activity networks and
// exports calculated networks as JSON views.
//
// # File Format
//
// A project file is TOML or JSON, chosen by extension. Activities are
// referred to by a short key; "start" and "finish" are reserved for the
// fixed activities:
//
//	name = "Website relaunch"
//
//	[[activity]]
//	key = "design"
//	label = "Design"
//	duration = 3
//	after = ["start"]
//
//	[[activity]]
//	key = "build"
//	label = "Build"
//	duration = 5
//	after = ["design"]
//
//	[[edge]]
//	from = "build"
//	to = "finish"
//
// Dependencies may be given either as an activity's "after" list or as
// separate edges; both end up as calls to [network.Network.Connect]. When a
// file declares any dependency the default Start to Finish edge of a new
// network is removed first, so the file fully describes the structure.
//
// The JSON form uses the same keys with "activities" and "edges" arrays.
//
// # Views
//
// [NewView] flattens a network and its critical paths into a
// [NetworkView] suitable for JSON output, used by the CLI's --json flag and
// by the HTTP API.
package project
