// Package session drives merge cycles on top of the input registry.
//
// A Session gates the merge trigger on readiness, runs the blocking merge on
// a worker goroutine, publishes outcomes and clears the registry after an
// observation window. Capture events that arrive while a cycle is active are
// held and replayed once the registry has been reset, so a drop made during a
// merge survives that merge's cleanup.
package session
