// Package merge runs one mkvmerge invocation per merge cycle.
//
// The Orchestrator derives the output path next to the video, builds the
// argument vector, launches the muxer and maps its exit into an Outcome.
// Invocations are serialized through a one-slot semaphore so two callers
// never interleave tool runs. The tool's exit status is the only judge of
// success: inputs are not inspected and partial output is never removed.
package merge
