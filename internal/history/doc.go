// Package history persists one row per merge cycle in SQLite.
//
// The daemon and the one-shot CLI record a row when a merge starts and update
// it with the outcome when the muxer exits. Rows still marked running at
// daemon startup belong to a process that died mid-merge and are failed by
// FailInterrupted.
package history
