// Package daemon coordinates the long-running submerge session process.
//
// It wires configuration, the input registry, the merge orchestrator, the
// session and the history store into a single lifecycle with flock-based
// locking to prevent multiple instances. The daemon exposes the capture,
// trigger and history operations the IPC layer serves to CLI clients.
//
// Keep orchestration logic here: merge execution lives in package merge and
// cycle bookkeeping in package session, while the daemon focuses on startup,
// shutdown, and high level coordination.
package daemon
