// Package main hosts the submerge CLI entrypoint and command graph.
//
// One-shot merges run in process. Every other command talks to the session
// daemon over its unix socket: capture events (set video, set subtitle, set
// language), merge triggers, status, and history maintenance. Configuration
// resolution, socket discovery, and logger setup live in commandContext so
// subcommands only describe their own flags and output.
package main
