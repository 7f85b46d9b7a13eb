// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management, request/response DTOs, and conversions
// between session and history models and lightweight wire representations.
// Capture events, merge triggers and history queries all travel through the
// "Submerge" RPC service.
package ipc
