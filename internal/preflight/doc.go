// Package preflight provides readiness checks for the muxer and the
// filesystem paths submerge depends on.
//
// These checks run in two contexts:
//   - The daemon calls RunAll at startup and refuses to start when a
//     required check fails, unless preflight is explicitly skipped.
//   - The CLI "submerge status" command shows the same results so a user can
//     see why merges would fail before dropping files.
package preflight
