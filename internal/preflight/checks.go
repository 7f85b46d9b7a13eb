package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"submerge/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckMuxer resolves the configured muxer and probes its version.
func CheckMuxer(ctx context.Context, command string) Result {
	const name = "mkvmerge"

	resolved, err := deps.ResolveMuxer(command)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	version, err := deps.ProbeVersion(ctx, resolved)
	if err != nil {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (version unknown)", resolved)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", resolved, version)}
}
