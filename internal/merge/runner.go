package merge

import (
	"context"
	"os/exec"
	"time"
)

// commandRunner launches name with args and returns its combined output.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// waitDelay bounds how long Wait blocks on output pipes after a kill.
const waitDelay = 2 * time.Second

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	cmd.WaitDelay = waitDelay
	return cmd.CombinedOutput()
}
