package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"submerge/internal/config"
	"submerge/internal/daemon"
	"submerge/internal/ipc"
	"submerge/internal/logging"
	"submerge/internal/testsupport"
)

const stubMergeSucceeds = `if [ "$1" = "--version" ]; then
  echo "mkvmerge v80.0 ('Roundabout') 64-bit"
  exit 0
fi
: > "$2"
exit 0
`

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	baseDir    string
}

// newCLIConfig writes a config file for a temp workspace whose mkvmerge is a
// shell stub with the given body.
func newCLIConfig(t *testing.T, script string, opts ...testsupport.ConfigOption) (*config.Config, string) {
	t.Helper()
	t.Setenv("SUBMERGE_MKVMERGE", "")
	t.Setenv("SUBMERGE_LANGUAGE", "")

	opts = append([]testsupport.ConfigOption{testsupport.WithMkvmergeScript(script)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)
	return cfg, configPath
}

func setupCLITestEnv(t *testing.T, script string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg, configPath := newCLIConfig(t, script, opts...)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store := testsupport.MustOpenStore(t, cfg)

	logger := logging.NewNop()
	d, err := daemon.New(cfg, store, logger)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := d.Start(ctx); err != nil {
		cancel()
		t.Fatalf("daemon.Start: %v", err)
	}

	socketPath := cfg.SocketPath()
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		cancel()
		_ = d.Close()
		if strings.Contains(err.Error(), "operation not permitted") {
			t.Skipf("skipping CLI daemon test: %v", err)
		}
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	t.Cleanup(func() {
		cancel()
		srv.Close()
		_ = d.Close()
	})

	return &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		baseDir:    testsupport.BaseDir(cfg),
	}
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if socket != "" {
		flags = append(flags, "--socket", socket)
	}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	flags = append(flags, "--log-level", "error")
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\nstate_dir = %q\nlog_dir = %q\n\n[mkvmerge]\nbinary = %q\ntimeout_seconds = %d\n\n[merge]\ndefault_language = %q\nreset_delay_seconds = %.3f\n",
		cfg.Paths.StateDir,
		cfg.Paths.LogDir,
		cfg.Mkvmerge.Binary,
		cfg.Mkvmerge.TimeoutSeconds,
		cfg.Merge.DefaultLanguage,
		cfg.Merge.ResetDelaySeconds,
	)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
