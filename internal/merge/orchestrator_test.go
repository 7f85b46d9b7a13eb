package merge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"submerge/internal/logging"
	"submerge/internal/registry"
	"submerge/internal/testsupport"
)

func newRequest(t *testing.T, dir string) registry.MergeRequest {
	t.Helper()
	video, subtitle := testsupport.MediaPair(t, dir, "movie")
	req, err := registry.NewMergeRequest(video, subtitle, "eng")
	if err != nil {
		t.Fatalf("NewMergeRequest: %v", err)
	}
	return req
}

func TestMergeSuccessWithStubTool(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.txt")
	binary := testsupport.WriteScript(t, filepath.Join(dir, "bin"), "mkvmerge",
		`printf '%s\n' "$@" > "`+argsFile+`"
: > "$2"
exit 0
`)
	req := newRequest(t, dir)

	orch := New(Options{Binary: binary, Suffix: "merged", Extension: "mkv"}, logging.NewNop())
	outcome := orch.Merge(context.Background(), req)

	if !outcome.Succeeded() {
		t.Fatalf("expected success, got %+v", outcome)
	}
	want := filepath.Join(dir, "movie.merged.mkv")
	if outcome.OutputPath != want {
		t.Fatalf("OutputPath = %q, want %q", outcome.OutputPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("expected stub to create output: %v", err)
	}
	recorded, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	gotArgs := strings.Split(strings.TrimSpace(string(recorded)), "\n")
	wantArgs := BuildArgs(req, want)
	if strings.Join(gotArgs, "|") != strings.Join(wantArgs, "|") {
		t.Fatalf("tool args = %q, want %q", gotArgs, wantArgs)
	}
}

func TestMergeNonZeroExit(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteScript(t, filepath.Join(dir, "bin"), "mkvmerge",
		`echo "Progress: 10%"
echo "Error: The file 'x.srt' could not be opened for reading." >&2
exit 2
`)
	orch := New(Options{Binary: binary}, logging.NewNop())
	outcome := orch.Merge(context.Background(), newRequest(t, dir))

	if outcome.Succeeded() || outcome.Kind != KindExit {
		t.Fatalf("expected exit failure, got %+v", outcome)
	}
	if outcome.ExitCode != 2 {
		t.Fatalf("ExitCode = %d, want 2", outcome.ExitCode)
	}
	if !errors.Is(outcome.Err, ErrToolExit) {
		t.Fatalf("expected ErrToolExit, got %v", outcome.Err)
	}
	if !strings.Contains(outcome.Message, "could not be opened") {
		t.Fatalf("expected tool output in message, got %q", outcome.Message)
	}
}

func TestMergeWarningExitIsFailure(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteScript(t, filepath.Join(dir, "bin"), "mkvmerge", "exit 1\n")
	outcome := New(Options{Binary: binary}, logging.NewNop()).Merge(context.Background(), newRequest(t, dir))

	if outcome.Succeeded() {
		t.Fatal("expected exit 1 to be reported as failure")
	}
	if strings.TrimSpace(outcome.Message) == "" {
		t.Fatal("expected non-empty failure message")
	}
}

func TestMergeMissingBinary(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name   string
		binary string
	}{
		{"absolute path", filepath.Join(dir, "missing", "mkvmerge")},
		{"name not on PATH", "submerge-no-such-muxer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := New(Options{Binary: tt.binary}, logging.NewNop()).Merge(context.Background(), newRequest(t, t.TempDir()))
			if outcome.Kind != KindLaunch {
				t.Fatalf("expected launch failure, got %+v", outcome)
			}
			if !errors.Is(outcome.Err, ErrLaunchFailure) {
				t.Fatalf("expected ErrLaunchFailure, got %v", outcome.Err)
			}
			if outcome.ExitCode != -1 || outcome.Message == "" {
				t.Fatalf("unexpected outcome %+v", outcome)
			}
		})
	}
}

func TestMergeNotExecutable(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "mkvmerge")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\nexit 0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	outcome := New(Options{Binary: binary}, logging.NewNop()).Merge(context.Background(), newRequest(t, dir))
	if outcome.Kind != KindLaunch {
		t.Fatalf("expected launch failure for non-executable tool, got %+v", outcome)
	}
}

func TestMergeTimeout(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteScript(t, filepath.Join(dir, "bin"), "mkvmerge", "exec sleep 5\n")
	orch := New(Options{Binary: binary, Timeout: 100 * time.Millisecond}, logging.NewNop())

	started := time.Now()
	outcome := orch.Merge(context.Background(), newRequest(t, dir))
	if outcome.Kind != KindTimeout || !errors.Is(outcome.Err, ErrTimeout) {
		t.Fatalf("expected timeout, got %+v", outcome)
	}
	if time.Since(started) > 4*time.Second {
		t.Fatal("timeout did not stop the tool")
	}
}

func TestMergeIgnoresCallerCancellationOnceStarted(t *testing.T) {
	orch := New(Options{Binary: "mkvmerge"}, logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	orch.WithCommandRunner(func(runCtx context.Context, _ string, _ ...string) ([]byte, error) {
		cancel()
		select {
		case <-runCtx.Done():
			return nil, runCtx.Err()
		case <-time.After(50 * time.Millisecond):
			return nil, nil
		}
	})
	req, _ := registry.NewMergeRequest("/a/b.mp4", "/a/b.srt", "eng")
	if outcome := orch.Merge(ctx, req); !outcome.Succeeded() {
		t.Fatalf("expected merge to run to completion, got %+v", outcome)
	}
}

func TestMergeNeverOverlaps(t *testing.T) {
	orch := New(Options{Binary: "mkvmerge"}, logging.NewNop())
	var active, maxActive, calls int32
	orch.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		n := atomic.AddInt32(&active, 1)
		for {
			prev := atomic.LoadInt32(&maxActive)
			if n <= prev || atomic.CompareAndSwapInt32(&maxActive, prev, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})
	req, _ := registry.NewMergeRequest("/a/b.mp4", "/a/b.srt", "eng")

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if outcome := orch.Merge(context.Background(), req); !outcome.Succeeded() {
				t.Errorf("unexpected outcome %+v", outcome)
			}
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Fatalf("observed %d concurrent tool runs", maxActive)
	}
	if calls != 6 {
		t.Fatalf("expected exactly one invocation per call, got %d", calls)
	}
}

func TestMergeWaitsForRunningMerge(t *testing.T) {
	orch := New(Options{Binary: "mkvmerge"}, logging.NewNop())
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	orch.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		started <- struct{}{}
		<-release
		return nil, nil
	})
	req, _ := registry.NewMergeRequest("/a/b.mp4", "/a/b.srt", "eng")

	done := make(chan Outcome, 1)
	go func() { done <- orch.Merge(context.Background(), req) }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if outcome := orch.Merge(ctx, req); outcome.Kind != KindBusy || !errors.Is(outcome.Err, ErrBusy) {
		t.Fatalf("expected busy outcome for waiting caller, got %+v", outcome)
	}

	close(release)
	if outcome := <-done; !outcome.Succeeded() {
		t.Fatalf("first merge failed: %+v", outcome)
	}
	if outcome := orch.Merge(context.Background(), req); !outcome.Succeeded() {
		t.Fatalf("merge after release failed: %+v", outcome)
	}
}

func TestMergeCancelledContextRunsWhenIdle(t *testing.T) {
	orch := New(Options{Binary: "mkvmerge"}, logging.NewNop())
	var calls int32
	orch.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return nil, nil
	})
	req, _ := registry.NewMergeRequest("/a/b.mp4", "/a/b.srt", "eng")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	const attempts = 50
	for i := 0; i < attempts; i++ {
		if outcome := orch.Merge(ctx, req); !outcome.Succeeded() {
			t.Fatalf("attempt %d: expected idle orchestrator to run, got %+v", i, outcome)
		}
	}
	if got := atomic.LoadInt32(&calls); got != attempts {
		t.Fatalf("tool ran %d times, want %d", got, attempts)
	}
}

func TestMergeZeroRequestReachesTool(t *testing.T) {
	orch := New(Options{Binary: "mkvmerge"}, logging.NewNop())
	var gotArgs []string
	orch.WithCommandRunner(func(_ context.Context, _ string, args ...string) ([]byte, error) {
		gotArgs = args
		return nil, nil
	})

	outcome := orch.Merge(context.Background(), registry.MergeRequest{})
	if outcome.Kind == KindLaunch {
		t.Fatalf("zero request must not be reported as a launch failure: %+v", outcome)
	}
	if len(gotArgs) == 0 {
		t.Fatal("expected the tool to be invoked for a zero request")
	}
}

func TestMergeKilledBySignal(t *testing.T) {
	dir := t.TempDir()
	binary := testsupport.WriteScript(t, filepath.Join(dir, "bin"), "mkvmerge", "kill -9 $$\n")
	outcome := New(Options{Binary: binary}, logging.NewNop()).Merge(context.Background(), newRequest(t, dir))

	if outcome.Kind != KindExit || !errors.Is(outcome.Err, ErrToolExit) {
		t.Fatalf("expected exit failure, got %+v", outcome)
	}
	if outcome.ExitCode != -1 {
		t.Fatalf("ExitCode = %d, want -1", outcome.ExitCode)
	}
	if strings.Contains(outcome.Message, "code -1") {
		t.Fatalf("signal death reported as exit code: %q", outcome.Message)
	}
	if !strings.Contains(outcome.Message, "signal: killed") {
		t.Fatalf("expected signal in message, got %q", outcome.Message)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTimeout(30))
	cfg.Mkvmerge.OutputSuffix = "subbed"
	orch := NewFromConfig(cfg, nil)
	if orch.Binary() != "mkvmerge" {
		t.Fatalf("Binary() = %q", orch.Binary())
	}
	req, _ := registry.NewMergeRequest("/a/b.mp4", "/a/b.srt", "eng")
	if got := orch.OutputPathFor(req); got != "/a/b.subbed.mkv" {
		t.Fatalf("OutputPathFor = %q", got)
	}
	if orch.opts.Timeout != 30*time.Second {
		t.Fatalf("Timeout = %s", orch.opts.Timeout)
	}
}
