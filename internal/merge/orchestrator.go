package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"submerge/internal/config"
	"submerge/internal/logging"
	"submerge/internal/registry"
)

// Options configures an Orchestrator.
type Options struct {
	Binary    string
	Suffix    string
	Extension string
	// Timeout kills the tool after the given duration. Zero disables it.
	Timeout time.Duration
}

// Orchestrator executes merge requests against the external muxer.
type Orchestrator struct {
	opts   Options
	logger *slog.Logger
	run    commandRunner
	sem    chan struct{}
}

// New constructs an orchestrator.
func New(opts Options, logger *slog.Logger) *Orchestrator {
	if strings.TrimSpace(opts.Binary) == "" {
		opts.Binary = "mkvmerge"
	}
	if strings.TrimSpace(opts.Extension) == "" {
		opts.Extension = "mkv"
	}
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}
	return &Orchestrator{
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "merge"),
		run:    defaultCommandRunner,
		sem:    make(chan struct{}, 1),
	}
}

// NewFromConfig constructs an orchestrator from the mkvmerge config section.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Orchestrator {
	if cfg == nil {
		return New(Options{}, logger)
	}
	return New(Options{
		Binary:    cfg.MkvmergeBinary(),
		Suffix:    cfg.Mkvmerge.OutputSuffix,
		Extension: cfg.Mkvmerge.OutputExtension,
		Timeout:   cfg.MergeTimeout(),
	}, logger)
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (o *Orchestrator) WithCommandRunner(r commandRunner) {
	if o != nil && r != nil {
		o.run = r
	}
}

// Binary returns the configured muxer path.
func (o *Orchestrator) Binary() string {
	return o.opts.Binary
}

// OutputPathFor derives the output path for a request.
func (o *Orchestrator) OutputPathFor(req registry.MergeRequest) string {
	return OutputPath(req.VideoPath(), o.opts.Suffix, o.opts.Extension)
}

// Merge runs the muxer once for req. It waits for any in-flight merge to
// finish; if ctx ends first the outcome is a KindBusy failure and nothing is
// launched. Once launched, the tool is not cancelled by ctx.
func (o *Orchestrator) Merge(ctx context.Context, req registry.MergeRequest) Outcome {
	// A free slot always wins over a done ctx.
	select {
	case o.sem <- struct{}{}:
	default:
		select {
		case o.sem <- struct{}{}:
		case <-ctx.Done():
			msg := fmt.Sprintf("gave up waiting for the running merge: %v", context.Cause(ctx))
			return failure(KindBusy, ErrBusy, msg, -1, 0)
		}
	}
	defer func() { <-o.sem }()
	return o.execute(ctx, req)
}

func (o *Orchestrator) execute(ctx context.Context, req registry.MergeRequest) (outcome Outcome) {
	logger := logging.WithContext(ctx, o.logger)
	defer func() {
		if r := recover(); r != nil {
			outcome = failure(KindLaunch, ErrLaunchFailure, fmt.Sprintf("panic: %v", r), -1, 0)
			logging.ErrorWithContext(logger, "merge aborted", "merge_panic", logging.Error(outcome.Err))
		}
	}()

	output := o.OutputPathFor(req)
	args := BuildArgs(req, output)
	tool := filepath.Base(o.opts.Binary)

	runCtx := context.WithoutCancel(ctx)
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, o.opts.Timeout)
		defer cancel()
	}

	logger.Info("merge started",
		logging.String(logging.FieldEventType, "merge_started"),
		logging.String("video", req.VideoPath()),
		logging.String("subtitle", req.SubtitlePath()),
		logging.String("language", req.Language()),
		logging.String("output", output),
	)
	logger.Debug("executing muxer", logging.String("binary", o.opts.Binary), logging.Strings("args", args))

	started := time.Now()
	combined, err := o.run(runCtx, o.opts.Binary, args...)
	elapsed := time.Since(started)

	outcome = o.classify(runCtx, tool, combined, err, output, elapsed)
	if outcome.Succeeded() {
		logger.Info("merge complete",
			logging.String(logging.FieldEventType, "merge_complete"),
			logging.String("output", output),
			logging.Duration("elapsed", elapsed),
		)
		return outcome
	}

	logging.WarnWithContext(logger, "merge failed", "merge_failed",
		logging.String("kind", string(outcome.Kind)),
		logging.Int("exit_code", outcome.ExitCode),
		logging.String("reason", outcome.Message),
		logging.Duration("elapsed", elapsed),
		logging.String(logging.FieldErrorHint, hintFor(outcome.Kind)),
		logging.String(logging.FieldImpact, "no merged file was produced"),
	)
	return outcome
}

func (o *Orchestrator) classify(runCtx context.Context, tool string, combined []byte, err error, output string, elapsed time.Duration) Outcome {
	if err == nil {
		return success(output, elapsed)
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		msg := fmt.Sprintf("%s did not finish within %s", tool, o.opts.Timeout)
		return failure(KindTimeout, ErrTimeout, msg, -1, elapsed)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		msg := fmt.Sprintf("%s exited with code %d", tool, code)
		if code < 0 {
			// Killed by a signal; ExitCode carries no status.
			msg = fmt.Sprintf("%s terminated: %s", tool, exitErr.String())
		}
		if line := lastLine(combined); line != "" {
			msg += ": " + line
		}
		return failure(KindExit, ErrToolExit, msg, code, elapsed)
	}
	return failure(KindLaunch, ErrLaunchFailure, fmt.Sprintf("could not start %s: %v", tool, err), -1, elapsed)
}

func hintFor(kind Kind) string {
	switch kind {
	case KindLaunch:
		return "install mkvmerge or set mkvmerge.binary to its absolute path"
	case KindTimeout:
		return "raise mkvmerge.timeout_seconds or set it to 0"
	default:
		return "check the muxer output above and the input files"
	}
}

// lastLine returns the final non-empty line of tool output.
func lastLine(output []byte) string {
	lines := strings.Split(strings.ReplaceAll(string(output), "\r\n", "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
