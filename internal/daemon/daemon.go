package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"submerge/internal/config"
	"submerge/internal/deps"
	"submerge/internal/history"
	"submerge/internal/logging"
	"submerge/internal/merge"
	"submerge/internal/registry"
	"submerge/internal/session"
)

// Daemon owns the merge session and enforces single-instance execution.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *history.Store
	reg     *registry.Registry
	orch    *merge.Orchestrator
	session *session.Session

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	startedAt time.Time
	observers sync.WaitGroup

	lastMu    sync.Mutex
	lastMerge *session.Result

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	StartedAt     time.Time
	LockPath      string
	HistoryDBPath string
	Session       session.Status
	LastMerge     *session.Result
	Dependencies  []deps.Status
	HistoryStats  map[history.Status]int
}

// New constructs a daemon with initialized dependencies. The caller keeps
// ownership of store and closes it after the daemon.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and history store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	reg := registry.New(cfg.Merge.DefaultLanguage)
	orch := merge.NewFromConfig(cfg, logger)
	sess := session.New(reg, orch, session.Options{
		ResetDelay: cfg.ResetDelay(),
		Recorder:   store,
		Logger:     logger,
	})

	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		reg:      reg,
		orch:     orch,
		session:  sess,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
		shutdown: make(chan struct{}),
	}, nil
}

// Start acquires the daemon lock and begins draining capture events.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another submerge daemon instance is already running")
	}

	if n, err := d.store.FailInterrupted(ctx, "daemon stopped while the merge was running"); err != nil {
		logging.WarnWithContext(d.logger, "interrupted merge cleanup failed", "history_cleanup_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "history may list stale running merges"),
		)
	} else if n > 0 {
		d.logger.Info("marked interrupted merges as failed",
			logging.Int64("count", n),
			logging.String(logging.FieldEventType, "history_interrupted"),
		)
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.ctx, d.cancel = runCtx, cancel
	go d.session.Run(runCtx)

	outcomes, stopOutcomes := d.session.Outcomes()
	snapshots, stopSnapshots := d.reg.Subscribe()
	d.observers.Add(1)
	go func() {
		defer d.observers.Done()
		defer stopOutcomes()
		defer stopSnapshots()
		d.observe(runCtx, outcomes, snapshots)
	}()

	d.startedAt = time.Now()
	d.running.Store(true)
	d.logger.Info("submerge daemon started",
		logging.String("lock", d.lockPath),
		logging.String("muxer", d.orch.Binary()),
		logging.String("default_language", d.reg.DefaultLanguage()),
	)
	return nil
}

// Stop cancels event processing, waits for an in-flight merge and releases
// the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.observers.Wait()
	d.session.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock",
			logging.Error(err),
			logging.String(logging.FieldEventType, "lock_release_failed"),
			logging.String(logging.FieldErrorHint, "remove "+d.lockPath+" if the next start fails"),
		)
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("submerge daemon stopped")
}

// Close stops the daemon and shuts the session down. The history store is
// left open for its owner to close.
func (d *Daemon) Close() error {
	d.Stop()
	d.session.Close()
	return nil
}

// RequestShutdown asks the process hosting the daemon to exit.
func (d *Daemon) RequestShutdown() {
	d.shutdownOnce.Do(func() { close(d.shutdown) })
}

// ShutdownRequested is closed once a client has asked the daemon to stop.
func (d *Daemon) ShutdownRequested() <-chan struct{} {
	return d.shutdown
}

// SetVideo delivers a video capture event.
func (d *Daemon) SetVideo(ctx context.Context, path string) error {
	return d.deliver(ctx, registry.VideoEvent(path))
}

// SetSubtitle delivers a subtitle capture event.
func (d *Daemon) SetSubtitle(ctx context.Context, path string) error {
	return d.deliver(ctx, registry.SubtitleEvent(path))
}

// SetLanguage delivers a language selection event.
func (d *Daemon) SetLanguage(ctx context.Context, code string) error {
	return d.deliver(ctx, registry.LanguageEvent(code))
}

// Reset clears the registry, or defers the reset while a merge runs.
func (d *Daemon) Reset(ctx context.Context) error {
	return d.deliver(ctx, registry.ResetEvent())
}

func (d *Daemon) deliver(ctx context.Context, ev registry.Event) error {
	if !d.running.Load() {
		return errors.New("daemon not running")
	}
	return d.session.Deliver(ctx, ev)
}

// Trigger starts a merge cycle and returns its merge ID.
func (d *Daemon) Trigger(ctx context.Context) (string, error) {
	if !d.running.Load() {
		return "", errors.New("daemon not running")
	}
	return d.session.Trigger(ctx)
}

// Wait blocks until the merge with the given ID completes.
func (d *Daemon) Wait(ctx context.Context, id string) (session.Result, error) {
	return d.session.Wait(ctx, id)
}

// History returns recorded merges, newest first.
func (d *Daemon) History(ctx context.Context, limit int, statuses []history.Status) ([]history.Record, error) {
	return d.store.List(ctx, limit, statuses...)
}

// ClearHistory removes finished merges from history.
func (d *Daemon) ClearHistory(ctx context.Context) (int64, error) {
	return d.store.Clear(ctx)
}

// SessionStatus returns the session state without checking dependencies.
func (d *Daemon) SessionStatus() session.Status {
	return d.session.Status()
}

// LastMerge returns the most recent merge outcome, kept across resets.
func (d *Daemon) LastMerge() *session.Result {
	d.lastMu.Lock()
	defer d.lastMu.Unlock()
	if d.lastMerge == nil {
		return nil
	}
	res := *d.lastMerge
	return &res
}

// Status returns the current daemon status. It runs the muxer version check.
func (d *Daemon) Status(ctx context.Context) Status {
	st := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		StartedAt:     d.startedAt,
		LockPath:      d.lockPath,
		HistoryDBPath: d.store.Path(),
		Session:       d.session.Status(),
		LastMerge:     d.LastMerge(),
		Dependencies:  []deps.Status{deps.MuxerStatus(ctx, d.orch.Binary())},
	}
	if stats, err := d.store.Stats(ctx); err == nil {
		st.HistoryStats = stats
	}
	return st
}

// observe keeps the last merge outcome and logs readiness changes until ctx
// ends.
func (d *Daemon) observe(ctx context.Context, outcomes <-chan session.Result, snapshots <-chan registry.Snapshot) {
	ready := false
	for {
		select {
		case <-ctx.Done():
			return
		case res, ok := <-outcomes:
			if !ok {
				return
			}
			d.lastMu.Lock()
			d.lastMerge = &res
			d.lastMu.Unlock()
			d.logger.Info("merge outcome recorded",
				logging.String(logging.FieldEventType, "merge_outcome"),
				logging.String(logging.FieldMergeID, res.ID),
				logging.Bool("succeeded", res.Outcome.Succeeded()),
				logging.String("display", res.Outcome.Display()),
			)
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if snap.Ready == ready {
				continue
			}
			ready = snap.Ready
			if ready {
				d.logger.Info("merge inputs ready",
					logging.String(logging.FieldEventType, "inputs_ready"),
					logging.String("video", snap.Video.Path),
					logging.String("subtitle", snap.Subtitle.Path),
					logging.String("language", snap.Language.Code),
				)
			} else {
				d.logger.Debug("merge inputs cleared", logging.Int64("revision", int64(snap.Revision)))
			}
		}
	}
}
