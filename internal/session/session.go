package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"submerge/internal/history"
	"submerge/internal/language"
	"submerge/internal/logging"
	"submerge/internal/merge"
	"submerge/internal/registry"
)

var (
	// ErrBusy reports that a merge cycle is already active.
	ErrBusy = errors.New("a merge cycle is already active")
	// ErrClosed reports use of a closed session.
	ErrClosed = errors.New("session closed")
	// ErrUnknownMerge reports a merge ID the session does not track.
	ErrUnknownMerge = errors.New("unknown merge id")
)

const (
	defaultEventBuffer = 32
	retainedResults    = 64
)

// Merger runs one merge request. *merge.Orchestrator satisfies it.
type Merger interface {
	Merge(ctx context.Context, req registry.MergeRequest) merge.Outcome
	OutputPathFor(req registry.MergeRequest) string
}

// Recorder persists merge attempts. *history.Store satisfies it.
type Recorder interface {
	Begin(ctx context.Context, rec history.Record) error
	Finish(ctx context.Context, id string, done history.Completion) error
}

// Options configures a Session.
type Options struct {
	// ResetDelay is the observation window before the registry clears.
	// Zero resets immediately after the outcome is published.
	ResetDelay  time.Duration
	EventBuffer int
	Recorder    Recorder
	Logger      *slog.Logger
}

// Result is a completed merge cycle.
type Result struct {
	ID           string        `json:"id"`
	VideoPath    string        `json:"video_path"`
	SubtitlePath string        `json:"subtitle_path"`
	Language     string        `json:"language"`
	Outcome      merge.Outcome `json:"-"`
	FinishedAt   time.Time     `json:"finished_at"`
}

// Session coordinates capture events, merge cycles and deferred resets.
type Session struct {
	reg      *registry.Registry
	merger   Merger
	recorder Recorder
	logger   *slog.Logger
	delay    time.Duration

	events chan capture
	stop   chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	active   bool
	merging  bool
	current  string
	pending  []registry.Event
	last     *Result
	reset    *resetTask
	done     map[string]chan struct{}
	results  map[string]Result
	finished []string

	subMu     sync.Mutex
	subs      map[int]chan Result
	nextSubID int
}

// New constructs a session over reg that merges through merger.
func New(reg *registry.Registry, merger Merger, opts Options) *Session {
	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	delay := opts.ResetDelay
	if delay < 0 {
		delay = 0
	}
	return &Session{
		reg:      reg,
		merger:   merger,
		recorder: opts.Recorder,
		logger:   logging.NewComponentLogger(opts.Logger, "session"),
		delay:    delay,
		events:   make(chan capture, buffer),
		stop:     make(chan struct{}),
		done:     make(map[string]chan struct{}),
		results:  make(map[string]Result),
		subs:     make(map[int]chan Result),
	}
}

// Registry exposes the underlying input registry for read access.
func (s *Session) Registry() *registry.Registry {
	return s.reg
}

// capture is a queued event plus the channel Run answers on.
type capture struct {
	ev    registry.Event
	reply chan error
}

// Deliver queues a capture event for Run and waits until it has been applied
// or deferred. The returned error is the one Apply reported.
func (s *Session) Deliver(ctx context.Context, ev registry.Event) error {
	c := capture{ev: ev, reply: make(chan error, 1)}
	select {
	case s.events <- c:
	case <-s.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-c.reply:
		return err
	case <-s.stop:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run applies queued capture events in arrival order until ctx is done or
// the session closes.
func (s *Session) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case c := <-s.events:
			err := s.Apply(c.ev)
			if err != nil {
				logging.WarnWithContext(s.logger, "capture event rejected", "capture_rejected",
					logging.String("kind", string(c.ev.Kind)),
					logging.String("value", c.ev.Value),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "run `submerge languages` for supported codes"),
					logging.String(logging.FieldImpact, "previous selection kept"),
				)
			}
			c.reply <- err
		}
	}
}

// Apply performs a capture event synchronously. While a cycle is active the
// event is held and replayed after the reset; a reset event issued during the
// observation window resets immediately.
func (s *Session) Apply(ev registry.Event) error {
	if ev.Kind == registry.EventLanguage {
		if _, ok := language.Normalize(ev.Value); !ok {
			return fmt.Errorf("%w: %q", registry.ErrInvalidLanguage, ev.Value)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.active {
		if ev.Kind == registry.EventReset && !s.merging {
			s.reset.Cancel()
			s.reset = nil
			s.resetLocked()
			return nil
		}
		s.pending = append(s.pending, ev)
		s.logger.Debug("capture event deferred until reset",
			logging.String("kind", string(ev.Kind)),
			logging.Int("pending", len(s.pending)),
		)
		return nil
	}
	return s.reg.Apply(ev)
}

// Trigger starts a merge cycle on a worker and returns its merge ID.
func (s *Session) Trigger(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	if s.active {
		s.mu.Unlock()
		return "", ErrBusy
	}
	req, err := s.reg.Request()
	if err != nil {
		s.mu.Unlock()
		return "", err
	}
	id := uuid.NewString()
	s.active = true
	s.merging = true
	s.current = id
	s.done[id] = make(chan struct{})
	s.wg.Add(1)
	s.mu.Unlock()

	workCtx := logging.WithMergeID(context.WithoutCancel(ctx), id)
	go s.work(workCtx, id, req)
	return id, nil
}

// MergeNow triggers a merge and blocks until its outcome is available.
func (s *Session) MergeNow(ctx context.Context) (Result, error) {
	id, err := s.Trigger(ctx)
	if err != nil {
		return Result{}, err
	}
	return s.Wait(ctx, id)
}

// Wait blocks until the merge with the given ID completes.
func (s *Session) Wait(ctx context.Context, id string) (Result, error) {
	s.mu.Lock()
	ch, ok := s.done[id]
	s.mu.Unlock()
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownMerge, id)
	}
	select {
	case <-ch:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.results[id]
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownMerge, id)
	}
	return res, nil
}

// Outcomes subscribes to completed merge cycles. Slow subscribers miss
// results rather than blocking the session.
func (s *Session) Outcomes() (<-chan Result, func()) {
	ch := make(chan Result, 8)
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = ch
	s.subMu.Unlock()
	return ch, func() {
		s.subMu.Lock()
		if existing, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(existing)
		}
		s.subMu.Unlock()
	}
}

// Close cancels any pending reset and waits for running merges to finish.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.stop)
	s.reset.Cancel()
	s.reset = nil
	s.mu.Unlock()

	s.wg.Wait()

	s.subMu.Lock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
	s.subMu.Unlock()
}

func (s *Session) work(ctx context.Context, id string, req registry.MergeRequest) {
	defer s.wg.Done()
	logger := logging.WithContext(ctx, s.logger)

	started := time.Now()
	if s.recorder != nil {
		rec := history.Record{
			ID:           id,
			VideoPath:    req.VideoPath(),
			SubtitlePath: req.SubtitlePath(),
			Language:     req.Language(),
			OutputPath:   s.merger.OutputPathFor(req),
			StartedAt:    started,
		}
		if err := s.recorder.Begin(ctx, rec); err != nil {
			logging.WarnWithContext(logger, "history record failed", "history_begin_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "merge runs but is missing from history"),
			)
		}
	}

	outcome := s.merger.Merge(ctx, req)
	finished := time.Now()

	if s.recorder != nil {
		if err := s.recorder.Finish(ctx, id, completionFor(outcome, finished)); err != nil {
			logging.WarnWithContext(logger, "history update failed", "history_finish_failed",
				logging.Error(err),
				logging.String(logging.FieldImpact, "history shows the merge as running"),
			)
		}
	}

	s.complete(Result{
		ID:           id,
		VideoPath:    req.VideoPath(),
		SubtitlePath: req.SubtitlePath(),
		Language:     req.Language(),
		Outcome:      outcome,
		FinishedAt:   finished,
	})
}

func completionFor(outcome merge.Outcome, finished time.Time) history.Completion {
	done := history.Completion{
		Status:     history.StatusSucceeded,
		OutputPath: outcome.OutputPath,
		ExitCode:   outcome.ExitCode,
		FinishedAt: finished,
	}
	if outcome.Succeeded() {
		done.ExitCode = 0
		return done
	}
	done.Status = history.StatusFailed
	done.FailureKind = string(outcome.Kind)
	done.Message = outcome.Message
	return done
}

func (s *Session) complete(res Result) {
	s.mu.Lock()
	s.merging = false
	s.last = &res
	s.results[res.ID] = res
	s.finished = append(s.finished, res.ID)
	s.pruneLocked()
	if ch, ok := s.done[res.ID]; ok {
		close(ch)
	}

	if s.closed {
		s.active = false
	} else if s.delay <= 0 {
		s.resetLocked()
	} else {
		s.reset = scheduleReset(s.delay, s.fireReset)
	}
	s.mu.Unlock()

	s.publish(res)
}

func (s *Session) fireReset(task *resetTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.reset != task || s.closed {
		return
	}
	s.reset = nil
	s.resetLocked()
}

// resetLocked clears the registry, ends the cycle and replays held events.
func (s *Session) resetLocked() {
	s.reg.Reset()
	s.active = false
	s.current = ""
	s.last = nil

	pending := s.pending
	s.pending = nil
	for _, ev := range pending {
		if err := s.reg.Apply(ev); err != nil {
			s.logger.Warn("deferred capture event rejected",
				logging.String("kind", string(ev.Kind)),
				logging.Error(err),
				logging.String(logging.FieldEventType, "capture_rejected"),
			)
		}
	}
	s.logger.Debug("registry reset", logging.Int("replayed_events", len(pending)))
}

func (s *Session) pruneLocked() {
	for len(s.finished) > retainedResults {
		oldest := s.finished[0]
		s.finished = s.finished[1:]
		delete(s.results, oldest)
		delete(s.done, oldest)
	}
}

func (s *Session) publish(res Result) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- res:
		default:
		}
	}
}
