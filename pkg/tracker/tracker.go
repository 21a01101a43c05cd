// Package tracker turns per-frame geometry samples into debounced history
// commits.
//
// The host calls Tick once per update. Samples are taken at most once per
// interval; a commit happens only after no change has been seen for the
// quiescence window, so a drag gesture becomes a single undo step.
package tracker

import (
	"log/slog"
	"time"

	"github.com/aretw0/act/internal/logging"
	"github.com/aretw0/act/pkg/domain"
)

const (
	DefaultInterval = 20 * time.Millisecond
	DefaultWindow   = 200 * time.Millisecond
)

// Tracker samples a skeleton and commits settled changes.
// It is not safe for concurrent use.
type Tracker struct {
	skel     *domain.Skeleton
	interval time.Duration
	window   time.Duration
	logger   *slog.Logger

	lastSample time.Time
	lastChange time.Time
	pending    bool
}

// Option configures the Tracker.
type Option func(*Tracker)

// WithInterval sets the minimum time between two samples.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithWindow sets the quiescence window.
func WithWindow(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.window = d
		}
	}
}

// WithLogger configures a logger for commit events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// New creates a tracker for skel. Timers start at the zero time; call Reset
// with the host clock before the first Tick.
func New(skel *domain.Skeleton, opts ...Option) *Tracker {
	t := &Tracker{
		skel:     skel,
		interval: DefaultInterval,
		window:   DefaultWindow,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Skeleton returns the tracked skeleton.
func (t *Tracker) Skeleton() *domain.Skeleton { return t.skel }

// SetSkeleton retargets the tracker and drops any pending change.
func (t *Tracker) SetSkeleton(skel *domain.Skeleton, now time.Time) {
	t.skel = skel
	t.Reset(now)
}

// Pending reports whether a change is waiting for the window to elapse.
func (t *Tracker) Pending() bool { return t.pending }

// Reset restarts both timers and drops any pending change. Call it after
// undo, redo and context switches so replayed geometry is not re-committed.
func (t *Tracker) Reset(now time.Time) {
	t.lastSample = now
	t.lastChange = now
	t.pending = false
	if t.skel != nil {
		t.skel.RefreshDynamic()
		t.skel.ResetChangeFlags()
	}
}

// Tick samples the skeleton if the interval elapsed and commits once the
// window elapsed without a further change. It reports whether a command was
// pushed.
func (t *Tracker) Tick(now time.Time) bool {
	if t.skel == nil || t.skel.HipBone() == nil {
		return false
	}
	if now.Sub(t.lastSample) > t.interval {
		t.lastSample = now
		if t.skel.HasChanged() {
			t.pending = true
			t.lastChange = now
		}
		t.skel.RefreshDynamic()
	}
	if !t.pending || now.Sub(t.lastChange) <= t.window {
		return false
	}

	t.skel.Step()
	cmd := t.skel.Commit()
	t.pending = false
	t.skel.ResetChangeFlags()
	t.lastChange = now

	if cmd != nil {
		t.logger.Debug("History step committed",
			"model", t.skel.ModelName,
			"undo", t.skel.History.UndoCount(),
		)
	}
	return cmd != nil
}
