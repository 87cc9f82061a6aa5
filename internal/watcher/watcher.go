// Package watcher races change notifications on the target and settings files
// against the forced-rotation timer and queues rotation Actions.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/raoulx24/irotate/internal/address"
	"github.com/raoulx24/irotate/internal/fs"
	"github.com/raoulx24/irotate/internal/fsprobe"
	"github.com/raoulx24/irotate/internal/logging"
	"github.com/raoulx24/irotate/internal/settings"
	"github.com/raoulx24/irotate/internal/worker"
)

// Watch modes.
const (
	ModeAuto     = "auto"
	ModeFsnotify = "fsnotify"
	ModePoll     = "poll"
)

// State of the loop, for status reporting.
type State int32

const (
	Idle State = iota
	AwaitingEvent
	Dispatching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingEvent:
		return "awaiting_event"
	case Dispatching:
		return "dispatching"
	default:
		return "unknown"
	}
}

// SizeChecker reports whether the target reached a threshold.
type SizeChecker interface {
	SizeExceeds(threshold int64) (bool, error)
}

// Config selects what to watch and how.
type Config struct {
	Target       address.Address
	SettingsPath string
	Mode         string
	PollInterval time.Duration
}

// Watcher owns the notification subscriptions. Everything except state and
// the reload channel is touched only by the goroutine running Start.
type Watcher struct {
	target       string
	settingsPath string
	mode         string
	pollInterval time.Duration

	size    SizeChecker
	store   *settings.Store
	queue   *worker.Queue
	results <-chan worker.Outcome
	fs      fs.FS
	log     logging.Logger

	src             Source
	targetInfo      fs.FileInfo
	targetWatched   bool
	settingsWatched bool
	inflight        int

	state     atomic.Int32
	reload    chan struct{}
	scheduled chan struct{}
}

// New creates a watcher. results must be the Outcome channel of the
// dispatcher draining q.
func New(cfg Config, size SizeChecker, store *settings.Store, q *worker.Queue, results <-chan worker.Outcome, log logging.Logger) *Watcher {
	mode := cfg.Mode
	if mode == "" {
		mode = ModeAuto
	}
	return &Watcher{
		target:       token(cfg.Target.Path()),
		settingsPath: token(cfg.SettingsPath),
		mode:         mode,
		pollInterval: cfg.PollInterval,
		size:         size,
		store:        store,
		queue:        q,
		results:      results,
		fs:           fs.New(),
		log:          log,
		reload:       make(chan struct{}, 1),
		scheduled:    make(chan struct{}, 1),
	}
}

// WithSource replaces the notification source chosen by mode.
func (w *Watcher) WithSource(src Source) *Watcher {
	w.src = src
	return w
}

func (w *Watcher) State() State { return State(w.state.Load()) }

func (w *Watcher) setState(s State) { w.state.Store(int32(s)) }

// RequestRotation asks the loop to queue a RotateFromSchedule action.
// Requests made while one is pending coalesce.
func (w *Watcher) RequestRotation() {
	select {
	case w.scheduled <- struct{}{}:
	default:
	}
}

// Start verifies both files, subscribes to them and runs the loop until ctx
// is done. Errors before the loop starts are fatal for the caller.
func (w *Watcher) Start(ctx context.Context) error {
	for _, p := range []string{w.target, w.settingsPath} {
		ok, err := w.fs.Exists(p)
		if err != nil {
			return fmt.Errorf("checking %s: %w", p, err)
		}
		if !ok {
			return fmt.Errorf("watched file %s does not exist", p)
		}
	}

	if w.src == nil {
		src, err := w.openSource()
		if err != nil {
			return err
		}
		w.src = src
	}
	defer w.src.Close()

	if err := w.subscribeTarget(); err != nil {
		return fmt.Errorf("watching %s: %w", w.target, err)
	}
	if err := w.src.Add(w.settingsPath); err != nil {
		return fmt.Errorf("watching %s: %w", w.settingsPath, err)
	}
	w.settingsWatched = true

	cur := w.store.Get()
	w.log.Info("watching started",
		"target", w.target,
		"settings", w.settingsPath,
		"mode", w.mode,
		"sleep", cur.SleepInterval.String(),
		"threshold", cur.Threshold(),
	)

	return w.run(ctx)
}

// openSource picks the Source for the configured mode.
func (w *Watcher) openSource() (Source, error) {
	switch w.mode {
	case ModeFsnotify:
		return newFsnotifySource()

	case ModePoll:
		return newPollSource(w.fs, w.pollInterval), nil

	case ModeAuto:
		res := fsprobe.Probe(filepath.Dir(w.target))
		if res.FsnotifySupported {
			return newFsnotifySource()
		}
		w.log.Warn("fsnotify disabled, polling", "reason", res.Reason)
		w.mode = ModePoll
		return newPollSource(w.fs, w.pollInterval), nil

	default:
		return nil, fmt.Errorf("unknown mode %q", w.mode)
	}
}
