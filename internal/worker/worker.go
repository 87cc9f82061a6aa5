// Package worker carries rotation requests from the watcher to the rotation
// engine and executes them one at a time.
package worker

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/raoulx24/irotate/internal/logging"
)

// Rotator performs one full rotation and returns the new highest backup index.
type Rotator interface {
	RotateNow(ctx context.Context) (int, error)
}

// Dispatcher consumes Actions in FIFO order and reports every Outcome.
type Dispatcher struct {
	rotator Rotator
	queue   *Queue
	results chan Outcome
	log     logging.Logger
}

// New creates a dispatcher reading from q. Outcomes are buffered up to the
// queue capacity.
func New(r Rotator, q *Queue, log logging.Logger) *Dispatcher {
	return &Dispatcher{
		rotator: r,
		queue:   q,
		results: make(chan Outcome, q.Cap()),
		log:     log,
	}
}

// Results delivers one Outcome per handled Action.
func (d *Dispatcher) Results() <-chan Outcome { return d.results }

// Run handles actions until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.log.Info("dispatcher started", "queueSize", d.queue.Cap())
	for {
		a, ok := d.queue.Pop(ctx)
		if !ok {
			return nil
		}

		out := d.Handle(ctx, a)

		select {
		case d.results <- out:
		case <-ctx.Done():
			return nil
		}
	}
}

// Handle performs the rotation for a. A panic in the rotator becomes an error.
func (d *Dispatcher) Handle(ctx context.Context, a Action) (out Outcome) {
	start := time.Now()
	out.Action = a

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("rotation panicked", "panic", r, "stack", string(debug.Stack()))
			out.Err = fmt.Errorf("rotation panicked: %v", r)
		}
		out.Duration = time.Since(start)
	}()

	idx, err := d.rotator.RotateNow(ctx)
	if err != nil {
		out.Err = err
		d.log.Error("error", logging.KeyKind, "rotation", "action", a.Kind.String(), logging.KeyError, err)
		return out
	}

	out.Index = idx
	d.log.Info("rotation performed", "action", a.Kind.String(), "highestBackup", idx, "waited", start.Sub(a.Queued).String())
	return out
}
