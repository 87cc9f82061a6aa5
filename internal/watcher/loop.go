package watcher

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/raoulx24/irotate/internal/logging"
	"github.com/raoulx24/irotate/internal/worker"
)

var errSourceClosed = errors.New("notification source closed")

// run arms the timer with the current sleep interval and races it against
// notifications. One iteration ends when an Action is queued or the settings
// change; below-threshold writes keep the armed timer running.
func (w *Watcher) run(ctx context.Context) error {
	defer w.setState(Idle)

	for {
		w.recoverSubscriptions()

		sleep := w.store.Get().SleepInterval
		timer := time.NewTimer(sleep)
		w.setState(AwaitingEvent)

		err := w.await(ctx, timer)
		timer.Stop()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (w *Watcher) await(ctx context.Context, timer *time.Timer) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.src.Events():
			if !ok {
				return errSourceClosed
			}
			w.log.Debug("event", logging.KeyPath, ev.Path, "op", ev.Op.String())

			switch ev.Path {
			case w.target:
				if w.onTargetEvent(ev) {
					return w.dispatch(ctx, worker.Rotate)
				}
			case w.settingsPath:
				w.onSettingsEvent(ev)
				return nil
			}

		case err, ok := <-w.src.Errors():
			if !ok {
				return errSourceClosed
			}
			w.log.Error("error", logging.KeyKind, "notify", logging.KeyError, err)

		case out := <-w.results:
			w.onOutcome(out)

		case <-w.reload:
			w.reloadSettings()
			return nil

		case <-w.scheduled:
			return w.dispatch(ctx, worker.RotateFromSchedule)

		case <-timer.C:
			return w.dispatch(ctx, worker.RotateFromTimeout)
		}
	}
}

// onTargetEvent reports whether the event warrants a size-triggered rotation.
func (w *Watcher) onTargetEvent(ev Event) bool {
	if w.inflight > 0 {
		// the subscription still points at the file being rotated away
		w.log.Debug("stale target event during rotation", "op", ev.Op.String())
		return false
	}

	if ev.Op == Replaced {
		if w.rearmTarget() {
			w.log.Warn("target replaced outside a rotation", logging.KeyPath, w.target)
		}
		return false
	}

	threshold := w.store.Get().Threshold()
	over, err := w.size.SizeExceeds(threshold)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			w.log.Debug("target missing during size check", logging.KeyPath, w.target)
			return false
		}
		w.log.Error("error", logging.KeyKind, "size_check", logging.KeyError, err)
		return false
	}
	return over
}

// dispatch queues an Action, handling outcomes while the queue is full so the
// dispatcher can never block on a full results channel.
func (w *Watcher) dispatch(ctx context.Context, kind worker.Kind) error {
	w.setState(Dispatching)
	a := worker.NewAction(kind)

	if err := w.queue.PushDraining(ctx, a, w.results, w.onOutcome); err != nil {
		return err
	}
	w.inflight++
	w.log.Debug("action queued", "action", kind.String(), "inflight", w.inflight)
	return nil
}

// onOutcome re-arms the target subscription after a successful rotation.
// After a failure the old subscription is dropped, never reused.
func (w *Watcher) onOutcome(out worker.Outcome) {
	if w.inflight > 0 {
		w.inflight--
	}

	if out.Err != nil {
		w.log.Warn("rotation failed, dropping target watch", "action", out.Action.Kind.String())
		w.dropTarget()
		w.recoverSubscriptions()
		return
	}

	w.rearmTarget()
}
