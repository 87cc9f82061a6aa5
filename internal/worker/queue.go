package worker

import "context"

// DefaultQueueSize is the Action channel capacity.
const DefaultQueueSize = 3

// Queue is a bounded FIFO of Actions. A full queue blocks Push, which is the
// only backpressure between detection and rotation.
type Queue struct {
	Ch chan Action
}

func NewQueue(size int) *Queue {
	if size < 1 {
		size = DefaultQueueSize
	}
	return &Queue{Ch: make(chan Action, size)}
}

// Push blocks until the action is queued or ctx ends.
func (q *Queue) Push(ctx context.Context, a Action) error {
	return q.PushDraining(ctx, a, nil, nil)
}

// PushDraining is Push for the producer that also consumes the dispatcher's
// outcomes: while the queue is full, each outcome arriving on results is
// handed to drain, so neither side blocks on the other.
func (q *Queue) PushDraining(ctx context.Context, a Action, results <-chan Outcome, drain func(Outcome)) error {
	for {
		select {
		case q.Ch <- a:
			return nil
		case out := <-results:
			drain(out)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (q *Queue) Pop(ctx context.Context) (Action, bool) {
	select {
	case a := <-q.Ch:
		return a, true
	case <-ctx.Done():
		return Action{}, false
	}
}

func (q *Queue) Len() int { return len(q.Ch) }
func (q *Queue) Cap() int { return cap(q.Ch) }
