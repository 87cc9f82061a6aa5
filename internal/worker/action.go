package worker

import (
	"fmt"
	"time"
)

// Kind tells why a rotation was requested.
type Kind int

const (
	// Rotate: the target reached the size threshold.
	Rotate Kind = iota + 1
	// RotateFromTimeout: the sleep interval elapsed without a size-triggered rotation.
	RotateFromTimeout
	// RotateFromSchedule: the cron schedule fired.
	RotateFromSchedule
)

func (k Kind) String() string {
	switch k {
	case Rotate:
		return "rotate"
	case RotateFromTimeout:
		return "rotate_from_timeout"
	case RotateFromSchedule:
		return "rotate_from_schedule"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Action is a rotation request queued from detection to execution.
type Action struct {
	Kind   Kind
	Queued time.Time
}

func NewAction(k Kind) Action {
	return Action{Kind: k, Queued: time.Now()}
}

// Outcome reports a handled Action back to the producer.
type Outcome struct {
	Action   Action
	Index    int // highest backup index after the rotation
	Err      error
	Duration time.Duration
}
