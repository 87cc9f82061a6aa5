package rotation

import (
	"fmt"

	"github.com/trviph/collection"
)

// Op is the kind of filesystem mutation a Step performs.
type Op int

const (
	OpRemove Op = iota
	OpRename
	OpCreate
)

func (o Op) String() string {
	switch o {
	case OpRemove:
		return "remove"
	case OpRename:
		return "rename"
	case OpCreate:
		return "create"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Step is one mutation of a rotation. To is empty for remove and create.
type Step struct {
	Op   Op
	From string
	To   string
}

func (s Step) String() string {
	if s.To == "" {
		return fmt.Sprintf("%s %s", s.Op, s.From)
	}
	return fmt.Sprintf("%s %s -> %s", s.Op, s.From, s.To)
}

// Plan lists the steps Rotate(from) would apply, in order.
func (e *Engine) Plan(from int) ([]Step, error) {
	q, err := e.plan(from)
	if err != nil {
		return nil, err
	}

	steps := make([]Step, 0, q.Length())
	for q.Length() > 0 {
		s, err := q.Dequeue()
		if err != nil {
			return nil, fmt.Errorf("draining rotation plan: %w", err)
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// plan builds the cascade as a FIFO worklist. Renames run from the highest
// index down so every target is free when its rename executes: the target of
// k -> k+1 is either the gap above the old highest or was vacated by the
// previous step.
func (e *Engine) plan(from int) (*collection.List[Step], error) {
	if from < 0 || from > e.limit {
		return nil, fmt.Errorf("backup index %d outside 0..%d", from, e.limit)
	}

	q := collection.NewList[Step]()

	top := from
	if from == e.limit {
		// stem.limit+1 would exceed the cap; the oldest backup drops out.
		q.Append(Step{Op: OpRemove, From: e.addr.BackupPath(from)})
		top = from - 1
	}

	for k := top; k >= 1; k-- {
		q.Append(Step{Op: OpRename, From: e.addr.BackupPath(k), To: e.addr.BackupPath(k + 1)})
	}

	q.Append(Step{Op: OpRename, From: e.addr.Path(), To: e.addr.BackupPath(1)})
	q.Append(Step{Op: OpCreate, From: e.addr.Path()})

	return q, nil
}
