// Package rotation implements numbered-backup rotation of a single file.
//
// A rotation shifts every stem.N.suffix to stem.N+1.suffix, moves the base
// file to stem.1.suffix and recreates an empty base file.
package rotation

import (
	"context"
	"errors"
	"fmt"

	"github.com/raoulx24/irotate/internal/address"
	"github.com/raoulx24/irotate/internal/fs"
	"github.com/raoulx24/irotate/internal/logging"
)

// DefaultProbeLimit caps how far HighestBackupIndex probes.
const DefaultProbeLimit = 100_000

// ErrProbeLimit means more backups exist than the probe limit allows.
var ErrProbeLimit = errors.New("backup probe limit exceeded")

// Engine rotates the file at one address.
type Engine struct {
	addr  address.Address
	limit int
	fs    fs.FS
	log   logging.Logger
}

// New creates an engine. A limit below 1 selects DefaultProbeLimit and a nil
// filesystem selects the OS one.
func New(addr address.Address, limit int, log logging.Logger, filesystem fs.FS) *Engine {
	if limit < 1 {
		limit = DefaultProbeLimit
	}
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Engine{
		addr:  addr,
		limit: limit,
		fs:    filesystem,
		log:   log,
	}
}

func (e *Engine) Address() address.Address { return e.addr }

// HighestBackupIndex returns the last N such that stem.1..N.suffix all exist,
// or 0 when stem.1.suffix is absent.
func (e *Engine) HighestBackupIndex() (int, error) {
	for n := 1; n <= e.limit+1; n++ {
		ok, err := e.fs.Exists(e.addr.BackupPath(n))
		if err != nil {
			return 0, fmt.Errorf("probing backup %d: %w", n, err)
		}
		if !ok {
			return n - 1, nil
		}
	}
	return 0, fmt.Errorf("%w: more than %d backups of %s", ErrProbeLimit, e.limit, e.addr)
}

// Rotate applies the cascade starting at backup index from (0 = no backups).
// A failed step aborts the rotation and leaves the files as they are; nothing
// is rolled back.
func (e *Engine) Rotate(ctx context.Context, from int) error {
	q, err := e.plan(from)
	if err != nil {
		return err
	}

	total := q.Length()
	for i := 1; q.Length() > 0; i++ {
		step, err := q.Dequeue()
		if err != nil {
			return fmt.Errorf("reading rotation plan: %w", err)
		}

		e.log.Debug("rotation step", "step", i, "of", total, "op", step.Op.String(), "from", step.From, "to", step.To)

		if err := e.apply(ctx, step); err != nil {
			return fmt.Errorf("rotation step %d/%d (%s): %w", i, total, step, err)
		}
	}
	return nil
}

// RotateNow probes the highest backup and rotates from there. It returns the
// highest index after the rotation.
func (e *Engine) RotateNow(ctx context.Context) (int, error) {
	from, err := e.HighestBackupIndex()
	if err != nil {
		return 0, err
	}
	if err := e.Rotate(ctx, from); err != nil {
		return 0, err
	}
	if from == e.limit {
		return from, nil
	}
	return from + 1, nil
}

func (e *Engine) apply(ctx context.Context, s Step) error {
	switch s.Op {
	case OpRemove:
		return e.fs.Remove(s.From)
	case OpRename:
		return e.fs.Rename(ctx, s.From, s.To)
	case OpCreate:
		return e.fs.Touch(s.From)
	default:
		return fmt.Errorf("unknown step %s", s.Op)
	}
}

// SizeExceeds reports whether the base file is at least threshold bytes.
// A vanished base file yields an error wrapping os.ErrNotExist.
func (e *Engine) SizeExceeds(threshold int64) (bool, error) {
	info, err := e.fs.Stat(e.addr.Path())
	if err != nil {
		return false, fmt.Errorf("size check: %w", err)
	}
	return info.Size >= threshold, nil
}
