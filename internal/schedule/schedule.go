// Package schedule forces rotations on a cron expression.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/irotate/internal/logging"
)

// Validate reports whether expr is a standard five-field cron expression or
// a descriptor such as @hourly. The empty expression is valid and disables
// scheduling.
func Validate(expr string) error {
	if expr == "" {
		return nil
	}
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return nil
}

// Scheduler calls fire on every tick of its expression.
type Scheduler struct {
	expr string
	fire func()
	log  logging.Logger

	c  *cron.Cron
	id cron.EntryID
}

func New(expr string, fire func(), log logging.Logger) (*Scheduler, error) {
	s := &Scheduler{expr: expr, fire: fire, log: log, c: cron.New()}
	if expr == "" {
		return s, nil
	}

	var err error
	if s.id, err = s.c.AddFunc(expr, s.tick); err != nil {
		return nil, fmt.Errorf("failed to setup schedule, caused by %w", err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	s.log.Debug("scheduled rotation due", "schedule", s.expr)
	s.fire()
}

// Next returns the next firing time in RFC 3339, or "" when disabled or not
// yet running.
func (s *Scheduler) Next() string {
	if s.expr == "" {
		return ""
	}
	next := s.c.Entry(s.id).Next
	if next.IsZero() {
		return ""
	}
	return next.Format(time.RFC3339)
}

// Run starts the cron runner and blocks until ctx is done, then waits for a
// running tick to return.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.expr == "" {
		<-ctx.Done()
		return nil
	}

	s.c.Start()
	s.log.Info("schedule started", "schedule", s.expr, "next", s.Next())

	<-ctx.Done()
	<-s.c.Stop().Done()
	return nil
}
