package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

// A rename that hits one of these is retried with exponential backoff,
// starting at retryBase, for up to maxRetries attempts in total. Any other
// error fails the rename on the spot.
var transientErrnos = []syscall.Errno{syscall.EAGAIN, syscall.EBUSY, syscall.ETIMEDOUT}

const maxRetries = 5

var retryBase = 100 * time.Millisecond

func isTransient(err error) bool {
	for _, errno := range transientErrnos {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

func renameWithRetry(ctx context.Context, oldPath, newPath string) error {
	return retry(ctx, "rename "+oldPath, func() error {
		return os.Rename(oldPath, newPath)
	})
}

// retry runs fn until it succeeds, fails permanently or runs out of attempts.
func retry(ctx context.Context, op string, fn func() error) error {
	wait := retryBase
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		switch {
		case err == nil:
			return nil
		case !isTransient(err):
			return fmt.Errorf("%s: %w", op, err)
		case attempt == maxRetries:
			return fmt.Errorf("%s: giving up after %d attempts: %w", op, attempt, err)
		}

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}
