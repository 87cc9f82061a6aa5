package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/raoulx24/irotate/internal/address"
	"github.com/raoulx24/irotate/internal/logging"
	"github.com/raoulx24/irotate/internal/rotation"
)

type fakeRotator struct {
	mu    sync.Mutex
	calls int
	err   error
	panic bool
	block chan struct{}
}

func (f *fakeRotator) RotateNow(ctx context.Context) (int, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.panic {
		panic("boom")
	}
	return f.calls, f.err
}

func waitOutcome(t *testing.T, d *Dispatcher) Outcome {
	t.Helper()
	select {
	case out := <-d.Results():
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome")
		return Outcome{}
	}
}

func TestDispatcherFIFO(t *testing.T) {
	q := NewQueue(3)
	r := &fakeRotator{}
	d := New(r, q, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kinds := []Kind{RotateFromTimeout, Rotate, RotateFromSchedule}
	for _, k := range kinds {
		if err := q.Push(ctx, NewAction(k)); err != nil {
			t.Fatal(err)
		}
	}
	go d.Run(ctx)

	for i, want := range kinds {
		out := waitOutcome(t, d)
		if out.Err != nil {
			t.Fatalf("outcome %d: %v", i, out.Err)
		}
		if out.Action.Kind != want {
			t.Fatalf("outcome %d kind = %v, want %v", i, out.Action.Kind, want)
		}
		if out.Index != i+1 {
			t.Fatalf("outcome %d index = %d, want %d", i, out.Index, i+1)
		}
	}
}

func TestDispatcherReportsErrors(t *testing.T) {
	q := NewQueue(1)
	r := &fakeRotator{err: os.ErrPermission}
	d := New(r, q, logging.Nop())

	out := d.Handle(context.Background(), NewAction(Rotate))
	if !errors.Is(out.Err, os.ErrPermission) {
		t.Fatalf("err = %v, want ErrPermission", out.Err)
	}
}

func TestDispatcherRecoversPanic(t *testing.T) {
	q := NewQueue(1)
	d := New(&fakeRotator{panic: true}, q, logging.Nop())

	out := d.Handle(context.Background(), NewAction(Rotate))
	if out.Err == nil {
		t.Fatal("panic was not turned into an error")
	}
}

func TestDispatcherDoesNotDropWhileBusy(t *testing.T) {
	q := NewQueue(3)
	r := &fakeRotator{block: make(chan struct{})}
	d := New(r, q, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	for i := 0; i < 4; i++ {
		if err := q.Push(ctx, NewAction(Rotate)); err != nil {
			t.Fatal(err)
		}
	}
	close(r.block)

	for i := 0; i < 4; i++ {
		waitOutcome(t, d)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls != 4 {
		t.Fatalf("calls = %d, want 4", r.calls)
	}
}

func TestDispatcherRotatesFiles(t *testing.T) {
	dir := t.TempDir()
	addr, err := address.Derive(filepath.Join(dir, "a.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(addr.Path(), []byte("01234567890123456789"), 0o644); err != nil {
		t.Fatal(err)
	}

	engine := rotation.New(addr, 0, logging.Nop(), nil)
	over, err := engine.SizeExceeds(10)
	if err != nil || !over {
		t.Fatalf("SizeExceeds = %v, %v", over, err)
	}

	d := New(engine, NewQueue(3), logging.Nop())
	out := d.Handle(context.Background(), NewAction(Rotate))
	if out.Err != nil || out.Index != 1 {
		t.Fatalf("outcome = %+v", out)
	}

	b, err := os.ReadFile(filepath.Join(dir, "a.1.txt"))
	if err != nil || string(b) != "01234567890123456789" {
		t.Fatalf("a.1.txt = %q, %v", b, err)
	}
	info, err := os.Stat(filepath.Join(dir, "a.txt"))
	if err != nil || info.Size() != 0 {
		t.Fatalf("a.txt: %v, %v", info, err)
	}
}
