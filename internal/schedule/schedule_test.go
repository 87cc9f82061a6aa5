package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/raoulx24/irotate/internal/logging"
)

func TestValidate(t *testing.T) {
	for _, expr := range []string{"", "0 * * * *", "@hourly", "@every 10m", "*/5 2 * * 1-5"} {
		if err := Validate(expr); err != nil {
			t.Fatalf("Validate(%q): %v", expr, err)
		}
	}
	for _, expr := range []string{"* * *", "61 * * * *", "@fortnightly", "0 0 * * * *"} {
		if err := Validate(expr); err == nil {
			t.Fatalf("Validate(%q) accepted", expr)
		}
	}
}

func TestNewRejectsBadExpression(t *testing.T) {
	if _, err := New("not cron", func() {}, logging.Nop()); err == nil {
		t.Fatal("New accepted a bad expression")
	}
}

func TestRunFires(t *testing.T) {
	var fired atomic.Int32
	s, err := New("@every 1s", func() { fired.Add(1) }, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.Now().Add(3 * time.Second)
	for fired.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("schedule never fired")
		}
		time.Sleep(20 * time.Millisecond)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestDisabledRunWaitsForCancel(t *testing.T) {
	s, err := New("", func() { t.Error("disabled schedule fired") }, logging.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if s.Next() != "" {
		t.Fatalf("Next = %q for disabled schedule", s.Next())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatal(err)
	}
}
