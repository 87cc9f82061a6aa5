// Package fsprobe checks whether fsnotify works reliably for a directory.
// It writes to a scratch file under a file watch to ensure events are delivered.
package fsprobe

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Result reports whether fsnotify is usable and why.
type Result struct {
	FsnotifySupported bool   // true if events are delivered
	Reason            string // explanation when unsupported
}

// Timeout bounds how long Probe waits for the write event.
var Timeout = 200 * time.Millisecond

// Probe tests whether fsnotify reports writes to a watched file in dir.
func Probe(dir string) Result {
	st, err := os.Stat(dir)
	if err != nil {
		return Result{false, fmt.Sprintf("stat failed: %v", err)}
	}
	if !st.IsDir() {
		return Result{false, "not a directory"}
	}

	tmp := filepath.Join(dir, ".irotate_probe")
	f, err := os.Create(tmp)
	if err != nil {
		return Result{false, fmt.Sprintf("cannot create probe file: %v", err)}
	}
	defer os.Remove(tmp)
	defer f.Close()

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return Result{false, fmt.Sprintf("fsnotify unavailable: %v", err)}
	}
	defer w.Close()

	if err := w.Add(tmp); err != nil {
		return Result{false, fmt.Sprintf("cannot watch probe file: %v", err)}
	}

	if _, err := f.WriteString("probe\n"); err != nil {
		return Result{false, fmt.Sprintf("write failed: %v", err)}
	}

	timeout := time.After(Timeout)
	for {
		select {
		case ev := <-w.Events:
			if ev.Has(fsnotify.Write) {
				return Result{true, ""}
			}
		case err := <-w.Errors:
			return Result{false, fmt.Sprintf("fsnotify error: %v", err)}
		case <-timeout:
			return Result{false, "no events received (write not reported)"}
		}
	}
}
