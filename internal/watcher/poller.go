package watcher

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/raoulx24/irotate/internal/fs"
)

// pollSource stats every subscribed path on a fixed interval and reports
// size, mtime and identity changes. It serves filesystems where fsnotify
// does not deliver events.
type pollSource struct {
	fs       fs.FS
	interval time.Duration

	mu    sync.Mutex
	paths map[string]fs.FileInfo

	events chan Event
	errs   chan error
	cancel context.CancelFunc
}

func newPollSource(filesystem fs.FS, interval time.Duration) *pollSource {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &pollSource{
		fs:       filesystem,
		interval: interval,
		paths:    map[string]fs.FileInfo{},
		events:   make(chan Event),
		errs:     make(chan error),
		cancel:   cancel,
	}
	go p.run(ctx)
	return p
}

func (p *pollSource) Add(path string) error {
	info, err := p.fs.Stat(path)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.paths[token(path)] = info
	p.mu.Unlock()
	return nil
}

func (p *pollSource) Remove(path string) error {
	p.mu.Lock()
	delete(p.paths, token(path))
	p.mu.Unlock()
	return nil
}

func (p *pollSource) Events() <-chan Event { return p.events }
func (p *pollSource) Errors() <-chan error { return p.errs }

func (p *pollSource) Close() error {
	p.cancel()
	return nil
}

func (p *pollSource) run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, ev := range p.scan() {
				select {
				case p.events <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// scan compares each path against its last observation.
func (p *pollSource) scan() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []Event
	for path, last := range p.paths {
		now, err := p.fs.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				// the subscription is gone with the file, like an inotify watch
				delete(p.paths, path)
				out = append(out, Event{Path: path, Op: Replaced})
			}
			continue
		}

		switch {
		case !now.SameFile(last):
			delete(p.paths, path)
			out = append(out, Event{Path: path, Op: Replaced})
		case now.Size != last.Size || now.MTime.After(last.MTime):
			p.paths[path] = now
			out = append(out, Event{Path: path, Op: Modified})
		}
	}
	return out
}
