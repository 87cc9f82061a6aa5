package watcher

import (
	"errors"

	"github.com/fsnotify/fsnotify"
)

// fsnotifySource adapts fsnotify to Source.
type fsnotifySource struct {
	w      *fsnotify.Watcher
	events chan Event
	done   chan struct{}
}

func newFsnotifySource() (*fsnotifySource, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	s := &fsnotifySource{
		w:      w,
		events: make(chan Event),
		done:   make(chan struct{}),
	}
	go s.translate()
	return s, nil
}

func (s *fsnotifySource) translate() {
	defer close(s.events)
	for {
		select {
		case <-s.done:
			return
		case ev, ok := <-s.w.Events:
			if !ok {
				return
			}

			var op Op
			switch {
			case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
				op = Replaced
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
				op = Modified
			default:
				continue // chmod
			}

			select {
			case s.events <- Event{Path: token(ev.Name), Op: op}:
			case <-s.done:
				return
			}
		}
	}
}

func (s *fsnotifySource) Add(path string) error { return s.w.Add(token(path)) }

// Remove tolerates a watch the kernel already dropped.
func (s *fsnotifySource) Remove(path string) error {
	err := s.w.Remove(token(path))
	if errors.Is(err, fsnotify.ErrNonExistentWatch) {
		return nil
	}
	return err
}

func (s *fsnotifySource) Events() <-chan Event { return s.events }
func (s *fsnotifySource) Errors() <-chan error { return s.w.Errors }

func (s *fsnotifySource) Close() error {
	close(s.done)
	return s.w.Close()
}
