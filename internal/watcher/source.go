package watcher

import "path/filepath"

// Op is the class of change the loop cares about.
type Op int

const (
	// Modified: the file's content changed.
	Modified Op = iota + 1
	// Replaced: the watched file was renamed away or removed, so the
	// subscription no longer follows the path.
	Replaced
)

func (o Op) String() string {
	switch o {
	case Modified:
		return "modified"
	case Replaced:
		return "replaced"
	default:
		return "unknown"
	}
}

// Event is a change on a subscribed path. Path is the cleaned path given to
// Add and identifies the subscription.
type Event struct {
	Path string
	Op   Op
}

// Source delivers change notifications for individual files.
type Source interface {
	Add(path string) error
	Remove(path string) error
	Events() <-chan Event
	Errors() <-chan error
	Close() error
}

func token(path string) string { return filepath.Clean(path) }
