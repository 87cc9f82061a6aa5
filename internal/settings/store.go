package settings

import "sync"

// Store holds the current Settings for concurrent readers. The lock is held
// only to copy or swap the value, never while reading the file.
type Store struct {
	mu   sync.RWMutex
	path string
	cur  Settings
}

// NewStore loads path once. Any error here is fatal for the caller.
func NewStore(path string) (*Store, error) {
	s, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, cur: s}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) Replace(next Settings) {
	s.mu.Lock()
	s.cur = next
	s.mu.Unlock()
}

// Reload re-reads the file. On error the previous settings stay in effect
// and are returned with the error.
func (s *Store) Reload() (Settings, error) {
	next, err := Load(s.path)
	if err != nil {
		return s.Get(), err
	}
	s.Replace(next)
	return next, nil
}
