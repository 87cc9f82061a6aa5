// Package fs defines the filesystem abstraction used by irotate.
// It provides the FS interface and the FileInfo type shared across the system.
package fs

import (
	"context"
	"time"
)

type FileInfo struct {
	Path  string
	Size  int64
	MTime time.Time
	Inode uint64
}

// SameFile reports whether two observations refer to the same underlying file.
// Without inode support (Inode == 0) it cannot tell and assumes they do.
func (fi FileInfo) SameFile(other FileInfo) bool {
	if fi.Inode == 0 || other.Inode == 0 {
		return true
	}
	return fi.Inode == other.Inode
}

type FS interface {
	Stat(path string) (FileInfo, error)
	Exists(path string) (bool, error)
	Rename(ctx context.Context, oldPath, newPath string) error
	Touch(path string) error
	Remove(path string) error
}
