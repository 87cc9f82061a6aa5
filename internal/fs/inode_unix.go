//go:build unix

package fs

import (
	"os"
	"syscall"
)

// inodeOf lets FileInfo.SameFile tell a rotated-away target from its
// replacement.
func inodeOf(info os.FileInfo) uint64 {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return uint64(st.Ino)
	}
	return 0
}
