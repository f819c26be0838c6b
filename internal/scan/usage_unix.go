//go:build unix

package scan

import (
	"io/fs"
	"syscall"
)

// blockSize is the unit of st_blocks, fixed at 512 bytes by POSIX.
const blockSize = 512

// onDisk returns the bytes allocated for the file described by info.
// Falls back to the logical size when no stat_t is available.
func onDisk(info fs.FileInfo) uint64 {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return logicalSize(info)
	}

	return uint64(st.Blocks) * blockSize //nolint:gosec // Blocks is never negative
}
