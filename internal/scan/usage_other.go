//go:build !unix

package scan

import "io/fs"

// onDisk returns the logical size; allocation is not exposed on this platform.
func onDisk(info fs.FileInfo) uint64 {
	return logicalSize(info)
}
