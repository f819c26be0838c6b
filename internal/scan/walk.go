package scan

import (
	"errors"
	"io/fs"
	"iter"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
)

// Sample is a single regular file produced by Walk.
type Sample struct {
	// Path is the file path.
	Path string
	// Bytes is the on-disk allocation in bytes.
	Bytes uint64
	// Modified is the modification time.
	Modified time.Time
	// Err is set when the entry could not be read. Bytes and Modified are zero then.
	Err error
}

// Degraded reports whether the sample stands for an unreadable entry.
func (s Sample) Degraded() bool {
	return s.Err != nil
}

// errStopWalk aborts fastwalk once the consumer stops ranging.
var errStopWalk = errors.New("walk stopped by consumer")

// Walk returns a sequence of every regular file reachable from root.
//
// Symlinks are not followed. Entries that cannot be read are yielded as
// degraded samples instead of ending the walk. Order is unspecified and the
// sequence performs a fresh traversal every time it is ranged over.
func Walk(root string) iter.Seq[Sample] {
	return func(yield func(Sample) bool) {
		var (
			mu      sync.Mutex
			stopped bool
		)

		// fastwalk invokes the callback from its own goroutines; emit keeps
		// calls to yield serialized and stops after the consumer breaks.
		emit := func(sample Sample) error {
			mu.Lock()
			defer mu.Unlock()

			if stopped {
				return errStopWalk
			}

			if !yield(sample) {
				stopped = true

				return errStopWalk
			}

			return nil
		}

		conf := &fastwalk.Config{
			Follow:     false, // Don't follow symlinks
			NumWorkers: 1,
		}

		//nolint:varnamelen // d is standard for DirEntry
		err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return emit(Sample{Path: path, Err: err})
			}

			if d.IsDir() || !d.Type().IsRegular() {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				return emit(Sample{Path: path, Err: err})
			}

			return emit(Sample{Path: path, Bytes: onDisk(info), Modified: info.ModTime()})
		})

		if err != nil && !errors.Is(err, errStopWalk) {
			_ = emit(Sample{Path: root, Err: err})
		}
	}
}

// logicalSize returns the apparent length of the file, clamped at zero.
func logicalSize(info fs.FileInfo) uint64 {
	if info.Size() < 0 {
		return 0
	}

	return uint64(info.Size())
}
