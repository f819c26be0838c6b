package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNotDirectory is returned when the scan root is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Options configures a Scanner.
type Options struct {
	// Capacity is the filesystem capacity used as percentage denominator.
	// Nil uses the snapshot's own total.
	Capacity *uint64
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// Scanner aggregates the disk usage of a directory's immediate children.
// It keeps no state between scans.
type Scanner struct {
	opt  Options
	log  *zap.Logger
	stat func(name string) (fs.FileInfo, error)
	walk func(root string) iter.Seq[Sample]
}

// New creates a Scanner with the given options.
func New(opt Options) *Scanner {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Scanner{
		opt:  opt,
		log:  log,
		stat: os.Lstat,
		walk: Walk,
	}
}

// Children lists the immediate children of root in name order.
func Children(root string) ([]Child, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading directory %q: %w", root, err)
	}

	children := make([]Child, 0, len(entries))
	for _, e := range entries {
		children = append(children, Child{
			Path:  filepath.Join(root, e.Name()),
			IsDir: e.IsDir(),
		})
	}

	return children, nil
}

// Aggregate computes the usage of one child. It never fails: unreadable
// entries are counted as zero bytes and mark the report as degraded.
func (s *Scanner) Aggregate(child Child) SizeReport {
	report := newReport(child)

	if !child.IsDir {
		info, err := s.stat(child.Path)
		if err != nil {
			s.log.Debug("unreadable entry", zap.String("path", child.Path), zap.Error(err))
			report.degrade()

			return report
		}

		report.observe(onDisk(info), info.ModTime())

		return report
	}

	for sample := range s.walk(child.Path) {
		if sample.Degraded() {
			s.log.Debug("unreadable entry", zap.String("path", sample.Path), zap.Error(sample.Err))
			report.degrade()

			continue
		}

		report.observe(sample.Bytes, sample.Modified)
	}

	return report
}

// Scan aggregates every immediate child of root concurrently and returns the
// sorted snapshot. One goroutine is started per child and all of them are
// joined before the snapshot is assembled.
//
// ctx only bounds progress reporting; a started scan always runs to completion.
// hook, if not nil, is called periodically and once more after all children
// have been processed.
func (s *Scanner) Scan(ctx context.Context, root string, hook ProgressFunc) (*Snapshot, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	if info, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("accessing path %q: %w", root, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("path %q: %w", root, ErrNotDirectory)
	}

	children, err := Children(root)
	if err != nil {
		return nil, err
	}

	s.log.Debug("scanning", zap.String("root", root), zap.Int("children", len(children)))

	start := time.Now()

	progress := &Progress{}
	progress.total.Store(int64(len(children)))

	stop := startProgressReporter(ctx, progress, hook, s.opt.ProgressInterval)

	// Each worker writes only its own slot; results are read after Wait.
	reports := make([]SizeReport, len(children))

	var group errgroup.Group

	for i, child := range children {
		group.Go(func() error {
			reports[i] = s.Aggregate(child)
			progress.done.Add(1)

			s.log.Debug("aggregated",
				zap.String("path", child.Path),
				zap.Uint64("bytes", reports[i].Bytes),
				zap.Stringer("status", reports[i].Status),
			)

			return nil
		})
	}

	_ = group.Wait() // workers never return errors

	stop()

	if hook != nil {
		hook(progress.Done(), progress.Total())
	}

	snap := NewSnapshot(root, reports, s.opt.Capacity)
	snap.Elapsed = time.Since(start)

	s.log.Debug("scan complete",
		zap.String("root", root),
		zap.Uint64("total", snap.Total),
		zap.Duration("elapsed", snap.Elapsed),
	)

	return snap, nil
}
