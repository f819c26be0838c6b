// Package capacity resolves the total size of the filesystem holding a path.
package capacity

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// ErrNoMount is returned when no mount point contains the path.
var ErrNoMount = errors.New("could not determine disk space for the given path")

// Resolver looks up filesystem capacity from the mounted partitions.
type Resolver struct {
	partitions func(ctx context.Context, all bool) ([]disk.PartitionStat, error)
	usage      func(ctx context.Context, path string) (*disk.UsageStat, error)
}

// New creates a Resolver backed by the host's partition table.
func New() *Resolver {
	return &Resolver{
		partitions: disk.PartitionsWithContext,
		usage:      disk.UsageWithContext,
	}
}

// Lookup returns the total capacity in bytes of the filesystem that holds path.
// The mount point is the longest one that contains the canonical path.
func (r *Resolver) Lookup(ctx context.Context, path string) (uint64, error) {
	canonical, err := canonicalize(path)
	if err != nil {
		return 0, err
	}

	partitions, err := r.partitions(ctx, true)
	if err != nil {
		return 0, fmt.Errorf("listing partitions: %w", err)
	}

	mounts := make([]string, 0, len(partitions))
	for _, p := range partitions {
		mounts = append(mounts, p.Mountpoint)
	}

	mount, ok := bestMount(canonical, mounts)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoMount, canonical)
	}

	usage, err := r.usage(ctx, mount)
	if err != nil {
		return 0, fmt.Errorf("reading usage of %q: %w", mount, err)
	}

	return usage.Total, nil
}

// Lookup resolves capacity with a default Resolver.
func Lookup(ctx context.Context, path string) (uint64, error) {
	return New().Lookup(ctx, path)
}

func canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", abs, err)
	}

	return resolved, nil
}

// bestMount returns the longest mount point containing path.
func bestMount(path string, mounts []string) (string, bool) {
	var (
		best  string
		found bool
	)

	for _, m := range mounts {
		if m == "" || !contains(m, path) {
			continue
		}

		if !found || len(m) > len(best) {
			best, found = m, true
		}
	}

	return best, found
}

// contains reports whether path equals mount or lies below it, comparing
// whole path components.
func contains(mount, path string) bool {
	mount = filepath.Clean(mount)
	path = filepath.Clean(path)

	if mount == path {
		return true
	}

	if !strings.HasSuffix(mount, string(filepath.Separator)) {
		mount += string(filepath.Separator)
	}

	return strings.HasPrefix(path, mount)
}
