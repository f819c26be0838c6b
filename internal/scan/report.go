package scan

import (
	"fmt"
	"path/filepath"
	"time"
)

// Status tells whether a SizeReport is complete.
type Status int

const (
	// StatusOK means every entry under the child was read.
	StatusOK Status = iota
	// StatusDegraded means at least one entry was unreadable and counted as zero.
	StatusDegraded
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDegraded:
		return "degraded"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Child is one immediate child of the scanned directory.
type Child struct {
	// Path is the absolute path of the child.
	Path string
	// IsDir indicates whether the child is a directory.
	IsDir bool
}

// SizeReport is the aggregated usage of one child.
type SizeReport struct {
	// Path is the absolute path of the child.
	Path string `json:"path"`
	// Name is the base name of the child.
	Name string `json:"name"`
	// IsDir indicates whether the child is a directory.
	IsDir bool `json:"is_dir"`
	// Bytes is the total on-disk size.
	Bytes uint64 `json:"bytes"`
	// Modified is the latest modification time; the zero value means unknown.
	Modified time.Time `json:"modified,omitzero"`
	// Status is StatusDegraded when some entries could not be read.
	Status Status `json:"status"`
	// Errors is the number of unreadable entries absorbed into the report.
	Errors int `json:"errors,omitempty"`
}

// HasModified reports whether a modification time could be read.
func (r SizeReport) HasModified() bool {
	return !r.Modified.IsZero()
}

func newReport(child Child) SizeReport {
	return SizeReport{
		Path:  child.Path,
		Name:  filepath.Base(child.Path),
		IsDir: child.IsDir,
	}
}

func (r *SizeReport) degrade() {
	r.Status = StatusDegraded
	r.Errors++
}

// observe folds one readable sample into the report.
func (r *SizeReport) observe(bytes uint64, modified time.Time) {
	r.Bytes += bytes

	if modified.After(r.Modified) {
		r.Modified = modified
	}
}
