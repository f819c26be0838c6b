package scan

import (
	"sort"
	"time"
)

// Class is the size classification of a report relative to the thresholds.
type Class int

const (
	// ClassNormal is at or below the yellow threshold.
	ClassNormal Class = iota
	// ClassElevated is above the yellow threshold.
	ClassElevated
	// ClassCritical is above the red threshold.
	ClassCritical
)

// String returns the lowercase name of the class.
func (c Class) String() string {
	switch c {
	case ClassCritical:
		return "critical"
	case ClassElevated:
		return "elevated"
	default:
		return "normal"
	}
}

// Thresholds are the byte limits used for classification.
type Thresholds struct {
	// Red is the limit above which a report is critical.
	Red uint64 `json:"red"`
	// Yellow is the limit above which a report is elevated.
	Yellow uint64 `json:"yellow"`
}

// Classify returns the class of a size.
func (t Thresholds) Classify(bytes uint64) Class {
	switch {
	case bytes > t.Red:
		return ClassCritical
	case bytes > t.Yellow:
		return ClassElevated
	default:
		return ClassNormal
	}
}

// Snapshot is the sorted result of one scan.
type Snapshot struct {
	// Root is the scanned directory.
	Root string `json:"root"`
	// Reports is ordered by size, largest first.
	Reports []SizeReport `json:"reports"`
	// Total is the sum of all report sizes.
	Total uint64 `json:"total"`
	// Denominator is the reference size for percentages.
	Denominator uint64 `json:"denominator"`
	// UsesCapacity indicates that Denominator is the filesystem capacity.
	UsesCapacity bool `json:"uses_capacity"`
	// Thresholds holds the classification limits.
	Thresholds Thresholds `json:"thresholds"`
	// Elapsed is the time the scan took.
	Elapsed time.Duration `json:"elapsed"`
}

// NewSnapshot sorts reports by size and derives the denominator and thresholds.
// A nil capacity selects the snapshot's own total as denominator.
//
// Reports with equal size keep their relative order.
func NewSnapshot(root string, reports []SizeReport, capacity *uint64) *Snapshot {
	sort.SliceStable(reports, func(i, j int) bool {
		return reports[i].Bytes > reports[j].Bytes
	})

	var total uint64
	for _, r := range reports {
		total += r.Bytes
	}

	snap := &Snapshot{
		Root:    root,
		Reports: reports,
		Total:   total,
	}

	if capacity != nil {
		snap.UsesCapacity = true
		snap.Denominator = *capacity
		// 1% and 0.1% of the filesystem
		snap.Thresholds = Thresholds{Red: *capacity / 100, Yellow: *capacity / 1000}
	} else {
		snap.Denominator = total
		// 10% and 1% of the current view
		snap.Thresholds = Thresholds{Red: total / 10, Yellow: total / 100}
	}

	return snap
}

// Percent returns the share of bytes in the denominator, in percent.
// It is zero when the denominator is zero and is not clamped at 100.
func (s *Snapshot) Percent(bytes uint64) float64 {
	if s.Denominator == 0 {
		return 0
	}

	return 100.0 * float64(bytes) / float64(s.Denominator)
}

// Classify returns the class of a size under the snapshot's thresholds.
func (s *Snapshot) Classify(bytes uint64) Class {
	return s.Thresholds.Classify(bytes)
}
