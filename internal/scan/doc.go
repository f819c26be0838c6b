// Package scan computes per-child disk usage for a single directory.
//
// It lists the immediate children of a directory, walks every child subtree
// concurrently using fastwalk, sums on-disk allocation, tracks the latest
// modification time, and assembles a sorted Snapshot with the percentage
// denominator and color thresholds derived from it.
package scan
