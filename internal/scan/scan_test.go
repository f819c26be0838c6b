package scan

import (
	"context"
	"errors"
	"io/fs"
	"iter"
	"math"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// fakeInfo is a FileInfo without a stat_t, so onDisk reports its logical size.
type fakeInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return f.modTime }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

func writeFile(t *testing.T, path string, size int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func diskSize(t *testing.T, path string) uint64 {
	t.Helper()

	info, err := os.Lstat(path)
	if err != nil {
		t.Fatal(err)
	}

	return onDisk(info)
}

func reportByName(t *testing.T, snap *Snapshot, name string) SizeReport {
	t.Helper()

	for _, r := range snap.Reports {
		if r.Name == name {
			return r
		}
	}

	t.Fatalf("no report for %q", name)

	return SizeReport{}
}

func TestScanAggregatesChildren(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "top.bin"), 10_000)
	writeFile(t, filepath.Join(root, "dir", "a.bin"), 5_000)
	writeFile(t, filepath.Join(root, "dir", "nested", "b.bin"), 70_000)

	snap, err := New(Options{}).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if len(snap.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(snap.Reports))
	}

	wantDir := diskSize(t, filepath.Join(root, "dir", "a.bin")) +
		diskSize(t, filepath.Join(root, "dir", "nested", "b.bin"))

	dir := reportByName(t, snap, "dir")
	if !dir.IsDir {
		t.Error("dir should be reported as a directory")
	}

	if dir.Bytes != wantDir {
		t.Errorf("dir bytes = %d, want %d", dir.Bytes, wantDir)
	}

	if dir.Status != StatusOK {
		t.Errorf("dir status = %v, want ok", dir.Status)
	}

	top := reportByName(t, snap, "top.bin")
	if top.Bytes != diskSize(t, filepath.Join(root, "top.bin")) {
		t.Errorf("top.bin bytes = %d", top.Bytes)
	}

	if snap.Total != dir.Bytes+top.Bytes {
		t.Errorf("total = %d, want %d", snap.Total, dir.Bytes+top.Bytes)
	}

	if snap.Root != root {
		t.Errorf("root = %q, want %q", snap.Root, root)
	}
}

func TestScanLatestModified(t *testing.T) {
	root := t.TempDir()

	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

	writeFile(t, filepath.Join(root, "dir", "old"), 10)
	writeFile(t, filepath.Join(root, "dir", "sub", "new"), 10)

	if err := os.Chtimes(filepath.Join(root, "dir", "old"), older, older); err != nil {
		t.Fatal(err)
	}

	if err := os.Chtimes(filepath.Join(root, "dir", "sub", "new"), newer, newer); err != nil {
		t.Fatal(err)
	}

	snap, err := New(Options{}).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	got := reportByName(t, snap, "dir").Modified
	if !got.Equal(newer) {
		t.Errorf("modified = %v, want %v", got, newer)
	}
}

func TestScanIdempotent(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a"), 1234)
	writeFile(t, filepath.Join(root, "b", "c"), 99_999)
	writeFile(t, filepath.Join(root, "b", "d", "e"), 1)

	scanner := New(Options{})

	first, err := scanner.Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatal(err)
	}

	second, err := scanner.Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(first.Reports) != len(second.Reports) {
		t.Fatalf("report count changed: %d vs %d", len(first.Reports), len(second.Reports))
	}

	for i := range first.Reports {
		a, b := first.Reports[i], second.Reports[i]
		if a.Path != b.Path || a.Bytes != b.Bytes || !a.Modified.Equal(b.Modified) {
			t.Errorf("report %d differs: %+v vs %+v", i, a, b)
		}
	}
}

func TestScanPercentagesSumToHundred(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a"), 4096)
	writeFile(t, filepath.Join(root, "b"), 3*4096)
	writeFile(t, filepath.Join(root, "c", "d"), 7*4096)

	snap, err := New(Options{}).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatal(err)
	}

	if snap.UsesCapacity {
		t.Error("snapshot should not use capacity")
	}

	if snap.Denominator != snap.Total {
		t.Fatalf("denominator = %d, want total %d", snap.Denominator, snap.Total)
	}

	if snap.Denominator == 0 {
		t.Skip("filesystem reports no allocation for test files")
	}

	var sum float64
	for _, r := range snap.Reports {
		sum += snap.Percent(r.Bytes)
	}

	if math.Abs(sum-100) > 1e-9 {
		t.Errorf("percentages sum to %v, want 100", sum)
	}
}

func TestScanZeroDenominator(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, root string)
	}{
		{
			name:  "empty directory",
			setup: func(*testing.T, string) {},
		},
		{
			name: "only empty children",
			setup: func(t *testing.T, root string) {
				t.Helper()
				writeFile(t, filepath.Join(root, "empty"), 0)

				if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
					t.Fatal(err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			tt.setup(t, root)

			snap, err := New(Options{}).Scan(context.Background(), root, nil)
			if err != nil {
				t.Fatal(err)
			}

			if snap.Denominator != 0 {
				t.Fatalf("denominator = %d, want 0", snap.Denominator)
			}

			for _, r := range snap.Reports {
				pct := snap.Percent(r.Bytes)
				if pct != 0 || math.IsNaN(pct) {
					t.Errorf("%s: percent = %v, want 0", r.Name, pct)
				}
			}
		})
	}
}

func TestScanFileAndEmptyDirectory(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "file"), 1)

	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	scanner := New(Options{})
	scanner.stat = func(name string) (fs.FileInfo, error) {
		return fakeInfo{name: filepath.Base(name), size: 4096}, nil
	}

	snap, err := scanner.Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(snap.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(snap.Reports))
	}

	if got := reportByName(t, snap, "file").Bytes; got != 4096 {
		t.Errorf("file bytes = %d, want 4096", got)
	}

	sub := reportByName(t, snap, "sub")
	if sub.Bytes != 0 {
		t.Errorf("sub bytes = %d, want 0", sub.Bytes)
	}

	if sub.HasModified() {
		t.Error("empty directory should have no modification time")
	}
}

func TestScanUnreadableEntry(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "ok"), 1)
	writeFile(t, filepath.Join(root, "broken"), 1)

	modTime := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

	scanner := New(Options{})
	scanner.stat = func(name string) (fs.FileInfo, error) {
		if filepath.Base(name) == "broken" {
			return nil, fs.ErrPermission
		}

		return fakeInfo{name: filepath.Base(name), size: 100, modTime: modTime}, nil
	}

	snap, err := scanner.Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatalf("scan should not fail: %v", err)
	}

	if len(snap.Reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(snap.Reports))
	}

	ok := reportByName(t, snap, "ok")
	if ok.Bytes != 100 || !ok.Modified.Equal(modTime) || ok.Status != StatusOK {
		t.Errorf("unexpected report for ok: %+v", ok)
	}

	broken := reportByName(t, snap, "broken")
	if broken.Bytes != 0 {
		t.Errorf("broken bytes = %d, want 0", broken.Bytes)
	}

	if broken.HasModified() {
		t.Error("broken should have no modification time")
	}

	if broken.Status != StatusDegraded || broken.Errors != 1 {
		t.Errorf("broken status = %v errors = %d, want degraded/1", broken.Status, broken.Errors)
	}
}

func TestAggregateDegradedSamples(t *testing.T) {
	modTime := time.Date(2022, 5, 5, 0, 0, 0, 0, time.UTC)

	scanner := New(Options{})
	scanner.walk = func(string) iter.Seq[Sample] {
		return func(yield func(Sample) bool) {
			samples := []Sample{
				{Path: "a", Bytes: 300, Modified: modTime},
				{Path: "gone", Err: fs.ErrNotExist},
				{Path: "b", Bytes: 200, Modified: modTime.Add(-time.Hour)},
			}
			for _, s := range samples {
				if !yield(s) {
					return
				}
			}
		}
	}

	report := scanner.Aggregate(Child{Path: "/x/dir", IsDir: true})

	if report.Bytes != 500 {
		t.Errorf("bytes = %d, want 500", report.Bytes)
	}

	if !report.Modified.Equal(modTime) {
		t.Errorf("modified = %v, want %v", report.Modified, modTime)
	}

	if report.Status != StatusDegraded || report.Errors != 1 {
		t.Errorf("status = %v errors = %d, want degraded/1", report.Status, report.Errors)
	}

	if report.Name != "dir" {
		t.Errorf("name = %q, want dir", report.Name)
	}
}

func TestScanNotADirectory(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "file")
	writeFile(t, file, 1)

	_, err := New(Options{}).Scan(context.Background(), file, nil)
	if !errors.Is(err, ErrNotDirectory) {
		t.Errorf("expected ErrNotDirectory, got %v", err)
	}

	_, err = New(Options{}).Scan(context.Background(), filepath.Join(root, "missing"), nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestScanProgressHook(t *testing.T) {
	root := t.TempDir()

	for _, name := range []string{"a", "b", "c", "d"} {
		writeFile(t, filepath.Join(root, name, "f"), 10)
	}

	var (
		calls     atomic.Int64
		lastDone  atomic.Int64
		lastTotal atomic.Int64
	)

	hook := func(done, total int64) {
		calls.Add(1)
		lastDone.Store(done)
		lastTotal.Store(total)
	}

	_, err := New(Options{ProgressInterval: time.Millisecond}).Scan(context.Background(), root, hook)
	if err != nil {
		t.Fatal(err)
	}

	if calls.Load() == 0 {
		t.Fatal("progress hook was never called")
	}

	if lastDone.Load() != 4 || lastTotal.Load() != 4 {
		t.Errorf("final progress = %d/%d, want 4/4", lastDone.Load(), lastTotal.Load())
	}
}

func TestWalkSkipsDirectoriesAndStops(t *testing.T) {
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "a"), 10)
	writeFile(t, filepath.Join(root, "x", "b"), 10)
	writeFile(t, filepath.Join(root, "x", "y", "c"), 10)

	if err := os.Symlink(filepath.Join(root, "a"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	seen := map[string]bool{}
	for s := range Walk(root) {
		if s.Degraded() {
			t.Errorf("unexpected degraded sample %s: %v", s.Path, s.Err)
		}

		seen[filepath.Base(s.Path)] = true
	}

	if len(seen) != 3 || !seen["a"] || !seen["b"] || !seen["c"] {
		t.Errorf("unexpected samples: %v", seen)
	}

	count := 0
	for range Walk(root) {
		count++

		break
	}

	if count != 1 {
		t.Errorf("expected walk to stop after break, got %d", count)
	}
}

func TestWalkMissingRoot(t *testing.T) {
	degraded := 0

	for s := range Walk(filepath.Join(t.TempDir(), "missing")) {
		if !s.Degraded() {
			t.Errorf("unexpected readable sample %s", s.Path)
		}

		degraded++
	}

	if degraded == 0 {
		t.Error("missing root should yield a degraded sample")
	}
}

func TestScanSymlinkedDirectoryChild(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	writeFile(t, filepath.Join(target, "big"), 64*1024)

	link := filepath.Join(root, "link")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	snap, err := New(Options{}).Scan(context.Background(), root, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(snap.Reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(snap.Reports))
	}

	got := snap.Reports[0]

	// The link itself is measured; its target is never walked.
	if got.IsDir {
		t.Error("symlink to a directory should not be reported as a directory")
	}

	if want := diskSize(t, link); got.Bytes != want {
		t.Errorf("link bytes = %d, want its own allocation %d", got.Bytes, want)
	}

	if big := diskSize(t, filepath.Join(target, "big")); big > 0 && got.Bytes >= big {
		t.Errorf("link bytes = %d include the target's contents", got.Bytes)
	}

	if got.Status != StatusOK {
		t.Errorf("status = %v, want ok", got.Status)
	}
}
