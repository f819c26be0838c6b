package render

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/progress"
)

// BarWidth is the width of the progress bar in cells.
const BarWidth = 40

// Progress redraws a single status line while a scan runs.
type Progress struct {
	writer  io.Writer
	bar     progress.Model
	message string
	start   time.Time
}

// NewProgress creates a Progress that writes to w for a scan of root.
func NewProgress(w io.Writer, root string) *Progress {
	return &Progress{
		writer: w,
		bar: progress.New(
			progress.WithGradient("#5A56E0", "#00B4D8"),
			progress.WithWidth(BarWidth),
			progress.WithoutPercentage(),
		),
		message: fmt.Sprintf("Calculating sizes for %s...", root),
		start:   time.Now(),
	}
}

// Update redraws the line with the current counts. It matches scan.ProgressFunc.
func (p *Progress) Update(done, total int64) {
	fmt.Fprintf(p.writer, "\r\033[2K%s\r", p.line(done, total, p.message))
}

// Finish draws the final state and ends the line.
func (p *Progress) Finish(done, total int64) {
	fmt.Fprintf(p.writer, "\r\033[2K%s\n", p.line(done, total, "Scan complete!"))
}

func (p *Progress) line(done, total int64, msg string) string {
	return fmt.Sprintf("[%s] %s %d/%d %s",
		Clock(time.Since(p.start)), p.bar.ViewAs(Fraction(done, total)), done, total, msg)
}

// Fraction returns done/total in [0, 1]. An empty scan counts as complete.
func Fraction(done, total int64) float64 {
	if total <= 0 {
		return 1
	}

	f := float64(done) / float64(total)

	return min(max(f, 0), 1)
}

// Clock formats d as hh:mm:ss.
func Clock(d time.Duration) string {
	d = d.Truncate(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
