package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/idelchi/drdisk/internal/scan"
)

// Column widths of the summary table.
const (
	PathWidth     = 40
	SizeWidth     = 15
	PercentWidth  = 10
	ModifiedWidth = 20
)

// ruleWidth spans all columns plus the separating spaces.
const ruleWidth = PathWidth + SizeWidth + PercentWidth + ModifiedWidth + 5

// palette holds the styles bound to one output.
type palette struct {
	header   lipgloss.Style
	dir      lipgloss.Style
	critical lipgloss.Style
	elevated lipgloss.Style
	normal   lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)

	return palette{
		header:   r.NewStyle().Bold(true),
		dir:      r.NewStyle().Foreground(lipgloss.Color("4")),
		critical: r.NewStyle().Foreground(lipgloss.Color("1")),
		elevated: r.NewStyle().Foreground(lipgloss.Color("3")),
		normal:   r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

func (p palette) class(c scan.Class) lipgloss.Style {
	switch c {
	case scan.ClassCritical:
		return p.critical
	case scan.ClassElevated:
		return p.elevated
	default:
		return p.normal
	}
}

// PrintTable writes the snapshot as a table, largest entries first.
// Colors are only emitted when w is a color-capable terminal.
func PrintTable(snap *scan.Snapshot, writer io.Writer, now time.Time) error {
	p := newPalette(writer)

	var b strings.Builder

	fmt.Fprintf(&b, "Summary for: %s\n", p.header.Render(snap.Root))
	fmt.Fprintf(&b, "%s %s %s %s\n",
		pad("Path", PathWidth, false),
		pad("Size", SizeWidth, true),
		pad("%", PercentWidth, true),
		pad("Last Touched", ModifiedWidth, true),
	)
	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")

	for _, r := range snap.Reports {
		style := p.class(snap.Classify(r.Bytes))

		name := r.Name
		if r.IsDir {
			name = p.dir.Render(name + "/")
		}

		fmt.Fprintf(&b, "%s %s %s %s\n",
			pad(name, PathWidth, false),
			pad(style.Render(Size(r.Bytes)), SizeWidth, true),
			pad(style.Render(fmt.Sprintf("%.2f", snap.Percent(r.Bytes))), PercentWidth, true),
			pad(Age(now, r.Modified), ModifiedWidth, true),
		)
	}

	_, err := io.WriteString(writer, b.String())

	return err
}

// Size formats a byte count for display.
func Size(bytes uint64) string {
	return humanize.Bytes(bytes)
}

// Age describes how long ago t was, using the largest whole unit.
// The zero time renders as "N/A".
func Age(now, t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}

	const day = 24 * time.Hour

	d := now.Sub(t)

	switch {
	case d >= day:
		return fmt.Sprintf("%d days ago", int64(d/day))
	case d >= time.Hour:
		return fmt.Sprintf("%d hours ago", int64(d/time.Hour))
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes ago", int64(d/time.Minute))
	default:
		return "just now"
	}
}

// pad aligns s within width visible cells, ignoring ANSI sequences.
// Longer strings are left intact.
func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}

	if right {
		return strings.Repeat(" ", gap) + s
	}

	return s + strings.Repeat(" ", gap)
}
