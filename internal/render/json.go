package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/idelchi/drdisk/internal/scan"
)

type jsonReport struct {
	scan.SizeReport

	Percent float64 `json:"percent"`
	Class   string  `json:"class"`
}

type jsonSnapshot struct {
	*scan.Snapshot

	Reports []jsonReport `json:"reports"`
}

// PrintJSON outputs the snapshot in JSON format, with each report's
// percentage and class.
func PrintJSON(snap *scan.Snapshot, writer io.Writer) error {
	out := jsonSnapshot{
		Snapshot: snap,
		Reports:  make([]jsonReport, 0, len(snap.Reports)),
	}

	for _, r := range snap.Reports {
		out.Reports = append(out.Reports, jsonReport{
			SizeReport: r,
			Percent:    snap.Percent(r.Bytes),
			Class:      snap.Classify(r.Bytes).String(),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}
