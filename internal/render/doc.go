// Package render formats scan snapshots for the terminal.
//
// Tables are colored by size class with lipgloss, sizes are humanized, and a
// progress bar is drawn on stderr while a scan runs.
package render
