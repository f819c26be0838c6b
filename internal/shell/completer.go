package shell

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/idelchi/drdisk/internal/scan"
)

const cdPrefix = "cd "

// commands are completed when the input is not a cd target.
var commands = []string{"q", "quit", "..", "up", "help"} //nolint:gochecknoglobals // Command table

// Completer completes commands and the children of the current directory.
// It satisfies readline.AutoCompleter.
type Completer struct {
	mu      sync.RWMutex
	entries []string
}

// NewCompleter creates an empty Completer.
func NewCompleter() *Completer {
	return &Completer{}
}

// SetEntries replaces the names offered after "cd ".
func (c *Completer) SetEntries(names []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append([]string(nil), names...)
}

// Refresh loads the names of root's immediate children.
func (c *Completer) Refresh(root string) error {
	children, err := scan.Children(root)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, filepath.Base(child.Path))
	}

	c.SetEntries(names)

	return nil
}

// Candidates returns the full completions for input and the byte offset in
// input at which they replace the text.
func (c *Completer) Candidates(input string) ([]string, int) {
	if partial, ok := strings.CutPrefix(input, cdPrefix); ok {
		c.mu.RLock()
		defer c.mu.RUnlock()

		var candidates []string

		for _, e := range c.entries {
			if strings.HasPrefix(e, partial) {
				candidates = append(candidates, e)
			}
		}

		return candidates, len(cdPrefix)
	}

	var candidates []string

	if strings.HasPrefix("cd", input) {
		candidates = append(candidates, cdPrefix)
	}

	for _, cmd := range commands {
		if strings.HasPrefix(cmd, input) {
			candidates = append(candidates, cmd)
		}
	}

	return candidates, 0
}

// Do returns the suffixes completing the text before pos, and the length of
// the typed text they extend.
func (c *Completer) Do(line []rune, pos int) ([][]rune, int) {
	input := string(line[:pos])

	candidates, start := c.Candidates(input)
	typed := []rune(input[start:])

	suffixes := make([][]rune, 0, len(candidates))
	for _, cand := range candidates {
		suffixes = append(suffixes, []rune(cand)[len(typed):])
	}

	return suffixes, len(typed)
}
