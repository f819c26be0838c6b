// Package shell implements the interactive navigation loop.
package shell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/idelchi/drdisk/internal/scan"
)

// HelpText lists the commands understood by Apply.
const HelpText = "Commands: cd <dir>, .., up, q, quit, help"

// readDir lists a cd target before the session moves into it.
var readDir = os.ReadDir //nolint:gochecknoglobals // Replaced in tests

// Session is the navigation state. It is replaced, never mutated, on navigation.
type Session struct {
	// Root is the absolute, canonical directory being inspected.
	Root string
}

// NewSession creates a session rooted at the canonical form of path.
func NewSession(path string) (Session, error) {
	root, err := canonical(path)
	if err != nil {
		return Session{}, err
	}

	return Session{Root: root}, nil
}

// Validate returns an error unless Root is an existing directory.
func (s Session) Validate() error {
	info, err := os.Stat(s.Root)
	if err != nil {
		return fmt.Errorf("accessing path %q: %w", s.Root, err)
	}

	if !info.IsDir() {
		return fmt.Errorf("provided path is not a directory: %s: %w", s.Root, scan.ErrNotDirectory)
	}

	return nil
}

// Prompt returns the input prompt for the session.
func (s Session) Prompt() string {
	return s.Root + "> "
}

// Result is the outcome of applying one input line.
type Result struct {
	// Quit ends the loop.
	Quit bool
	// Message is shown to the user when not empty.
	Message string
}

// Apply interprets one input line and returns the next session.
// Invalid input leaves the session unchanged and explains why in the result.
func Apply(s Session, line string) (Session, Result) {
	input := strings.TrimSpace(line)

	switch {
	case input == "":
		return s, Result{}
	case input == "q" || input == "quit":
		return s, Result{Quit: true}
	case input == ".." || input == "up":
		return Session{Root: filepath.Dir(s.Root)}, Result{}
	case input == "help":
		return s, Result{Message: HelpText}
	case strings.HasPrefix(input, "cd "):
		return s.cd(strings.TrimSpace(strings.TrimPrefix(input, "cd ")))
	default:
		return s, Result{Message: fmt.Sprintf("Unknown command: %s. Type 'help' for a list of commands.", input)}
	}
}

func (s Session) cd(dir string) (Session, Result) {
	target := dir
	if !filepath.IsAbs(target) {
		target = filepath.Join(s.Root, target)
	}

	notFound := Result{Message: "Directory not found: " + dir}

	info, err := os.Stat(target)
	if err != nil || !info.IsDir() {
		return s, notFound
	}

	root, err := canonical(target)
	if err != nil {
		return s, notFound
	}

	// A directory that cannot be listed cannot be scanned; stay where we are.
	if _, err := readDir(root); err != nil {
		return s, Result{Message: fmt.Sprintf("Cannot read directory: %s (%v)", dir, err)}
	}

	return Session{Root: root}, Result{}
}

func canonical(path string) (string, error) {
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
