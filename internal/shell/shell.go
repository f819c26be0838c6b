package shell

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"go.uber.org/zap"
)

// LineReader reads one line of input after showing a prompt.
// *readline.Instance satisfies it.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// ScanFunc scans and renders one directory.
type ScanFunc func(ctx context.Context, root string) error

// Config holds the collaborators of the loop.
type Config struct {
	// Reader supplies input lines.
	Reader LineReader
	// Out receives messages.
	Out io.Writer
	// Scan is invoked for the current root on every iteration.
	Scan ScanFunc
	// Completer, if set, is refreshed with the current root's children.
	Completer *Completer
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// Run scans the session root, reads a command and repeats until the user quits.
//
// It returns an error when the root stops being a directory or a scan fails.
// Interrupts, end of input and read errors end the loop without an error.
func Run(ctx context.Context, session Session, cfg Config) error {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	for {
		if err := session.Validate(); err != nil {
			return err
		}

		if err := cfg.Scan(ctx, session.Root); err != nil {
			return err
		}

		if cfg.Completer != nil {
			if err := cfg.Completer.Refresh(session.Root); err != nil {
				log.Debug("refreshing completions", zap.Error(err))
			}
		}

		cfg.Reader.SetPrompt(session.Prompt())

		line, err := cfg.Reader.Readline()

		switch {
		case errors.Is(err, readline.ErrInterrupt):
			fmt.Fprintln(cfg.Out, "Ctrl-C")

			return nil
		case errors.Is(err, io.EOF):
			fmt.Fprintln(cfg.Out, "Ctrl-D")

			return nil
		case err != nil:
			fmt.Fprintf(cfg.Out, "Error: %v\n", err)

			return nil
		}

		next, result := Apply(session, line)
		if result.Message != "" {
			fmt.Fprintln(cfg.Out, result.Message)
		}

		if result.Quit {
			return nil
		}

		if next.Root != session.Root {
			log.Debug("navigated", zap.String("from", session.Root), zap.String("to", next.Root))
		}

		session = next
	}
}
