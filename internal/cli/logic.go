package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/idelchi/drdisk/internal/capacity"
	"github.com/idelchi/drdisk/internal/render"
	"github.com/idelchi/drdisk/internal/scan"
	"github.com/idelchi/drdisk/internal/shell"
)

func logic(ctx context.Context, options Options, stdout io.Writer) error {
	log, err := newLogger(options.Debug)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	defer func() { _ = log.Sync() }()

	session, err := shell.NewSession(options.Path)
	if err != nil {
		return err
	}

	if err := session.Validate(); err != nil {
		return err
	}

	scanOptions := scan.Options{Logger: log}

	if options.TotalDiskColor {
		total, err := capacity.Lookup(ctx, session.Root)
		if err != nil {
			return fmt.Errorf("%w. Try running without --total-disk-color", err)
		}

		log.Debug("filesystem capacity", zap.Uint64("bytes", total))

		scanOptions.Capacity = &total
	}

	scanner := scan.New(scanOptions)

	enableProgress := strings.ToLower(options.Output) != "json" &&
		!options.Debug &&
		isatty.IsTerminal(os.Stderr.Fd())

	display := func(ctx context.Context, root string) error {
		return scanAndDisplay(ctx, scanner, root, options.Output, enableProgress, stdout)
	}

	if options.Once {
		return display(ctx, session.Root)
	}

	completer := shell.NewCompleter()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       session.Prompt(),
		AutoComplete: completer,
		HistoryLimit: 1000,
	})
	if err != nil {
		return fmt.Errorf("starting line editor: %w", err)
	}

	defer rl.Close()

	return shell.Run(ctx, session, shell.Config{
		Reader:    rl,
		Out:       stdout,
		Scan:      display,
		Completer: completer,
		Logger:    log,
	})
}

// scanAndDisplay scans root and prints the snapshot, drawing a progress bar
// on stderr while the scan runs if enabled.
func scanAndDisplay(
	ctx context.Context,
	scanner *scan.Scanner,
	root, output string,
	enableProgress bool,
	stdout io.Writer,
) error {
	var (
		hook     scan.ProgressFunc
		progress *render.Progress
	)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(os.Stderr, "\033[?25l")
		defer fmt.Fprint(os.Stderr, "\033[?25h")

		progress = render.NewProgress(os.Stderr, root)
		hook = progress.Update
	}

	snap, err := scanner.Scan(ctx, root, hook)
	if err != nil {
		if enableProgress {
			fmt.Fprint(os.Stderr, "\r\033[2K\r")
		}

		return err
	}

	if enableProgress {
		n := int64(len(snap.Reports))
		progress.Finish(n, n)
	}

	switch strings.ToLower(output) {
	case "json":
		return render.PrintJSON(snap, stdout)
	case "table":
		return render.PrintTable(snap, stdout, time.Now())
	default:
		return fmt.Errorf("unknown output format: %s", output)
	}
}
