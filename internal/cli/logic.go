package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/topdirs/internal/dirstat"
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func logic(ctx context.Context, options dirstat.Options, stdout, stderr io.Writer) error {
	enableProgress := options.Output != "json" &&
		!options.Debug &&
		isTerminal(stderr)

	options.DebugWriter = stderr

	// Simple progress callback that prints directly to stderr
	var progressHook dirstat.ProgressHook

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(stderr, "\033[?25l")
		defer fmt.Fprint(stderr, "\033[?25h")

		progressHook = func(measured, discovered int64) {
			msg := fmt.Sprintf("Scanning… %s of %s directories measured",
				humanize.Comma(measured), humanize.Comma(discovered))
			fmt.Fprintf(stderr, "\r\033[2K%s\r", msg)
		}
	}

	report, err := dirstat.Run(ctx, options, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	switch options.Output {
	case "json":
		return PrintJSON(report, stdout)
	case "table":
		return PrintTable(report, stdout)
	default:
		return fmt.Errorf("unknown output format: %s", options.Output)
	}
}
