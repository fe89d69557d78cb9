package cmd

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/khanhnv2901/iwtools/internal/driver"
	"github.com/khanhnv2901/iwtools/internal/observability"
	"github.com/khanhnv2901/iwtools/internal/progress"
)

// stdoutIsTerminal reports whether the animation can redraw in place.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressFor returns the indicator for a run, or nil when the run is quiet:
// JSON formats, verbose logging, or output that is not a terminal.
func progressFor(out io.Writer, format string, verbose, terminal bool) driver.ProgressFunc {
	if format != observability.FormatColorized || verbose || !terminal {
		return nil
	}
	return progress.NewIndicator(out).Run
}
