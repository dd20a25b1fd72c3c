package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/mvp-joe/pydecl/internal/scanner"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter draws a progress bar for scans.
type CLIProgressReporter struct {
	w       io.Writer
	quiet   bool
	fileBar *progressbar.ProgressBar
}

var _ scanner.ProgressReporter = (*CLIProgressReporter)(nil)

// NewCLIProgressReporter creates a reporter writing to w.
func NewCLIProgressReporter(w io.Writer, quiet bool) *CLIProgressReporter {
	return &CLIProgressReporter{w: w, quiet: quiet}
}

func (c *CLIProgressReporter) OnScanStart(totalFiles int) {
	if c.quiet || totalFiles == 0 {
		return
	}

	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.w),
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.w)
		}),
	)
}

func (c *CLIProgressReporter) OnFileScanned(path string, err error) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnScanComplete(stats *scanner.Stats) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintf(c.w, "✓ Scanned %s files in %.1fs (%s failed)\n",
		formatNumber(stats.Files), stats.Duration.Seconds(), formatNumber(stats.Failed))
	fmt.Fprintf(c.w, "  Classes:   %s\n", formatNumber(stats.Classes))
	fmt.Fprintf(c.w, "  Methods:   %s\n", formatNumber(stats.Methods))
	fmt.Fprintf(c.w, "  Functions: %s\n", formatNumber(stats.Functions))
}

// formatNumber formats a number with thousand separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result []byte
	for i, digit := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, digit)
	}
	return string(result)
}
