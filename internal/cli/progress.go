package cli

import (
	"fmt"
	"io"
	"log"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/funcscrape/internal/corpus"
)

// CLIProgressReporter renders scan progress as a progress bar.
type CLIProgressReporter struct {
	out     io.Writer
	fileBar *progressbar.ProgressBar
	records int
}

// NewCLIProgressReporter creates a progress reporter writing to out. Quiet
// mode gets a reporter that prints nothing.
func NewCLIProgressReporter(out io.Writer, quiet bool) corpus.ProgressReporter {
	if quiet {
		return &corpus.NoOpProgressReporter{}
	}
	return &CLIProgressReporter{out: out}
}

func (c *CLIProgressReporter) OnDiscoveryStart() {
	log.Println("Discovering files...")
}

func (c *CLIProgressReporter) OnDiscoveryComplete(files int) {
	log.Printf("Scanning %s files\n", formatNumber(files))
}

func (c *CLIProgressReporter) OnScanStart(totalFiles int) {
	c.records = 0
	c.fileBar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Scanning files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(c.out)
		}),
	)
}

func (c *CLIProgressReporter) OnFileScanned(result *corpus.FileResult) {
	c.records += len(result.Result.Records)
	if c.fileBar != nil {
		c.fileBar.Describe(fmt.Sprintf("Scanning files (%s functions)", formatNumber(c.records)))
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(stats *corpus.Stats) {
	if c.fileBar != nil {
		c.fileBar.Finish()
		c.fileBar = nil
	}

	fmt.Fprintf(c.out, "✓ Scan complete: %s functions from %s files in %.1fs\n",
		formatNumber(stats.Records),
		formatNumber(stats.FilesScanned),
		stats.Duration.Seconds())

	if skipped := stats.FilesSkipped(); skipped > 0 {
		reasons := make([]string, 0, len(stats.Skipped))
		for reason := range stats.Skipped {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)

		fmt.Fprintf(c.out, "  Skipped files: %s\n", formatNumber(skipped))
		for _, reason := range reasons {
			fmt.Fprintf(c.out, "    %-10s %s\n", reason, formatNumber(stats.Skipped[corpus.SkipReason(reason)]))
		}
	}
}
