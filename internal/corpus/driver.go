package corpus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sourcegraph/conc/pool"

	"github.com/mvp-joe/funcscrape/internal/extract"
	"github.com/mvp-joe/funcscrape/internal/lexer"
)

// ErrDecode marks a file whose bytes are not valid UTF-8 text.
var ErrDecode = errors.New("file is not valid UTF-8 text")

// SkipReason says why a file contributed nothing.
type SkipReason string

const (
	SkipNone      SkipReason = ""
	SkipDecode    SkipReason = "decode"
	SkipNoRuleset SkipReason = "no_ruleset"
	SkipRead      SkipReason = "read"
	SkipTokenize  SkipReason = "tokenize"
)

// FileResult is the outcome of scanning one file.
type FileResult struct {
	Path     string // relative to the corpus root
	Language string
	Result   extract.Result
	Skipped  SkipReason
	Err      error
}

// Stats summarizes a scan.
type Stats struct {
	FilesDiscovered int                `json:"files_discovered"`
	FilesScanned    int                `json:"files_scanned"`
	Skipped         map[SkipReason]int `json:"skipped"`
	Records         int                `json:"records"`
	Missed          int                `json:"missed"`
	Duration        time.Duration      `json:"duration"`
}

// FilesSkipped returns the total number of skipped files.
func (s *Stats) FilesSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// Summary is the aggregate of a scan: records in discovery order, the total
// miss count, and statistics.
type Summary struct {
	Records []extract.Record
	Missed  int
	Stats   Stats
}

// DriverOptions configures a Driver.
type DriverOptions struct {
	// Workers is the number of files scanned concurrently. Values below 2
	// scan sequentially.
	Workers int

	// Progress receives scan callbacks. Nil means no reporting.
	Progress ProgressReporter

	// LogMisses logs the header line of every missed function.
	LogMisses bool
}

// Driver runs the function locator over every file of a corpus.
type Driver struct {
	discovery *FileDiscovery
	lexer     lexer.Lexer
	workers   int
	progress  ProgressReporter
	logMisses bool
}

// NewDriver creates a driver over the files found by discovery.
func NewDriver(discovery *FileDiscovery, lx lexer.Lexer, opts DriverOptions) *Driver {
	progress := opts.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	return &Driver{
		discovery: discovery,
		lexer:     lx,
		workers:   workers,
		progress:  progress,
		logMisses: opts.LogMisses,
	}
}

// Run discovers files and scans them.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	d.progress.OnDiscoveryStart()
	files, err := d.discovery.DiscoverFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to discover files: %w", err)
	}
	d.progress.OnDiscoveryComplete(len(files))

	return d.Scan(ctx, files)
}

// Scan scans files and merges their results in the order given. Per-file
// failures are counted in Stats.Skipped and never abort the scan; only
// context cancellation does.
func (d *Driver) Scan(ctx context.Context, files []string) (*Summary, error) {
	start := time.Now()
	d.progress.OnScanStart(len(files))

	results := make([]FileResult, len(files))
	scan := func(i int) {
		if ctx.Err() != nil {
			return
		}
		results[i] = d.ScanFile(files[i])
		d.progress.OnFileScanned(&results[i])
	}

	if d.workers == 1 {
		for i := range files {
			scan(i)
		}
	} else {
		p := pool.New().WithMaxGoroutines(d.workers)
		for i := range files {
			p.Go(func() { scan(i) })
		}
		p.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summary := &Summary{
		Stats: Stats{
			FilesDiscovered: len(files),
			Skipped:         make(map[SkipReason]int),
		},
	}
	for i := range results {
		fr := &results[i]
		if fr.Skipped != SkipNone {
			summary.Stats.Skipped[fr.Skipped]++
			continue
		}
		summary.Stats.FilesScanned++
		summary.Records = append(summary.Records, fr.Result.Records...)
		summary.Missed += fr.Result.Missed
	}
	summary.Stats.Records = len(summary.Records)
	summary.Stats.Missed = summary.Missed
	summary.Stats.Duration = time.Since(start)

	d.progress.OnComplete(&summary.Stats)
	return summary, nil
}

// ScanFile resolves a ruleset, reads and decodes the file, and locates its
// functions. Failures are reported in the result, not returned.
func (d *Driver) ScanFile(path string) FileResult {
	fr := FileResult{Path: d.discovery.Rel(path)}

	ruleset, err := d.lexer.Resolve(path)
	if err != nil {
		fr.Skipped, fr.Err = SkipNoRuleset, err
		return fr
	}
	fr.Language = ruleset.Name()

	source, err := os.ReadFile(path)
	if err != nil {
		fr.Skipped, fr.Err = SkipRead, err
		return fr
	}
	if !utf8.Valid(source) {
		fr.Skipped, fr.Err = SkipDecode, fmt.Errorf("%w: %s", ErrDecode, fr.Path)
		return fr
	}

	tokenizer, err := ruleset.Bind(source)
	if err != nil {
		fr.Skipped, fr.Err = SkipTokenize, err
		return fr
	}

	locator := &extract.Locator{}
	if d.logMisses {
		locator.OnMiss = func(index int, header string) {
			log.Printf("Missed function at %s:%d: %s", fr.Path, index+1, strings.TrimSpace(header))
		}
	}

	fr.Result = locator.Locate(extract.SplitLines(string(source)), tokenizer)
	for i := range fr.Result.Records {
		fr.Result.Records[i].File = fr.Path
		fr.Result.Records[i].Language = fr.Language
	}
	return fr
}
