package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"

	"github.com/gobwas/glob"

	"github.com/mvp-joe/funcscrape/internal/config"
	"github.com/mvp-joe/funcscrape/internal/corpus"
	"github.com/mvp-joe/funcscrape/internal/extract"
	"github.com/mvp-joe/funcscrape/internal/lexer"
	"github.com/mvp-joe/funcscrape/internal/search"
	"github.com/mvp-joe/funcscrape/internal/storage"
	"github.com/mvp-joe/funcscrape/internal/watcher"
)

// scraper runs scans of one corpus and writes the configured sinks.
type scraper struct {
	root      string
	cfg       *config.Config
	discovery *corpus.FileDiscovery
	lexer     *lexer.CachedLexer
	driver    *corpus.Driver
	rng       *rand.Rand
	out       io.Writer
	quiet     bool
}

// newScraper wires discovery, lexer and driver for root. Output paths that
// fall inside root are added to the ignore list so scans never read their
// own results.
func newScraper(root string, cfg *config.Config, out io.Writer, quiet bool) (*scraper, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	ignore := append([]string{}, cfg.Scan.Ignore...)
	ignore = append(ignore, sinkIgnores(absRoot, cfg.Output.JSON, cfg.Output.SQLite, cfg.Output.Index)...)

	discovery, err := corpus.NewFileDiscovery(absRoot, ignore)
	if err != nil {
		return nil, fmt.Errorf("invalid ignore pattern: %w", err)
	}

	lx, err := lexer.New(cfg.Lexer.Backend, cfg.Lexer.CacheSize)
	if err != nil {
		return nil, err
	}

	progress := NewCLIProgressReporter(out, quiet)
	if cfg.Scan.Workers > 1 {
		progress = corpus.SynchronizedReporter(progress)
	}

	driver := corpus.NewDriver(discovery, lx, corpus.DriverOptions{
		Workers:   cfg.Scan.Workers,
		Progress:  progress,
		LogMisses: verbose,
	})

	return &scraper{
		root:      absRoot,
		cfg:       cfg,
		discovery: discovery,
		lexer:     lx,
		driver:    driver,
		rng:       corpus.NewRand(cfg.Sample.Seed),
		out:       out,
		quiet:     quiet,
	}, nil
}

// scrape scans the corpus once, writes every sink and prints the summary.
func (s *scraper) scrape(ctx context.Context) (*corpus.Summary, error) {
	started := time.Now()

	summary, err := s.driver.Run(ctx)
	if err != nil {
		return nil, err
	}

	if verbose {
		log.Printf("Ruleset cache hit ratio: %.2f", s.lexer.HitRatio())
	}

	if err := s.writeSinks(ctx, summary, started); err != nil {
		return nil, err
	}

	s.printSummary(summary)
	return summary, nil
}

func (s *scraper) writeSinks(ctx context.Context, summary *corpus.Summary, started time.Time) error {
	out := s.cfg.Output

	if out.JSON != "" {
		if err := storage.WritePairs(out.JSON, summary.Records); err != nil {
			return err
		}
		s.logf("Wrote %s pairs to %s", formatNumber(len(summary.Records)), out.JSON)
	}

	if out.SQLite != "" {
		if err := s.writeSQLite(out.SQLite, summary, started); err != nil {
			return err
		}
	}

	if out.Index != "" {
		idx, err := search.Build(ctx, out.Index, summary.Records)
		if err != nil {
			return err
		}
		if err := idx.Close(); err != nil {
			return fmt.Errorf("failed to close index: %w", err)
		}
		s.logf("Indexed %s functions in %s", formatNumber(len(summary.Records)), out.Index)
	}

	return nil
}

func (s *scraper) writeSQLite(path string, summary *corpus.Summary, started time.Time) error {
	db, err := storage.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	run := &storage.Run{
		Root:            s.root,
		Backend:         s.cfg.Lexer.Backend,
		StartedAt:       started,
		Duration:        summary.Stats.Duration,
		FilesDiscovered: summary.Stats.FilesDiscovered,
		FilesScanned:    summary.Stats.FilesScanned,
		FilesSkipped:    summary.Stats.FilesSkipped(),
		Records:         summary.Stats.Records,
		Missed:          summary.Stats.Missed,
	}
	id, err := storage.NewRunWriter(db).WriteRun(run, summary.Records)
	if err != nil {
		return err
	}
	s.logf("Stored run %s in %s", id, path)
	return nil
}

// printSummary prints the miss count and a random sample of functions.
func (s *scraper) printSummary(summary *corpus.Summary) {
	fmt.Fprintf(s.out, "Missed total of %d methods.\n", summary.Missed)
	printSample(s.out, corpus.Sample(summary.Records, s.cfg.Sample.Size, s.rng))
}

// printSample prints each record's name followed by its text.
func printSample(out io.Writer, records []extract.Record) {
	for _, r := range records {
		fmt.Fprintln(out, r.Name)
		fmt.Fprintln(out, r.Text)
	}
}

// watch rescans the corpus whenever it changes, until ctx is cancelled.
// The watcher is paused during a rescan so changes made meanwhile coalesce
// into one follow-up scan.
func (s *scraper) watch(ctx context.Context) error {
	w, err := watcher.New(s.root, watcher.Options{
		Debounce: time.Duration(s.cfg.Watch.DebounceMs) * time.Millisecond,
		Ignore:   s.discovery.ShouldIgnore,
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Stop()

	changed := make(chan []string, 1)
	if err := w.Start(ctx, func(paths []string) {
		select {
		case changed <- paths:
		default: // a rescan is already queued
		}
	}); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	s.logf("Watching %s for changes...", s.root)

	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-changed:
			w.Pause()
			s.logf("Detected %d changed paths, rescanning...", len(paths))
			if _, err := s.scrape(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Printf("Rescan failed: %v", err)
			}
			w.Resume()
		}
	}
}

// close releases the ruleset cache.
func (s *scraper) close() {
	s.lexer.Close()
}

func (s *scraper) logf(format string, args ...interface{}) {
	if !s.quiet {
		log.Printf(format, args...)
	}
}

// sinkIgnores returns ignore patterns for output paths located inside root.
// Each pattern also covers sibling temp and journal files and, for
// directories, everything below.
func sinkIgnores(root string, sinks ...string) []string {
	var patterns []string
	for _, sink := range sinks {
		if sink == "" {
			continue
		}
		abs, err := filepath.Abs(sink)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		quoted := glob.QuoteMeta(filepath.ToSlash(rel))
		patterns = append(patterns, quoted+"*", quoted+"/**")
	}
	return patterns
}
