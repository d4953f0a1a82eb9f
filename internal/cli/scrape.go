package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/funcscrape/internal/config"
)

var (
	quietFlag   bool
	watchFlag   bool
	workersFlag int
	backendFlag string
	outputFlag  string
	sqliteFlag  string
	indexFlag   string
	sampleFlag  int
	seedFlag    int64
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [dir]",
	Short: "Extract every function in a directory tree",
	Long: `Scrape walks dir (default: the current directory), lexes every file a
lexer recognizes, and extracts each function's name and source text.

Results:
  - (name, text) pairs written as JSON (output.json, default methods.json)
  - optionally a SQLite database of runs and functions (output.sqlite)
  - optionally a bleve full-text index (output.index)

After the scan it prints how many functions were recognized but could not be
extracted, followed by a random sample of the extracted functions.

Examples:
  # Scrape the current directory
  funcscrape scrape

  # Scrape a project with the tree-sitter backend on 8 workers
  funcscrape scrape ~/src/project --backend treesitter --workers 8

  # Keep the outputs up to date while editing
  funcscrape scrape --watch --index .funcscrape/index
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	scrapeCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and rescan")
	scrapeCmd.Flags().IntVar(&workersFlag, "workers", 0, "Files scanned concurrently (default from config)")
	scrapeCmd.Flags().StringVar(&backendFlag, "backend", "", "Lexer backend: chroma or treesitter")
	scrapeCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Path of the JSON pairs file (empty string disables)")
	scrapeCmd.Flags().StringVar(&sqliteFlag, "sqlite", "", "Also store the run in this SQLite database")
	scrapeCmd.Flags().StringVar(&indexFlag, "index", "", "Also build a full-text index in this directory")
	scrapeCmd.Flags().IntVar(&sampleFlag, "sample", 0, "Number of random functions to print")
	scrapeCmd.Flags().Int64Var(&seedFlag, "seed", 0, "Seed for the random sample (0 = random)")
}

// applyScrapeFlags copies explicitly set flags over the loaded configuration.
func applyScrapeFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("workers") {
		cfg.Scan.Workers = workersFlag
	}
	if flags.Changed("backend") {
		cfg.Lexer.Backend = backendFlag
	}
	if flags.Changed("output") {
		cfg.Output.JSON = outputFlag
	}
	if flags.Changed("sqlite") {
		cfg.Output.SQLite = sqliteFlag
	}
	if flags.Changed("index") {
		cfg.Output.Index = indexFlag
	}
	if flags.Changed("sample") {
		cfg.Sample.Size = sampleFlag
	}
	if flags.Changed("seed") {
		cfg.Sample.Seed = seedFlag
	}
	return config.Validate(cfg)
}

func runScrape(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\nInterrupted! Cancelling scrape...")
			cancel()
		case <-ctx.Done():
		}
	}()

	root := rootArg(args)
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}
	if err := applyScrapeFlags(cmd, cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	s, err := newScraper(root, cfg, cmd.OutOrStdout(), quietFlag)
	if err != nil {
		return err
	}
	defer s.close()

	if _, err := s.scrape(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("scrape cancelled")
		}
		return fmt.Errorf("scrape failed: %w", err)
	}

	if !watchFlag {
		return nil
	}

	if err := s.watch(ctx); err != nil {
		return fmt.Errorf("watch mode failed: %w", err)
	}
	if !quietFlag {
		log.Println("Watch mode stopped")
	}
	return nil
}
