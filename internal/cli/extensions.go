package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/funcscrape/internal/corpus"
)

var (
	extFlag string
	topFlag int
)

// extensionsCmd represents the extensions command
var extensionsCmd = &cobra.Command{
	Use:   "extensions [dir]",
	Short: "Show which file extensions a directory tree contains",
	Long: `Extensions counts the files under dir by extension, most common first,
with an example file for each. Use it to see which languages a corpus holds
before scraping it.

Examples:
  # Histogram of the current directory
  funcscrape extensions

  # The ten most common extensions
  funcscrape extensions --top 10

  # Every Python file
  funcscrape extensions --ext .py
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := rootArg(args)
		cfg, err := loadConfig(root)
		if err != nil {
			return err
		}

		absRoot, err := filepath.Abs(root)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", root, err)
		}
		discovery, err := corpus.NewFileDiscovery(absRoot, cfg.Scan.Ignore)
		if err != nil {
			return fmt.Errorf("invalid ignore pattern: %w", err)
		}
		return runExtensions(cmd.OutOrStdout(), discovery, extFlag, topFlag)
	},
}

func init() {
	rootCmd.AddCommand(extensionsCmd)
	extensionsCmd.Flags().StringVar(&extFlag, "ext", "", "List the files with this extension (e.g. .py)")
	extensionsCmd.Flags().IntVar(&topFlag, "top", 0, "Show only the N most common extensions")
}

// runExtensions prints either the extension histogram or, when ext is set,
// the files with that extension. Paths are shown relative to the corpus root.
func runExtensions(out io.Writer, discovery *corpus.FileDiscovery, ext string, top int) error {
	files, err := discovery.DiscoverFiles()
	if err != nil {
		return fmt.Errorf("failed to discover files: %w", err)
	}

	rel := make([]string, len(files))
	for i, f := range files {
		rel[i] = discovery.Rel(f)
	}

	if ext != "" {
		for _, f := range corpus.FilesWithExtension(rel, ext) {
			fmt.Fprintln(out, f)
		}
		return nil
	}

	counts := corpus.CountExtensions(rel)
	fmt.Fprintf(out, "%s files, %d extensions\n", formatNumber(len(rel)), len(counts))
	if top > 0 && top < len(counts) {
		counts = counts[:top]
	}
	for _, c := range counts {
		fmt.Fprintf(out, "%s: %d; e.g. %q\n", c.Ext, c.Count, c.Example)
	}
	return nil
}
