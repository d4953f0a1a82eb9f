package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/funcscrape/internal/search"
)

var (
	searchIndexFlag    string
	searchLimitFlag    int
	searchLanguageFlag string
	searchJSONFlag     bool
)

// errNoIndex is returned when neither --index nor output.index names an index.
var errNoIndex = errors.New("no index configured: pass --index or set output.index")

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search an index built by scrape --index",
	Long: `Search runs a bleve query-string query against a function index.

Query syntax:
  - Field scoping: name:parse, text:socket, file:http, language:python
  - Boolean operators: AND, OR, NOT, +required, -excluded
  - Phrases: "return nil"
  - Wildcards and fuzzy terms: pars*, sokcet~1

Examples:
  funcscrape search 'name:parse*' --index .funcscrape/index
  funcscrape search socket --language python --limit 5
`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveIndexPath(searchIndexFlag)
		if err != nil {
			return err
		}

		searcher, err := search.Open(path)
		if err != nil {
			return err
		}
		defer searcher.Close()

		query := strings.Join(args, " ")
		opts := &search.Options{Limit: searchLimitFlag, Language: searchLanguageFlag}
		return runSearch(cmd.Context(), cmd.OutOrStdout(), searcher, query, opts, searchJSONFlag)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchIndexFlag, "index", "", "Index directory (default from output.index)")
	searchCmd.Flags().IntVar(&searchLimitFlag, "limit", search.DefaultLimit, "Maximum results (1-100)")
	searchCmd.Flags().StringVar(&searchLanguageFlag, "language", "", "Only show functions in this language")
	searchCmd.Flags().BoolVar(&searchJSONFlag, "json", false, "Print results as JSON")
}

// resolveIndexPath prefers the flag, then the config of the working directory.
func resolveIndexPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := loadConfig(".")
	if err != nil {
		return "", err
	}
	if cfg.Output.Index == "" {
		return "", errNoIndex
	}
	return cfg.Output.Index, nil
}

func runSearch(ctx context.Context, out io.Writer, searcher search.Searcher, query string, opts *search.Options, asJSON bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	results, err := searcher.Search(ctx, query, opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No matches.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(out, "%d. %s  %s:%d  [%s] (%.3f)\n", i+1, r.Name, r.File, r.Line+1, r.Language, r.Score)
		for _, h := range r.Highlights {
			fmt.Fprintf(out, "     %s\n", strings.ReplaceAll(strings.TrimSpace(h), "\n", " "))
		}
	}
	return nil
}
