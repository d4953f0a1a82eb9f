package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/funcscrape/internal/mcp"
	"github.com/mvp-joe/funcscrape/internal/search"
)

var serveIndexFlag string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a function index to AI assistants over MCP",
	Long: `Serve starts a Model Context Protocol server on stdio exposing the
search_functions tool over an index built by scrape --index.

Example MCP client configuration:
  {
    "mcpServers": {
      "funcscrape": {
        "command": "funcscrape",
        "args": ["serve", "--index", "/path/to/.funcscrape/index"]
      }
    }
  }
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveIndexPath(serveIndexFlag)
		if err != nil {
			return err
		}

		searcher, err := search.Open(path)
		if err != nil {
			return err
		}

		if n, err := searcher.Count(); err == nil {
			log.Printf("Serving %s functions from %s", formatNumber(int(n)), path)
		}

		srv, err := mcp.NewServer(searcher, Version)
		if err != nil {
			searcher.Close()
			return err
		}
		defer srv.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return srv.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveIndexFlag, "index", "", "Index directory (default from output.index)")
}
