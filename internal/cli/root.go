package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/funcscrape/internal/config"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "funcscrape",
	Short: "Extract function definitions from source trees",
	Long: `funcscrape walks a directory tree, recognizes function definitions in any
language a lexer knows, and collects each function's name and source text.

Results are written as (name, text) pairs to JSON, and optionally to a SQLite
database and a full-text index that can be searched or served over MCP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is <dir>/.funcscrape/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads configuration for the corpus at rootDir, honoring --config.
func loadConfig(rootDir string) (*config.Config, error) {
	loader := config.NewLoader(rootDir)
	if cfgFile != "" {
		loader = config.NewFileLoader(cfgFile)
	}

	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Using config: backend=%s workers=%d\n", cfg.Lexer.Backend, cfg.Scan.Workers)
	}
	return cfg, nil
}

// rootArg returns the directory argument, or "." when none was given.
func rootArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}
