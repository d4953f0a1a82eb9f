package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/funcscrape/internal/corpus"
	"github.com/mvp-joe/funcscrape/internal/extract"
	"github.com/mvp-joe/funcscrape/internal/storage"
)

var (
	sampleSizeFlag int
	sampleSeedFlag int64
)

// sampleCmd represents the sample command
var sampleCmd = &cobra.Command{
	Use:   "sample [pairs.json]",
	Short: "Print random functions from a pairs file written by scrape",
	Long: `Sample reads a JSON pairs file (default output.json) and prints a random
selection of its functions, name first, then the full text.

Examples:
  funcscrape sample
  funcscrape sample methods.json -n 3 --seed 7
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(".")
		if err != nil {
			return err
		}

		path := cfg.Output.JSON
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			return fmt.Errorf("no pairs file: pass one or set output.json")
		}

		n := cfg.Sample.Size
		if cmd.Flags().Changed("count") {
			n = sampleSizeFlag
		}
		seed := cfg.Sample.Seed
		if cmd.Flags().Changed("seed") {
			seed = sampleSeedFlag
		}
		return runSample(cmd.OutOrStdout(), path, n, seed)
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().IntVarP(&sampleSizeFlag, "count", "n", 0, "Number of functions to print (default from sample.size)")
	sampleCmd.Flags().Int64Var(&sampleSeedFlag, "seed", 0, "Seed for the random sample (0 = random)")
}

func runSample(out io.Writer, path string, n int, seed int64) error {
	pairs, err := storage.ReadPairs(path)
	if err != nil {
		return err
	}

	records := make([]extract.Record, len(pairs))
	for i, p := range pairs {
		records[i] = extract.Record{Name: p[0], Text: p[1]}
	}

	fmt.Fprintf(out, "%s functions in %s\n", formatNumber(len(records)), path)
	printSample(out, corpus.Sample(records, n, corpus.NewRand(seed)))
	return nil
}
