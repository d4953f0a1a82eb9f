package cli

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/funcscrape/internal/extract"
	"github.com/mvp-joe/funcscrape/internal/storage"
)

var (
	runsSQLiteFlag string
	runsRootFlag   string
	runsNameFlag   string
	runsKeepFlag   int
	runsDeleteFlag bool
)

// errNoDatabase is returned when neither --sqlite nor output.sqlite names a database.
var errNoDatabase = errors.New("no database configured: pass --sqlite or set output.sqlite")

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs [run-id|latest]",
	Short: "Inspect scrape runs stored by scrape --sqlite",
	Long: `Runs lists the scrape runs stored in a SQLite database, newest first.
Given a run id, or "latest" for the newest run of --root, it prints the run's
statistics and its functions.

Examples:
  # All runs
  funcscrape runs --sqlite runs.db

  # Functions named parse in the latest run of the current directory
  funcscrape runs latest --name parse

  # Keep only the 5 newest runs of ~/src/project
  funcscrape runs --root ~/src/project --keep 5

  # Delete one run
  funcscrape runs 3f2c... --delete
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveDatabasePath(runsSQLiteFlag)
		if err != nil {
			return err
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("no database at %s: %w", path, err)
		}

		db, err := storage.Open(path)
		if err != nil {
			return err
		}
		defer db.Close()

		root, err := filepath.Abs(runsRootFlag)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", runsRootFlag, err)
		}

		opts := runsOptions{
			root:   root,
			name:   runsNameFlag,
			keep:   runsKeepFlag,
			delete: runsDeleteFlag,
		}
		if len(args) > 0 {
			opts.runID = args[0]
		}
		return runRuns(cmd.OutOrStdout(), db, opts)
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().StringVar(&runsSQLiteFlag, "sqlite", "", "SQLite database (default from output.sqlite)")
	runsCmd.Flags().StringVar(&runsRootFlag, "root", ".", "Corpus root for \"latest\" and --keep")
	runsCmd.Flags().StringVar(&runsNameFlag, "name", "", "Only show functions with this name")
	runsCmd.Flags().IntVar(&runsKeepFlag, "keep", 0, "Delete all but the N newest runs of --root")
	runsCmd.Flags().BoolVar(&runsDeleteFlag, "delete", false, "Delete the given run")
}

// resolveDatabasePath prefers the flag, then the config of the working directory.
func resolveDatabasePath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := loadConfig(".")
	if err != nil {
		return "", err
	}
	if cfg.Output.SQLite == "" {
		return "", errNoDatabase
	}
	return cfg.Output.SQLite, nil
}

type runsOptions struct {
	runID  string // "" lists runs, "latest" picks the newest run of root
	root   string
	name   string
	keep   int
	delete bool
}

func runRuns(out io.Writer, db *sql.DB, opts runsOptions) error {
	writer := storage.NewRunWriter(db)
	reader := storage.NewRunReader(db)

	if opts.keep > 0 {
		pruned, err := writer.PruneRuns(opts.root, opts.keep)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Pruned %d runs of %s\n", pruned, opts.root)
		if opts.runID == "" {
			return nil
		}
	}

	if opts.runID == "" {
		return listRuns(out, db, reader)
	}

	var (
		run *storage.Run
		err error
	)
	if opts.runID == "latest" {
		run, err = reader.LatestRun(opts.root)
	} else {
		run, err = reader.GetRun(opts.runID)
	}
	if err != nil {
		return err
	}

	if opts.delete {
		if err := writer.DeleteRun(run.ID); err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Deleted run %s\n", run.ID)
		return nil
	}

	var records []extract.Record
	if opts.name != "" {
		records, err = reader.FunctionsByName(run.ID, opts.name)
	} else {
		records, err = reader.ReadFunctions(run.ID)
	}
	if err != nil {
		return err
	}

	printRun(out, run)
	fmt.Fprintln(out)
	for _, r := range records {
		fmt.Fprintf(out, "  %s  %s:%d\n", r.Name, r.File, r.Line+1)
	}
	return nil
}

func listRuns(out io.Writer, db *sql.DB, reader *storage.RunReader) error {
	version, err := storage.GetSchemaVersion(db)
	if err != nil {
		return err
	}
	runs, err := reader.ListRuns()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d runs (schema v%s)\n", len(runs), version)
	for _, run := range runs {
		fmt.Fprintf(out, "%s  %s  %s functions  %d missed  %s\n",
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			formatNumber(run.Records),
			run.Missed,
			run.Root)
	}
	return nil
}

func printRun(out io.Writer, run *storage.Run) {
	fmt.Fprintf(out, "Run:        %s\n", run.ID)
	fmt.Fprintf(out, "Root:       %s\n", run.Root)
	fmt.Fprintf(out, "Backend:    %s\n", run.Backend)
	fmt.Fprintf(out, "Started:    %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Duration:   %s\n", run.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Files:      %s discovered, %s scanned, %s skipped\n",
		formatNumber(run.FilesDiscovered), formatNumber(run.FilesScanned), formatNumber(run.FilesSkipped))
	fmt.Fprintf(out, "Functions:  %s (%d missed)\n", formatNumber(run.Records), run.Missed)
}
