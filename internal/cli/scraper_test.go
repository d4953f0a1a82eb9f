package cli

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/funcscrape/internal/config"
	"github.com/mvp-joe/funcscrape/internal/corpus"
	"github.com/mvp-joe/funcscrape/internal/search"
	"github.com/mvp-joe/funcscrape/internal/storage"
)

// Test Plan for scraper:
// - Scraping the fixture corpus extracts the Python functions and counts the
//   wrapped-header miss
// - Summary output starts with the miss line and prints sampled functions
// - JSON pairs, SQLite run and bleve index are all written and agree
// - Sinks placed inside the corpus are never discovered
// - Empty sink paths disable the corresponding output
// - sinkIgnores only covers paths below the root
// - The default config scans vendor, build and dependency directories too

const fixtureCorpus = "../../testdata/corpus"

// copyCorpus copies the fixture corpus into a fresh temp dir.
func copyCorpus(t *testing.T) string {
	t.Helper()

	dst := t.TempDir()
	err := filepath.WalkDir(fixtureCorpus, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(fixtureCorpus, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, 0644)
	})
	require.NoError(t, err)
	return dst
}

func testConfig(outDir string) *config.Config {
	cfg := config.Default()
	cfg.Scan.Workers = 2
	cfg.Sample.Seed = 42
	cfg.Output.JSON = filepath.Join(outDir, "methods.json")
	return cfg
}

func pythonNames(summary *corpus.Summary) []string {
	var names []string
	for _, r := range summary.Records {
		if r.Language == "python" {
			names = append(names, r.Name)
		}
	}
	return names
}

func TestScraper_FixtureCorpus(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	cfg := testConfig(outDir)
	cfg.Output.SQLite = filepath.Join(outDir, "runs.db")
	cfg.Output.Index = filepath.Join(outDir, "index")

	var out bytes.Buffer
	s, err := newScraper(fixtureCorpus, cfg, &out, true)
	require.NoError(t, err)
	t.Cleanup(s.close)

	summary, err := s.scrape(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"greet", "double", "ident"}, pythonNames(summary))
	assert.Equal(t, 1, summary.Missed)
	assert.Equal(t, 4, summary.Stats.FilesDiscovered)

	for _, r := range summary.Records {
		if r.Name == "greet" {
			assert.Equal(t, "app/greet.py", r.File)
			assert.Equal(t, 3, r.Line)
			assert.Equal(t, "def greet(name):\n    return \"hello \" + name\n", r.Text)
		}
	}

	printed := out.String()
	assert.True(t, strings.HasPrefix(printed, "Missed total of 1 methods.\n"), printed)
	assert.Contains(t, printed, "greet\n")
	assert.Contains(t, printed, "double\n")

	// JSON pairs
	pairs, err := storage.ReadPairs(cfg.Output.JSON)
	require.NoError(t, err)
	require.Len(t, pairs, len(summary.Records))
	for i, r := range summary.Records {
		assert.Equal(t, storage.Pair{r.Name, r.Text}, pairs[i])
	}

	// SQLite
	db, err := storage.Open(cfg.Output.SQLite)
	require.NoError(t, err)
	defer db.Close()

	reader := storage.NewRunReader(db)
	run, err := reader.LatestRun(s.root)
	require.NoError(t, err)
	assert.Equal(t, len(summary.Records), run.Records)
	assert.Equal(t, 1, run.Missed)
	assert.Equal(t, "chroma", run.Backend)

	stored, err := reader.ReadFunctions(run.ID)
	require.NoError(t, err)
	assert.Equal(t, summary.Records, stored)

	// Index
	idx, err := search.Open(cfg.Output.Index)
	require.NoError(t, err)
	defer idx.Close()

	count, err := idx.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(len(summary.Records)), count)

	hits, err := idx.Search(context.Background(), "name:double", nil)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "app/util.py", hits[0].File)
}

func TestScraper_SinksInsideRootAreIgnored(t *testing.T) {
	t.Parallel()

	root := copyCorpus(t)
	cfg := testConfig(root)
	cfg.Output.SQLite = filepath.Join(root, ".cache", "runs.db")
	cfg.Output.Index = filepath.Join(root, "fnindex")

	s, err := newScraper(root, cfg, &bytes.Buffer{}, true)
	require.NoError(t, err)
	t.Cleanup(s.close)

	first, err := s.scrape(context.Background())
	require.NoError(t, err)
	second, err := s.scrape(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records)
	assert.Equal(t, first.Stats.FilesDiscovered, second.Stats.FilesDiscovered)

	files, err := s.discovery.DiscoverFiles()
	require.NoError(t, err)
	for _, f := range files {
		rel := s.discovery.Rel(f)
		assert.False(t, strings.HasPrefix(rel, "methods.json"), rel)
		assert.False(t, strings.HasPrefix(rel, ".cache/"), rel)
		assert.False(t, strings.HasPrefix(rel, "fnindex/"), rel)
	}
}

func TestScraper_DisabledSinks(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	cfg := testConfig(outDir)
	cfg.Output.JSON = ""
	cfg.Sample.Size = 0

	var out bytes.Buffer
	s, err := newScraper(fixtureCorpus, cfg, &out, true)
	require.NoError(t, err)
	t.Cleanup(s.close)

	_, err = s.scrape(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, "Missed total of 1 methods.\n", out.String())
}

func TestScraper_DefaultConfigScansEverything(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{
		"app/a.py":          "def a():\n    return 1\n",
		"vendor/lib/b.py":   "def b():\n    return 2\n",
		"build/c.py":        "def c():\n    return 3\n",
		"node_modules/d.js": "module.exports = 4;\n",
		"target/e.rs":       "fn main() {}\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	cfg := config.Default()
	cfg.Output.JSON = filepath.Join(t.TempDir(), "methods.json")

	s, err := newScraper(root, cfg, &bytes.Buffer{}, true)
	require.NoError(t, err)
	t.Cleanup(s.close)

	summary, err := s.scrape(context.Background())
	require.NoError(t, err)

	assert.Equal(t, len(files), summary.Stats.FilesDiscovered)
	assert.Equal(t, []string{"a", "c", "b"}, pythonNames(summary))
}

func TestScraper_InvalidBackend(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t.TempDir())
	cfg.Lexer.Backend = "antlr"

	_, err := newScraper(fixtureCorpus, cfg, &bytes.Buffer{}, true)
	assert.Error(t, err)
}

func TestSinkIgnores(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	patterns := sinkIgnores(root,
		filepath.Join(root, "methods.json"),
		filepath.Join(root, "out", "index"),
		filepath.Join(filepath.Dir(root), "elsewhere.db"),
		root,
		"",
	)

	fd, err := corpus.NewFileDiscovery(root, patterns)
	require.NoError(t, err)

	tests := []struct {
		path   string
		ignore bool
	}{
		{"methods.json", true},
		{"methods.json.123.tmp", true},
		{"out/index", true},
		{"out/index/store/root.bolt", true},
		{"out/other.txt", false},
		{"app/greet.py", false},
		{"elsewhere.db", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.ignore, fd.ShouldIgnore(tt.path), tt.path)
	}

	assert.Len(t, patterns, 4)
}
