package search

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

// Test Plan for Searcher:
// - Indexed functions are found by body term and by name field
// - Hits carry name, file, line, language, text, a score, and at most 3 highlights
// - Language option restricts hits to one ruleset
// - Limit is honored; out-of-range limits fall back to the default
// - Empty query is rejected
// - Re-indexing a record with the same file and line replaces it
// - More than one batch of records is indexed completely
// - On-disk index can be created, closed and reopened
// - Cancelled context stops indexing

func testRecords() []extract.Record {
	return []extract.Record{
		{Name: "parse_header", Text: "def parse_header(raw):\n    return raw.split(':')\n", File: "http/parse.py", Language: "python", Line: 3},
		{Name: "renderPage", Text: "function renderPage(page) {\n  return template(page);\n", File: "web/render.js", Language: "javascript", Line: 10},
		{Name: "checksum", Text: "int checksum(const char *buf) { return crc(buf); }\n", File: "lib/sum.c", Language: "c", Line: 0},
	}
}

func newTestSearcher(t *testing.T, records []extract.Record) Searcher {
	t.Helper()
	s, err := Build(context.Background(), "", records)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSearch_FindsByBody(t *testing.T) {
	t.Parallel()

	s := newTestSearcher(t, testRecords())

	results, err := s.Search(context.Background(), "template", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	hit := results[0]
	assert.Equal(t, "renderPage", hit.Name)
	assert.Equal(t, "web/render.js", hit.File)
	assert.Equal(t, 10, hit.Line)
	assert.Equal(t, "javascript", hit.Language)
	assert.Contains(t, hit.Text, "function renderPage")
	assert.Greater(t, hit.Score, 0.0)
	assert.NotEmpty(t, hit.Highlights)
	assert.LessOrEqual(t, len(hit.Highlights), 3)
}

func TestSearch_NameField(t *testing.T) {
	t.Parallel()

	s := newTestSearcher(t, testRecords())

	results, err := s.Search(context.Background(), "name:checksum", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "lib/sum.c", results[0].File)
}

func TestSearch_LanguageFilter(t *testing.T) {
	t.Parallel()

	s := newTestSearcher(t, testRecords())

	results, err := s.Search(context.Background(), "return", &Options{Language: "c"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "checksum", results[0].Name)
}

func TestSearch_Limit(t *testing.T) {
	t.Parallel()

	var records []extract.Record
	for i := 0; i < 40; i++ {
		records = append(records, extract.Record{
			Name:     fmt.Sprintf("handler%d", i),
			Text:     fmt.Sprintf("def handler%d(req):\n    return respond(req)\n", i),
			File:     "handlers.py",
			Language: "python",
			Line:     i * 3,
		})
	}
	s := newTestSearcher(t, records)

	results, err := s.Search(context.Background(), "respond", &Options{Limit: 5})
	require.NoError(t, err)
	assert.Len(t, results, 5)

	results, err = s.Search(context.Background(), "respond", &Options{Limit: 1000})
	require.NoError(t, err)
	assert.Len(t, results, DefaultLimit)

	results, err = s.Search(context.Background(), "respond", nil)
	require.NoError(t, err)
	assert.Len(t, results, DefaultLimit)
}

func TestSearch_EmptyQuery(t *testing.T) {
	t.Parallel()

	s := newTestSearcher(t, testRecords())
	_, err := s.Search(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestIndex_ReplacesSameLocation(t *testing.T) {
	t.Parallel()

	s := newTestSearcher(t, testRecords())

	updated := testRecords()[0]
	updated.Text = "def parse_header(raw):\n    return tokenize(raw)\n"
	require.NoError(t, s.Index(context.Background(), []extract.Record{updated}))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	results, err := s.Search(context.Background(), "tokenize", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "parse_header", results[0].Name)
}

func TestIndex_ManyBatches(t *testing.T) {
	t.Parallel()

	records := make([]extract.Record, 2500)
	for i := range records {
		records[i] = extract.Record{Name: fmt.Sprintf("f%d", i), Text: "x", File: "big.c", Language: "c", Line: i}
	}
	s := newTestSearcher(t, records)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), count)
}

func TestIndex_Cancelled(t *testing.T) {
	t.Parallel()

	s, err := NewMemOnly()
	require.NoError(t, err)
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = s.Index(ctx, testRecords())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOnDiskIndex(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "index")

	s, err := Build(context.Background(), path, testRecords())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)

	results, err := reopened.Search(context.Background(), "crc", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "checksum", results[0].Name)
	require.NoError(t, reopened.Close())

	// Create replaces whatever was there
	fresh, err := Create(path)
	require.NoError(t, err)
	defer fresh.Close()
	count, err := fresh.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestOpen_Missing(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
