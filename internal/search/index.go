package search

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

const (
	// DefaultLimit is used when a search asks for no limit or more than MaxLimit.
	DefaultLimit = 15
	// MaxLimit caps the number of hits per search.
	MaxLimit = 100

	batchSize     = 1000
	maxHighlights = 3
)

// ErrEmptyQuery is returned when Search is given a blank query string.
var ErrEmptyQuery = errors.New("empty query")

// Searcher is full-text search over extracted functions.
type Searcher interface {
	// Search executes a bleve query-string query.
	// Supports field scoping (name:, text:, file:, language:), boolean operators,
	// phrases, wildcards and fuzzy matching.
	Search(ctx context.Context, queryStr string, opts *Options) ([]*Result, error)

	// Index adds records to the index, replacing documents with the same
	// file and line.
	Index(ctx context.Context, records []extract.Record) error

	// Count returns the number of indexed functions.
	Count() (uint64, error)

	// Close releases resources held by the searcher.
	Close() error
}

// Options narrows a search. The zero value searches everything.
type Options struct {
	Limit    int
	Language string // exact ruleset name, e.g. "python"
}

// Result represents a single search hit with highlighting.
type Result struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Language   string   `json:"language"`
	Text       string   `json:"text"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights,omitempty"` // matching snippets with <mark> tags
}

// bleveSearcher implements Searcher using bleve full-text search.
type bleveSearcher struct {
	index bleve.Index
	mu    sync.RWMutex // Protects index during updates
}

// NewMemOnly creates a Searcher backed by an in-memory bleve index.
func NewMemOnly() (Searcher, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &bleveSearcher{index: index}, nil
}

// Create builds an empty on-disk index at path, replacing any index there.
func Create(path string) (Searcher, error) {
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("failed to remove old index: %w", err)
	}
	index, err := bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index at %s: %w", path, err)
	}
	return &bleveSearcher{index: index}, nil
}

// Open opens an existing on-disk index.
func Open(path string) (Searcher, error) {
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bleve index at %s: %w", path, err)
	}
	return &bleveSearcher{index: index}, nil
}

// Build creates an index at path (or in memory when path is empty) holding
// records.
func Build(ctx context.Context, path string, records []extract.Record) (Searcher, error) {
	var (
		s   Searcher
		err error
	)
	if path == "" {
		s, err = NewMemOnly()
	} else {
		s, err = Create(path)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Index(ctx, records); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to index functions: %w", err)
	}
	return s, nil
}

// buildMapping creates the index mapping for function documents.
// All fields are stored so hits can be rendered without another lookup.
func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	// Text field (primary search target) - standard analyzer
	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"
	textMapping.Store = true
	textMapping.Index = true
	textMapping.IncludeTermVectors = true // Enable phrase search and highlighting

	// Name - standard analyzer so "get" finds "get_balance"-style names by term
	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = true
	nameMapping.Index = true
	nameMapping.IncludeTermVectors = true

	// Language field (filterable) - keyword analyzer for exact matching
	languageMapping := bleve.NewTextFieldMapping()
	languageMapping.Analyzer = "keyword"
	languageMapping.Store = true
	languageMapping.Index = true

	// File path - standard analyzer for partial matching
	fileMapping := bleve.NewTextFieldMapping()
	fileMapping.Analyzer = "standard"
	fileMapping.Store = true
	fileMapping.Index = true

	lineMapping := bleve.NewNumericFieldMapping()
	lineMapping.Store = true
	lineMapping.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("text", textMapping)
	docMapping.AddFieldMappingsAt("language", languageMapping)
	docMapping.AddFieldMappingsAt("file", fileMapping)
	docMapping.AddFieldMappingsAt("line", lineMapping)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultField = "text"
	return indexMapping
}

// DocID identifies a record in the index.
func DocID(r extract.Record) string {
	return r.File + ":" + strconv.Itoa(r.Line)
}

func recordToDocument(r extract.Record) map[string]interface{} {
	return map[string]interface{}{
		"name":     r.Name,
		"text":     r.Text,
		"language": r.Language,
		"file":     r.File,
		"line":     r.Line,
	}
}

// Index adds records to the bleve index in batches.
func (s *bleveSearcher) Index(ctx context.Context, records []extract.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := s.index.NewBatch()
	for i, r := range records {
		// Check cancellation periodically
		if i%batchSize == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
		}

		if err := batch.Index(DocID(r), recordToDocument(r)); err != nil {
			return fmt.Errorf("failed to add %s to batch: %w", DocID(r), err)
		}

		if batch.Size() >= batchSize {
			if err := s.index.Batch(batch); err != nil {
				return fmt.Errorf("failed to execute batch: %w", err)
			}
			batch = s.index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}

	return nil
}

// Search executes a keyword search using bleve QueryStringQuery syntax.
func (s *bleveSearcher) Search(ctx context.Context, queryStr string, opts *Options) ([]*Result, error) {
	if strings.TrimSpace(queryStr) == "" {
		return nil, ErrEmptyQuery
	}
	if opts == nil {
		opts = &Options{}
	}

	limit := opts.Limit
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}

	var finalQuery query.Query = bleve.NewQueryStringQuery(queryStr)
	if opts.Language != "" {
		langQuery := bleve.NewTermQuery(opts.Language)
		langQuery.SetField("language")
		finalQuery = bleve.NewConjunctionQuery(finalQuery, langQuery)
	}

	req := bleve.NewSearchRequestOptions(finalQuery, limit, 0, false)
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Fields = []string{"name", "text"}
	req.Fields = []string{"name", "text", "language", "file", "line"}

	s.mu.RLock()
	defer s.mu.RUnlock()

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		r := &Result{Score: hit.Score}
		r.Name, _ = hit.Fields["name"].(string)
		r.Text, _ = hit.Fields["text"].(string)
		r.Language, _ = hit.Fields["language"].(string)
		r.File, _ = hit.Fields["file"].(string)
		if line, ok := hit.Fields["line"].(float64); ok {
			r.Line = int(line)
		}
		r.Highlights = extractHighlights(hit.Fragments)
		results = append(results, r)
	}

	return results, nil
}

// extractHighlights flattens bleve fragments, name first, capped at three.
func extractHighlights(fragments map[string][]string) []string {
	var highlights []string
	for _, field := range []string{"name", "text"} {
		highlights = append(highlights, fragments[field]...)
	}

	if len(highlights) > maxHighlights {
		highlights = highlights[:maxHighlights]
	}

	return highlights
}

// Count returns the number of indexed functions.
func (s *bleveSearcher) Count() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close releases resources held by the searcher.
func (s *bleveSearcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index != nil {
		return s.index.Close()
	}
	return nil
}
