package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

// Pair is one [name, text] entry of the pairs file.
type Pair [2]string

// Pairs converts records to (name, text) pairs, keeping order.
func Pairs(records []extract.Record) []Pair {
	pairs := make([]Pair, len(records))
	for i, r := range records {
		pairs[i] = Pair{r.Name, r.Text}
	}
	return pairs
}

// WritePairs writes records to path as a JSON array of [name, text] pairs.
// The file is replaced atomically so readers never see a partial write.
func WritePairs(path string, records []extract.Record) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Pairs(records)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode pairs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadPairs loads a pairs file written by WritePairs.
func ReadPairs(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var pairs []Pair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return pairs, nil
}
