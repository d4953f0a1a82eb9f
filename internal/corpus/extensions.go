package corpus

import (
	"path/filepath"
	"sort"
	"strings"
)

// ExtensionCount is one row of the extension report.
type ExtensionCount struct {
	Ext     string `json:"ext"`
	Count   int    `json:"count"`
	Example string `json:"example"` // first file seen with this extension
}

// Ext returns the extension of the file's base name, including the dot.
// Leading dots do not start an extension: ".bashrc" has none, and neither
// does "Makefile".
func Ext(file string) string {
	base := strings.TrimLeft(filepath.Base(file), ".")
	i := strings.LastIndexByte(base, '.')
	if i < 0 {
		return ""
	}
	return base[i:]
}

// CountExtensions tallies files by extension, most common first. Ties keep
// the order in which their extensions were first seen. Files without an
// extension count under "".
func CountExtensions(files []string) []ExtensionCount {
	index := make(map[string]int)
	var counts []ExtensionCount

	for _, file := range files {
		ext := Ext(file)
		i, ok := index[ext]
		if !ok {
			i = len(counts)
			index[ext] = i
			counts = append(counts, ExtensionCount{Ext: ext, Example: file})
		}
		counts[i].Count++
	}

	sort.SliceStable(counts, func(a, b int) bool {
		return counts[a].Count > counts[b].Count
	})
	return counts
}

// FilesWithExtension returns the files whose extension is exactly ext.
func FilesWithExtension(files []string, ext string) []string {
	var matched []string
	for _, file := range files {
		if Ext(file) == ext {
			matched = append(matched, file)
		}
	}
	return matched
}
