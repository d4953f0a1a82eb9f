package corpus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for extension report:
// - Counts sorted by frequency descending, ties in first-seen order
// - Example is the first file seen for each extension
// - Files without an extension, including dotfiles, are counted under ""
// - Ext only looks at the base name
// - FilesWithExtension filters by exact extension

func TestCountExtensions(t *testing.T) {
	t.Parallel()

	files := []string{"a.py", "b.go", "c.py", "Makefile", "d.go", "e.py", "f.c", "home/.bashrc"}
	counts := CountExtensions(files)

	assert.Equal(t, []ExtensionCount{
		{Ext: ".py", Count: 3, Example: "a.py"},
		{Ext: ".go", Count: 2, Example: "b.go"},
		{Ext: "", Count: 2, Example: "Makefile"},
		{Ext: ".c", Count: 1, Example: "f.c"},
	}, counts)
}

func TestCountExtensions_TiesKeepFirstSeenOrder(t *testing.T) {
	t.Parallel()

	counts := CountExtensions([]string{"z.zig", "m.md", "a.asm"})

	var exts []string
	for _, c := range counts {
		exts = append(exts, c.Ext)
	}
	assert.Equal(t, []string{".zig", ".md", ".asm"}, exts)
}

func TestCountExtensions_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, CountExtensions(nil))
}

func TestExt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		file string
		want string
	}{
		{"main.go", ".go"},
		{"pkg/archive.tar.gz", ".gz"},
		{".bashrc", ""},
		{"home/..hidden", ""},
		{".config.yml", ".yml"},
		{"Makefile", ""},
		{"dir.d/README", ""},
		{"trailing.", "."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ext(tt.file), tt.file)
	}
}

func TestFilesWithExtension(t *testing.T) {
	t.Parallel()

	files := []string{"x/a.py", "b.pyc", "c.py", "d", ".py"}
	assert.Equal(t, []string{"x/a.py", "c.py"}, FilesWithExtension(files, ".py"))
	assert.Equal(t, []string{"d", ".py"}, FilesWithExtension(files, ""))
	assert.Empty(t, FilesWithExtension(files, ".rs"))
}
