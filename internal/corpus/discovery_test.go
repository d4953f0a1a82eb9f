package corpus

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for FileDiscovery:
// - Every regular file is listed, in lexical order, regardless of extension
// - Ignore patterns prune whole directories and single files
// - "**/" patterns also match at the root
// - The .funcscrape output directory is always skipped
// - Symlinks are not followed
// - A missing root is an error

func buildTree(t *testing.T, files ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range files {
		writeFile(t, filepath.Join(root, filepath.FromSlash(f)), []byte("x\n"))
	}
	return root
}

func relAll(fd *FileDiscovery, paths []string) []string {
	rel := make([]string, len(paths))
	for i, p := range paths {
		rel[i] = fd.Rel(p)
	}
	return rel
}

func TestDiscoverFiles_LexicalOrder(t *testing.T) {
	t.Parallel()

	root := buildTree(t, "z.go", "a/b.py", "a/a.rs", "README", "m.txt")
	fd, err := NewFileDiscovery(root, nil)
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"README", "a/a.rs", "a/b.py", "m.txt", "z.go"}, relAll(fd, files))
}

func TestDiscoverFiles_IgnorePatterns(t *testing.T) {
	t.Parallel()

	root := buildTree(t,
		"main.c",
		"app.min.js",
		"web/site.min.js",
		"web/site.js",
		"node_modules/lib/index.js",
		"vendor/dep.go",
	)
	fd, err := NewFileDiscovery(root, []string{"node_modules/**", "vendor/**", "**/*.min.js"})
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"main.c", "web/site.js"}, relAll(fd, files))
}

func TestDiscoverFiles_SkipsOutputDir(t *testing.T) {
	t.Parallel()

	root := buildTree(t, ".funcscrape/config.yml", ".funcscrape/methods.json", "src/a.py")
	fd, err := NewFileDiscovery(root, nil)
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"src/a.py"}, relAll(fd, files))
}

func TestDiscoverFiles_SkipsSymlinks(t *testing.T) {
	t.Parallel()

	root := buildTree(t, "real.py")
	if err := os.Symlink(filepath.Join(root, "real.py"), filepath.Join(root, "link.py")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	fd, err := NewFileDiscovery(root, nil)
	require.NoError(t, err)

	files, err := fd.DiscoverFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"real.py"}, relAll(fd, files))
}

func TestDiscoverFiles_MissingRoot(t *testing.T) {
	t.Parallel()

	fd, err := NewFileDiscovery(filepath.Join(t.TempDir(), "nope"), nil)
	require.NoError(t, err)

	_, err = fd.DiscoverFiles()
	assert.Error(t, err)
}

func TestShouldIgnore(t *testing.T) {
	t.Parallel()

	fd, err := NewFileDiscovery("/corpus", []string{"build/**", "**/*.pb.go"})
	require.NoError(t, err)

	tests := []struct {
		path   string
		ignore bool
	}{
		{".funcscrape", true},
		{".funcscrape/index", true},
		{"build", true},
		{"build/out.o", true},
		{"api/x.pb.go", true},
		{"x.pb.go", true},
		{"api/x.go", false},
		{"builder/x.go", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.ignore, fd.ShouldIgnore(tt.path), tt.path)
	}
}
