package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Watcher:
// - New succeeds on a directory and fails on a missing one
// - A file change fires the callback once after the debounce period
// - Rapid changes to several files coalesce into one sorted, deduplicated batch
// - Pause holds callbacks back; Resume delivers what accumulated
// - Files in new subdirectories are watched
// - Ignored paths never reach the callback, and ignored directories are not watched
// - Removal is reported
// - Stop is idempotent and safe concurrently; context cancellation ends the loop

const testDebounce = 150 * time.Millisecond

// collector records callback batches.
type collector struct {
	mu      sync.Mutex
	batches [][]string
	calls   chan struct{}
}

func newCollector() *collector {
	return &collector{calls: make(chan struct{}, 16)}
}

func (c *collector) callback(paths []string) {
	c.mu.Lock()
	c.batches = append(c.batches, paths)
	c.mu.Unlock()
	c.calls <- struct{}{}
}

func (c *collector) wait(t *testing.T, timeout time.Duration) {
	t.Helper()
	select {
	case <-c.calls:
	case <-time.After(timeout):
		t.Fatal("callback not called before timeout")
	}
}

func (c *collector) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var paths []string
	for _, b := range c.batches {
		paths = append(paths, b...)
	}
	return paths
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func startWatcher(t *testing.T, root string, opts Options) (Watcher, *collector) {
	t.Helper()
	if opts.Debounce == 0 {
		opts.Debounce = testDebounce
	}
	w, err := New(root, opts)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() })

	c := newCollector()
	require.NoError(t, w.Start(context.Background(), c.callback))

	// Wait for watcher to initialize
	time.Sleep(50 * time.Millisecond)
	return w, c
}

func TestNew(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)
	require.NoError(t, w.Stop())

	w, err = New(filepath.Join(t.TempDir(), "missing"), Options{})
	assert.Error(t, err)
	assert.Nil(t, w)
}

func TestWatcher_SingleChange(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, c := startWatcher(t, root, Options{})

	file := filepath.Join(root, "main.py")
	require.NoError(t, os.WriteFile(file, []byte("def f():\n    pass\n"), 0644))

	c.wait(t, 2*time.Second)
	assert.Equal(t, []string{file}, c.all())
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, c := startWatcher(t, root, Options{})

	b := filepath.Join(root, "b.c")
	a := filepath.Join(root, "a.c")
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(b, []byte(strings.Repeat("x", i+1)), 0644))
		require.NoError(t, os.WriteFile(a, []byte(strings.Repeat("y", i+1)), 0644))
		time.Sleep(30 * time.Millisecond)
	}

	c.wait(t, 2*time.Second)
	time.Sleep(3 * testDebounce)

	assert.Equal(t, 1, c.count(), "burst should produce one callback")
	assert.Equal(t, []string{a, b}, c.all())
}

func TestWatcher_PauseResume(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, c := startWatcher(t, root, Options{})

	w.Pause()
	file := filepath.Join(root, "paused.rs")
	require.NoError(t, os.WriteFile(file, []byte("fn main() {}\n"), 0644))

	time.Sleep(4 * testDebounce)
	assert.Zero(t, c.count(), "no callbacks while paused")

	w.Resume()
	c.wait(t, time.Second)
	assert.Contains(t, c.all(), file)
}

func TestWatcher_NewDirectory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	_, c := startWatcher(t, root, Options{})

	dir := filepath.Join(root, "pkg")
	require.NoError(t, os.Mkdir(dir, 0755))
	c.wait(t, 2*time.Second)

	file := filepath.Join(dir, "inner.go")
	require.NoError(t, os.WriteFile(file, []byte("package pkg\n"), 0644))
	c.wait(t, 2*time.Second)

	assert.Contains(t, c.all(), file)
}

func TestWatcher_Ignore(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, "node_modules"), 0755))

	ignore := func(rel string) bool {
		return rel == "node_modules" || strings.HasPrefix(rel, "node_modules/") || strings.HasSuffix(rel, ".log")
	}
	_, c := startWatcher(t, root, Options{Ignore: ignore})

	require.NoError(t, os.WriteFile(filepath.Join(root, "node_modules", "dep.js"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "debug.log"), []byte("x"), 0644))
	kept := filepath.Join(root, "app.js")
	require.NoError(t, os.WriteFile(kept, []byte("x"), 0644))

	c.wait(t, 2*time.Second)
	time.Sleep(2 * testDebounce)
	assert.Equal(t, []string{kept}, c.all())
}

func TestWatcher_Remove(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "gone.py")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, c := startWatcher(t, root, Options{})
	require.NoError(t, os.Remove(file))

	c.wait(t, 2*time.Second)
	assert.Contains(t, c.all(), file)
}

func TestWatcher_StopIdempotent(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background(), func([]string) {}))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Stop()
		}()
	}
	wg.Wait()
	assert.NoError(t, w.Stop())
}

func TestWatcher_StopWithoutStart(t *testing.T) {
	t.Parallel()

	w, err := New(t.TempDir(), Options{})
	require.NoError(t, err)
	assert.NoError(t, w.Stop())
}

func TestWatcher_ContextCancellation(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	w, err := New(root, Options{Debounce: testDebounce})
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	c := newCollector()
	require.NoError(t, w.Start(ctx, c.callback))
	cancel()

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return after context cancellation")
	}
}
