package corpus

import "sync"

// ProgressReporter provides callbacks for reporting scan progress.
// Implementations can display progress bars, log messages, or remain silent.
// OnFileScanned may be called from several goroutines when the driver runs
// with more than one worker.
type ProgressReporter interface {
	// OnDiscoveryStart is called when file discovery begins.
	OnDiscoveryStart()

	// OnDiscoveryComplete is called when file discovery finishes.
	OnDiscoveryComplete(files int)

	// OnScanStart is called before scanning files.
	OnScanStart(totalFiles int)

	// OnFileScanned is called after each file is scanned or skipped.
	OnFileScanned(result *FileResult)

	// OnComplete is called when the scan completes.
	OnComplete(stats *Stats)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnDiscoveryStart()                {}
func (n *NoOpProgressReporter) OnDiscoveryComplete(files int)    {}
func (n *NoOpProgressReporter) OnScanStart(totalFiles int)       {}
func (n *NoOpProgressReporter) OnFileScanned(result *FileResult) {}
func (n *NoOpProgressReporter) OnComplete(stats *Stats)          {}

// syncReporter serializes calls into a ProgressReporter that is not safe
// for concurrent use.
type syncReporter struct {
	mu   sync.Mutex
	next ProgressReporter
}

// SynchronizedReporter wraps p so that its callbacks never run concurrently.
func SynchronizedReporter(p ProgressReporter) ProgressReporter {
	return &syncReporter{next: p}
}

func (s *syncReporter) OnDiscoveryStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.OnDiscoveryStart()
}

func (s *syncReporter) OnDiscoveryComplete(files int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.OnDiscoveryComplete(files)
}

func (s *syncReporter) OnScanStart(totalFiles int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.OnScanStart(totalFiles)
}

func (s *syncReporter) OnFileScanned(result *FileResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.OnFileScanned(result)
}

func (s *syncReporter) OnComplete(stats *Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next.OnComplete(stats)
}
