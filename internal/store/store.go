// Package store is the durable side of the capture pipeline: an event index
// in SQLite plus a screenshots blob directory. Writes are serialized inside
// the store; readers run concurrently and never need external locking.
package store

import (
	"database/sql"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hindsight-sh/hindsight/internal/db"
	"github.com/hindsight-sh/hindsight/internal/event"
)

// Store is the capture event repository.
type Store struct {
	database *sql.DB
	shotsDir string
	log      *zap.Logger

	// writeMu enforces the single-logical-writer discipline: at most one
	// in-flight write, so interleaved partial saves cannot occur.
	writeMu sync.Mutex
}

// New creates a store over an initialized database. baseDir is the directory
// passed to db.Init; the screenshots root lives beneath it.
func New(database *sql.DB, baseDir string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		database: database,
		shotsDir: filepath.Join(baseDir, db.ScreenshotsDirName),
		log:      log,
	}
}

// ScreenshotsDir returns the absolute screenshots root.
func (s *Store) ScreenshotsDir() string {
	return s.shotsDir
}

// Save persists a capture event. On failure the underlying transaction is
// rolled back and no partial record is visible to readers.
func (s *Store) Save(e *event.CaptureEvent) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return db.Insert(s.database, e)
}

// FetchRecent returns up to limit events, newest first. limit = 0 returns all.
func (s *Store) FetchRecent(limit int) ([]event.CaptureEvent, error) {
	return db.FetchRecent(s.database, limit)
}

// FetchByKeywords returns events whose OCR text contains any of the keywords,
// case- and diacritic-insensitive, newest first. An empty or all-blank
// keyword list returns an empty slice without touching storage.
func (s *Store) FetchByKeywords(keywords []string) ([]event.CaptureEvent, error) {
	folded := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		folded = append(folded, event.Fold(kw))
	}
	if len(folded) == 0 {
		return []event.CaptureEvent{}, nil
	}
	return db.FetchByKeywords(s.database, folded)
}

// Count returns the number of stored events.
func (s *Store) Count() (int, error) {
	return db.CountEvents(s.database)
}

// ResolveScreenshotPath joins a stored relative path against the screenshots
// root. Returns nil for an empty path or any path containing a
// parent-directory segment; stored paths are never user input, so a traversal
// segment here means the record is not trustworthy.
func (s *Store) ResolveScreenshotPath(relativePath string) *string {
	if relativePath == "" {
		return nil
	}
	if containsTraversal(relativePath) {
		return nil
	}
	abs := filepath.Join(s.shotsDir, filepath.Clean(relativePath))
	return &abs
}

// containsTraversal checks if path contains a ".." segment.
func containsTraversal(path string) bool {
	for _, part := range strings.Split(path, string(filepath.Separator)) {
		if part == ".." {
			return true
		}
	}
	// Also check forward slashes on all platforms
	if filepath.Separator != '/' {
		for _, part := range strings.Split(path, "/") {
			if part == ".." {
				return true
			}
		}
	}
	return false
}
