package highscore

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the table in a local JSON file. Read failures yield an
// empty table and write failures are logged and ignored, so callers never
// see an error from it.
type FileStore struct {
	path  string
	limit int
	mu    sync.Mutex
}

// NewFileStore creates a store backed by path, keeping at most limit entries.
func NewFileStore(path string, limit int) *FileStore {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &FileStore{path: path, limit: limit}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

// FetchTop returns the stored table.
func (s *FileStore) FetchTop(ctx context.Context) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(), nil
}

// Submit inserts entry and rewrites the file.
func (s *FileStore) Submit(ctx context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lb := NewLeaderboard(s.limit)
	lb.Replace(s.load())
	lb.Insert(entry)
	s.save(lb.Entries())
	return nil
}

func (s *FileStore) load() []Entry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("⚠️ High score file unreadable, starting empty: %v", err)
		}
		return []Entry{}
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Printf("⚠️ High score file corrupt, starting empty: %v", err)
		return []Entry{}
	}
	SortEntries(entries)
	if len(entries) > s.limit {
		entries = entries[:s.limit]
	}
	return entries
}

func (s *FileStore) save(entries []Entry) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		log.Printf("⚠️ High score encode failed: %v", err)
		return
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Printf("⚠️ High score directory unavailable: %v", err)
			return
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		log.Printf("⚠️ High score write failed: %v", err)
	}
}
