package highscore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "scores.json")
	s := NewFileStore(path, 2)

	entries, err := s.FetchTop(ctx)
	if err != nil || len(entries) != 0 {
		t.Fatalf("missing file: %v, %v", entries, err)
	}

	for _, e := range []Entry{{Name: "a", Score: 10}, {Name: "b", Score: 30}, {Name: "c", Score: 20}} {
		if err := s.Submit(ctx, e); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	// A fresh store reads what the first one wrote
	entries, _ = NewFileStore(path, 2).FetchTop(ctx)
	if got := names(entries); !equal(got, []string{"b", "c"}) {
		t.Errorf("entries = %v, want [b c]", got)
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, 0)
	entries, err := s.FetchTop(context.Background())
	if err != nil || len(entries) != 0 {
		t.Errorf("corrupt file: %v, %v", entries, err)
	}

	if err := s.Submit(context.Background(), Entry{Name: "a", Score: 1}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	entries, _ = s.FetchTop(context.Background())
	if len(entries) != 1 {
		t.Errorf("entries = %v, want the new entry", entries)
	}
}

func TestFileStoreAcceptsCapitalizedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.json")
	data := `[{"Name":"old","Score":5},{"Name":"new","Score":50}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, _ := NewFileStore(path, 10).FetchTop(context.Background())
	if got := names(entries); !equal(got, []string{"new", "old"}) {
		t.Errorf("entries = %v", got)
	}
}
