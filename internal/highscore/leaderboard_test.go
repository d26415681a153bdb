package highscore

import "testing"

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestLeaderboardInsert(t *testing.T) {
	lb := NewLeaderboard(3)

	tests := []struct {
		entry Entry
		rank  int
		want  []string
	}{
		{Entry{Name: "a", Score: 100}, 1, []string{"a"}},
		{Entry{Name: "b", Score: 300}, 1, []string{"b", "a"}},
		{Entry{Name: "c", Score: 100}, 3, []string{"b", "a", "c"}}, // ties keep arrival order
		{Entry{Name: "d", Score: 50}, 0, []string{"b", "a", "c"}},  // falls off
		{Entry{Name: "e", Score: 200}, 2, []string{"b", "e", "a"}},
	}
	for _, tt := range tests {
		if rank := lb.Insert(tt.entry); rank != tt.rank {
			t.Errorf("Insert(%s) rank = %d, want %d", tt.entry.Name, rank, tt.rank)
		}
		if got := names(lb.Entries()); !equal(got, tt.want) {
			t.Errorf("after %s: %v, want %v", tt.entry.Name, got, tt.want)
		}
	}

	if lb.Len() != 3 || lb.Limit() != 3 || lb.Best() != 300 {
		t.Errorf("Len/Limit/Best = %d/%d/%d", lb.Len(), lb.Limit(), lb.Best())
	}
}

func TestLeaderboardReplace(t *testing.T) {
	lb := NewLeaderboard(2)
	lb.Replace([]Entry{{Name: "x", Score: 1}, {Name: "y", Score: 9}, {Name: "z", Score: 5}})

	if got := names(lb.Entries()); !equal(got, []string{"y", "z"}) {
		t.Errorf("Replace = %v", got)
	}

	lb.Clear()
	if lb.Len() != 0 || lb.Best() != 0 {
		t.Error("Clear should empty the table")
	}
}

func TestLeaderboardTopAndCopies(t *testing.T) {
	lb := NewLeaderboard(0)
	if lb.Limit() != DefaultLimit {
		t.Errorf("Limit = %d, want default", lb.Limit())
	}
	lb.Insert(Entry{Name: "a", Score: 3})
	lb.Insert(Entry{Name: "b", Score: 2})

	if len(lb.Top(1)) != 1 || len(lb.Top(10)) != 2 || len(lb.Top(-1)) != 0 {
		t.Error("Top bounds wrong")
	}

	out := lb.Entries()
	out[0].Name = "mutated"
	if lb.Entries()[0].Name != "a" {
		t.Error("Entries should return a copy")
	}
}
