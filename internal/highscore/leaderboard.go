package highscore

import "sort"

// DefaultLimit is how many entries a table keeps unless told otherwise.
const DefaultLimit = 10

// Leaderboard is a score table kept sorted best-first and capped at Limit.
// Equal scores keep insertion order.
//
// Operations:
//   - Insert: append, re-sort, truncate
//   - Replace: adopt a fetched table wholesale
//   - Top: first n entries
type Leaderboard struct {
	entries []Entry
	limit   int
}

// NewLeaderboard creates an empty table. A limit below 1 uses DefaultLimit.
func NewLeaderboard(limit int) *Leaderboard {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Leaderboard{
		entries: make([]Entry, 0, limit+1),
		limit:   limit,
	}
}

// Limit returns the maximum number of entries kept.
func (lb *Leaderboard) Limit() int { return lb.limit }

// Len returns the number of entries.
func (lb *Leaderboard) Len() int { return len(lb.entries) }

// Insert adds an entry and returns its 1-based rank, or 0 if it fell off the table.
func (lb *Leaderboard) Insert(entry Entry) int {
	lb.entries = append(lb.entries, entry)
	pos := len(lb.entries) - 1
	// Bubble the new entry up past strictly lower scores so ties stay in arrival order
	for pos > 0 && lb.entries[pos-1].Score < entry.Score {
		lb.entries[pos-1], lb.entries[pos] = lb.entries[pos], lb.entries[pos-1]
		pos--
	}
	lb.truncate()
	if pos >= lb.limit {
		return 0
	}
	return pos + 1
}

// Replace swaps the table contents for entries, sorting and truncating them.
func (lb *Leaderboard) Replace(entries []Entry) {
	lb.entries = lb.entries[:0]
	lb.entries = append(lb.entries, entries...)
	SortEntries(lb.entries)
	lb.truncate()
}

// Entries returns a copy of the table.
func (lb *Leaderboard) Entries() []Entry {
	out := make([]Entry, len(lb.entries))
	copy(out, lb.entries)
	return out
}

// Top returns a copy of the first n entries.
func (lb *Leaderboard) Top(n int) []Entry {
	if n > len(lb.entries) {
		n = len(lb.entries)
	}
	if n < 0 {
		n = 0
	}
	out := make([]Entry, n)
	copy(out, lb.entries[:n])
	return out
}

// Best returns the highest score, or 0 for an empty table.
func (lb *Leaderboard) Best() int {
	if len(lb.entries) == 0 {
		return 0
	}
	return lb.entries[0].Score
}

// Clear removes every entry.
func (lb *Leaderboard) Clear() {
	lb.entries = lb.entries[:0]
}

func (lb *Leaderboard) truncate() {
	if len(lb.entries) > lb.limit {
		lb.entries = lb.entries[:lb.limit]
	}
}

// SortEntries orders entries best score first, keeping the relative order of ties.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
}
