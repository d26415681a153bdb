package game

import "testing"

func fillRow(b *Board, y int, except ...int) {
	skip := make(map[int]bool, len(except))
	for _, x := range except {
		skip[x] = true
	}
	for x := 0; x < Width; x++ {
		if !skip[x] {
			b[y][x] = 1
		}
	}
}

func TestInBounds(t *testing.T) {
	tests := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{Width - 1, Height - 1, true},
		{-1, 0, false},
		{Width, 0, false},
		{0, -1, false},
		{0, Height, false},
	}
	for _, tt := range tests {
		if got := InBounds(tt.x, tt.y); got != tt.want {
			t.Errorf("InBounds(%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRowFull(t *testing.T) {
	var b Board
	fillRow(&b, 19, 0)
	if b.RowFull(19) {
		t.Error("row with a gap should not be full")
	}
	b[19][0] = 3
	if !b.RowFull(19) {
		t.Error("row should be full")
	}
}

func TestClearFullRowsShiftsDown(t *testing.T) {
	var b Board
	fillRow(&b, 19)
	fillRow(&b, 18)
	fillRow(&b, 17, 4) // not full
	b[16][2] = 5

	if n := b.clearFullRows(); n != 2 {
		t.Fatalf("cleared %d rows, want 2", n)
	}

	// Rows above moved down by exactly two
	if b[18][2] != 5 {
		t.Errorf("marker at (2,16) should now be at (2,18), got %v", b[18][2])
	}
	if b.RowFull(19) {
		t.Error("row 19 should hold the former row 17")
	}
	if !b[19][4].Empty() || b[19][0].Empty() {
		t.Error("former row 17 pattern not preserved")
	}
	// Nine cells from the old row 17 plus the marker
	if b.Filled() != Width {
		t.Errorf("Filled = %d, want %d", b.Filled(), Width)
	}
}

func TestClearFullRowsNonAdjacent(t *testing.T) {
	var b Board
	fillRow(&b, 19)
	fillRow(&b, 18, 0)
	fillRow(&b, 17)

	if n := b.clearFullRows(); n != 2 {
		t.Fatalf("cleared %d rows, want 2", n)
	}
	if !b[19][0].Empty() || b.Filled() != Width-1 {
		t.Errorf("remaining row should be the gapped one, filled = %d", b.Filled())
	}
}

func TestFilled(t *testing.T) {
	var b Board
	if b.Filled() != 0 {
		t.Fatal("new board should be empty")
	}
	b[0][0], b[5][5] = 1, 2
	if b.Filled() != 2 {
		t.Errorf("Filled = %d, want 2", b.Filled())
	}
}
