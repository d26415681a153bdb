package game

const (
	Width     = 10 // Board columns
	Height    = 20 // Board rows
	PieceSize = 4  // Side of a piece bounding box
)

// Cell is a color index: 0 is empty, 1-7 identify the shape that filled it.
type Cell uint8

// Empty reports whether the cell holds no block.
func (c Cell) Empty() bool { return c == 0 }

// Board is the playfield, indexed [row][column] with row 0 at the top.
// It is an array so copies never alias the engine's grid.
type Board [Height][Width]Cell

// InBounds reports whether (x, y) addresses a board cell.
func InBounds(x, y int) bool {
	return x >= 0 && x < Width && y >= 0 && y < Height
}

// RowFull reports whether every column of row y is occupied.
func (b *Board) RowFull(y int) bool {
	for x := 0; x < Width; x++ {
		if b[y][x].Empty() {
			return false
		}
	}
	return true
}

// clearRow removes row y, shifts every row above it down by one and
// empties the top row.
func (b *Board) clearRow(y int) {
	for pull := y; pull > 0; pull-- {
		b[pull] = b[pull-1]
	}
	b[0] = [Width]Cell{}
}

// clearFullRows scans bottom to top and removes completed rows.
// A cleared index is examined again since the row above now occupies it.
func (b *Board) clearFullRows() int {
	cleared := 0
	for y := Height - 1; y >= 0; y-- {
		if !b.RowFull(y) {
			continue
		}
		cleared++
		b.clearRow(y)
		y++
	}
	return cleared
}

// Filled counts non-empty cells.
func (b *Board) Filled() int {
	n := 0
	for y := range b {
		for x := range b[y] {
			if !b[y][x].Empty() {
				n++
			}
		}
	}
	return n
}
