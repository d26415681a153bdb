package game

import "math/rand"

// Shape identifies one of the seven tetrominoes.
type Shape uint8

const (
	ShapeI Shape = iota
	ShapeJ
	ShapeL
	ShapeO
	ShapeS
	ShapeT
	ShapeZ
)

// ShapeCount is the number of distinct tetrominoes.
const ShapeCount = 7

// String returns the conventional letter for the shape.
func (s Shape) String() string {
	switch s {
	case ShapeI:
		return "I"
	case ShapeJ:
		return "J"
	case ShapeL:
		return "L"
	case ShapeO:
		return "O"
	case ShapeS:
		return "S"
	case ShapeT:
		return "T"
	case ShapeZ:
		return "Z"
	default:
		return "?"
	}
}

// Color is the cell value the shape paints into the board (1-7).
func (s Shape) Color() Cell { return Cell(s) + 1 }

// Matrix is a piece bounding box indexed [row][column].
type Matrix [PieceSize][PieceSize]Cell

// Spawn orientations, one per shape.
var shapeMatrices = [ShapeCount]Matrix{
	// I
	{{0, 0, 0, 0}, {1, 1, 1, 1}, {0, 0, 0, 0}, {0, 0, 0, 0}},
	// J
	{{2, 0, 0, 0}, {2, 2, 2, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
	// L
	{{0, 0, 3, 0}, {3, 3, 3, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
	// O
	{{0, 4, 4, 0}, {0, 4, 4, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
	// S
	{{0, 5, 5, 0}, {5, 5, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
	// T
	{{0, 6, 0, 0}, {6, 6, 6, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
	// Z
	{{7, 7, 0, 0}, {0, 7, 7, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
}

// MatrixFor returns the spawn orientation of a shape.
func MatrixFor(s Shape) Matrix {
	if int(s) >= ShapeCount {
		return Matrix{}
	}
	return shapeMatrices[s]
}

// RandomShape picks uniformly among the seven shapes with no history.
func RandomShape(rng *rand.Rand) Shape {
	return Shape(rng.Intn(ShapeCount))
}

// Rotate returns the matrix turned 90 degrees clockwise.
// The receiver is a copy, so m is never modified.
func (m Matrix) Rotate() Matrix {
	var out Matrix
	for y := 0; y < PieceSize; y++ {
		for x := 0; x < PieceSize; x++ {
			out[x][PieceSize-1-y] = m[y][x]
		}
	}
	return out
}

// Empty reports whether the matrix has no filled cells.
func (m Matrix) Empty() bool {
	for y := range m {
		for x := range m[y] {
			if !m[y][x].Empty() {
				return false
			}
		}
	}
	return true
}

// Cells calls fn for every filled cell with its offset inside the box.
func (m Matrix) Cells(fn func(x, y int, c Cell)) {
	for y := 0; y < PieceSize; y++ {
		for x := 0; x < PieceSize; x++ {
			if c := m[y][x]; !c.Empty() {
				fn(x, y, c)
			}
		}
	}
}
