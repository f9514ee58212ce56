package game

const (
	Empty = " "
	SignX = "X"
	SignO = "O"
)

// Board is the 3x3 grid. b[x] is row x; cells hold Empty, SignX or SignO.
// It marshals as the wire format expects: an array of three 3-element
// string arrays.
type Board [3][3]string

func NewBoard() Board {
	var b Board
	for x := range b {
		for y := range b[x] {
			b[x][y] = Empty
		}
	}
	return b
}

func (b Board) InRange(x, y int) bool {
	return x >= 0 && x < 3 && y >= 0 && y < 3
}

// LineThrough reports whether the cell at (x, y) completes a full row,
// column, or a diagonal it lies on. Only the lines touched by the cell are
// examined, so it must be called right after the cell is placed.
func (b Board) LineThrough(x, y int) bool {
	if b[x][0] == b[x][1] && b[x][1] == b[x][2] {
		return true
	}
	if b[0][y] == b[1][y] && b[1][y] == b[2][y] {
		return true
	}
	if x == y && b[0][0] == b[1][1] && b[1][1] == b[2][2] {
		return true
	}
	if x+y == 2 && b[0][2] == b[1][1] && b[1][1] == b[2][0] {
		return true
	}
	return false
}

func (b Board) EmptyCells() [][2]int {
	var cells [][2]int
	for x := range b {
		for y := range b[x] {
			if b[x][y] == Empty {
				cells = append(cells, [2]int{x, y})
			}
		}
	}
	return cells
}
