package game

import "math/rand"

// chooseMove picks a currently-empty cell uniformly at random. ok is false
// on a full board.
func chooseMove(b Board) (x, y int, ok bool) {
	cells := b.EmptyCells()
	if len(cells) == 0 {
		return 0, 0, false
	}
	c := cells[rand.Intn(len(cells))]
	return c[0], c[1], true
}
