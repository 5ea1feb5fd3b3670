package client

import (
	"errors"
	"math/rand"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

var ErrNoAvailableMoves = errors.New("no available moves")

// RandomMove picks one of the empty cells of board.
func RandomMove(board entity.Board) (int, error) {
	availableCells := make([]int, 0, len(board))
	for i := range board {
		if board.IsEmpty(i) {
			availableCells = append(availableCells, i)
		}
	}

	if len(availableCells) == 0 {
		return 0, ErrNoAvailableMoves
	}

	return availableCells[rand.Intn(len(availableCells))], nil //nolint: gosec // it's ok
}
