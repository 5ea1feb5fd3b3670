package entity

import (
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
)

type Symbol string

const (
	PlayerX Symbol = "X"
	PlayerO Symbol = "O"

	EmptyCell Symbol = ""
)

const BoardSize = 9

var (
	ErrInvalidCell   = errors.New("invalid cell index")
	ErrInvalidSymbol = errors.New("invalid symbol")

	// WinCombos lists rows, then columns, then diagonals. CheckWin relies on this order.
	WinCombos = [8][3]int{
		{0, 1, 2},
		{3, 4, 5},
		{6, 7, 8},
		{0, 3, 6},
		{1, 4, 7},
		{2, 5, 8},
		{0, 4, 8},
		{2, 4, 6},
	}
)

func (that Symbol) IsValid() bool {
	return that == PlayerX || that == PlayerO
}

func (that Symbol) Opponent() Symbol {
	switch that {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	default:
		return EmptyCell
	}
}

// WinningLine holds the three row-major cell positions of a completed line.
type WinningLine [3]int

// Board is a 3x3 grid in row-major order.
type Board [BoardSize]Symbol

// Outcome describes a board after a move. A zero Outcome means the game goes on.
type Outcome struct {
	Winner Symbol
	Line   WinningLine
	Tie    bool
}

func (that Outcome) IsOver() bool {
	return that.Winner != EmptyCell || that.Tie
}

// CheckWin returns the first completed line in WinCombos order.
func (that *Board) CheckWin() (WinningLine, bool) {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return WinningLine(combo), true
		}
	}

	return WinningLine{}, false
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

// Outcome checks for a win first; a full board is a tie only when nobody won.
func (that *Board) Outcome() Outcome {
	if line, ok := that.CheckWin(); ok {
		return Outcome{Winner: that[line[0]], Line: line}
	}

	if that.IsFull() {
		return Outcome{Tie: true}
	}

	return Outcome{}
}

func (that *Board) Place(cell int, symbol Symbol) error {
	if cell < 0 || cell >= BoardSize {
		return fmt.Errorf("%w: cell %d", ErrInvalidCell, cell)
	}

	if !symbol.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}

	if that[cell] != EmptyCell {
		return apperror.ErrCellOccupied
	}

	that[cell] = symbol

	return nil
}

func (that *Board) IsEmpty(cell int) bool {
	return cell >= 0 && cell < BoardSize && that[cell] == EmptyCell
}

func (that *Board) Reset() {
	*that = Board{}
}
