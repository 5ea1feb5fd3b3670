package client

import (
	"fmt"
	"strings"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

// FormatBoard draws the board as three rows; empty cells show their position.
func FormatBoard(board entity.Board) string {
	var sb strings.Builder

	for row := 0; row < 3; row++ {
		if row > 0 {
			sb.WriteString("---+---+---\n")
		}

		for col := 0; col < 3; col++ {
			cell := row*3 + col
			mark := string(board[cell])
			if board[cell] == entity.EmptyCell {
				mark = fmt.Sprint(cell)
			}

			if col > 0 {
				sb.WriteString("|")
			}
			sb.WriteString(" " + mark + " ")
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// Describe renders an event as a status line for a terminal.
func Describe(event Event) string {
	state := event.State

	switch event.Kind {
	case EventStarted:
		if !state.Ready {
			return fmt.Sprintf("You are %s. Waiting for an opponent...", state.Symbol)
		}
		return fmt.Sprintf("You are %s. %s", state.Symbol, turnLine(state))
	case EventBoardChanged:
		return turnLine(state)
	case EventGameOver:
		switch {
		case state.Outcome.Tie:
			return "It's a tie!"
		case state.Outcome.Winner == state.Symbol:
			return fmt.Sprintf("You win on %v!", state.Outcome.Line)
		default:
			return fmt.Sprintf("%s wins on %v.", state.Outcome.Winner, state.Outcome.Line)
		}
	case EventCountdown:
		return fmt.Sprintf("New game in %d...", event.Step)
	case EventReset:
		return "New game. " + turnLine(state)
	case EventOpponentLeft:
		return "Your opponent left the room."
	case EventError:
		return fmt.Sprintf("Error: %v", event.Err)
	default:
		return ""
	}
}

func turnLine(state State) string {
	if state.MyTurn {
		return "Your turn."
	}

	return "Opponent's turn."
}
