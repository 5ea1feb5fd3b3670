package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

func TestRandomMove(t *testing.T) {
	t.Run("Only empty cells are chosen", func(t *testing.T) {
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerO, "", entity.PlayerO,
			entity.PlayerX, entity.PlayerO, "",
		}

		for range 50 {
			cell, err := RandomMove(board)
			require.NoError(t, err)
			assert.Contains(t, []int{4, 8}, cell)
		}
	})

	t.Run("A full board has no moves", func(t *testing.T) {
		board := entity.Board{
			entity.PlayerX, entity.PlayerO, entity.PlayerX,
			entity.PlayerX, entity.PlayerO, entity.PlayerO,
			entity.PlayerO, entity.PlayerX, entity.PlayerX,
		}

		_, err := RandomMove(board)
		assert.ErrorIs(t, err, ErrNoAvailableMoves)
	})
}
