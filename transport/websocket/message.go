package websocket

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const (
	codeRoomFull      = "room_full"
	codeRoomClosed    = "room_closed"
	codeAlreadyJoined = "already_joined"
	codeNotJoined     = "not_joined"
	codeInvalidRoom   = "invalid_room"
	codeInternal      = "internal"
)

type joinRequest struct {
	RoomID string `json:"roomId" validate:"required"`
}

type moveRequest struct {
	Position *int          `json:"position" validate:"required,min=0,max=8"`
	Symbol   entity.Symbol `json:"symbol" validate:"required,oneof=X O"`
}

// decode unmarshals a raw message into dst and checks its required fields.
func (that *Server) decode(raw []byte, dst any) error {
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to unmarshal message: %w", err)
	}

	if err := that.validate.Struct(dst); err != nil {
		return fmt.Errorf("failed to validate message: %w", err)
	}

	return nil
}

func encode(msg entity.Message) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s message: %w", msg.Type, err)
	}

	return payload, nil
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, apperror.ErrRoomFull):
		return codeRoomFull
	case errors.Is(err, apperror.ErrRoomClosed):
		return codeRoomClosed
	case errors.Is(err, apperror.ErrAlreadyJoined):
		return codeAlreadyJoined
	case errors.Is(err, apperror.ErrNotJoined):
		return codeNotJoined
	case errors.Is(err, apperror.ErrInvalidRoomID):
		return codeInvalidRoom
	default:
		return codeInternal
	}
}
