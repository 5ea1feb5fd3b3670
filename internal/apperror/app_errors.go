package apperror

import "errors"

var (
	ErrGameFinished     = errors.New("game is already finished")
	ErrGameIsNotStarted = errors.New("game is not started")
	ErrNotYourTurn      = errors.New("it's not your turn")
	ErrCellOccupied     = errors.New("cell is already occupied")

	ErrRoomFull      = errors.New("room is full")
	ErrRoomClosed    = errors.New("room is closed")
	ErrAlreadyJoined = errors.New("connection already joined a room")
	ErrNotJoined     = errors.New("connection has not joined a room")
	ErrInvalidRoomID = errors.New("invalid room id")
	ErrNotFound      = errors.New("not found")
)
