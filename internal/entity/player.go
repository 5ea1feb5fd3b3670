package entity

// Player is a connection's membership record: which room it sits in and which mark it plays.
type Player struct {
	ID     string `json:"id"`
	Mark   Symbol `json:"mark,omitempty"`
	RoomID string `json:"room_id,omitempty"`
}
