package entity

const (
	MessageJoin         = "join"
	MessageStart        = "start"
	MessageMove         = "move"
	MessageTie          = "tie"
	MessageReset        = "reset"
	MessageError        = "error"
	MessageOpponentLeft = "opponent_left"
)

// Message is the flat wire record exchanged over the relay. Type selects which of the
// other fields are meaningful.
type Message struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId,omitempty"`
	PlayerID Symbol `json:"playerId,omitempty"`
	Ready    bool   `json:"ready,omitempty"`
	Position *int   `json:"position,omitempty"`
	Symbol   Symbol `json:"symbol,omitempty"`
	Code     string `json:"code,omitempty"`
	Error    string `json:"message,omitempty"`
}

func NewJoinMessage(roomID string) Message {
	return Message{Type: MessageJoin, RoomID: roomID}
}

// NewStartMessage tells a client its mark. Ready is set once the room has both players.
func NewStartMessage(mark Symbol, ready bool) Message {
	return Message{Type: MessageStart, PlayerID: mark, Ready: ready}
}

func NewMoveMessage(position int, symbol Symbol) Message {
	return Message{Type: MessageMove, Position: &position, Symbol: symbol}
}

func NewTieMessage() Message {
	return Message{Type: MessageTie}
}

func NewResetMessage() Message {
	return Message{Type: MessageReset}
}

func NewErrorMessage(code, text string) Message {
	return Message{Type: MessageError, Code: code, Error: text}
}

func NewOpponentLeftMessage() Message {
	return Message{Type: MessageOpponentLeft}
}
