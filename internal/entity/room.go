package entity

type RoomState string

const (
	RoomEmpty   RoomState = "empty"
	RoomWaiting RoomState = "waiting"
	RoomActive  RoomState = "active"
)

const RoomCapacity = 2

// MaxRoomIDLength bounds client-chosen room ids.
const MaxRoomIDLength = 64

// Room is an ordered list of at most two players. Once a second player joins the room
// stays active until it is empty again, even if one of them leaves.
type Room struct {
	ID      string
	Players []*Player
	Active  bool
}

func NewRoom(id string) *Room {
	return &Room{
		ID:      id,
		Players: make([]*Player, 0, RoomCapacity),
	}
}

func (that *Room) State() RoomState {
	switch {
	case len(that.Players) == 0:
		return RoomEmpty
	case that.Active:
		return RoomActive
	default:
		return RoomWaiting
	}
}

func (that *Room) IsEmpty() bool {
	return len(that.Players) == 0
}

func (that *Room) IsActive() bool {
	return that.State() == RoomActive
}

// NextMark is the mark for the next entrant: X for the first, O for the second.
func (that *Room) NextMark() Symbol {
	if len(that.Players) == 0 {
		return PlayerX
	}

	return PlayerO
}

func (that *Room) Snapshot() RoomSnapshot {
	marks := make([]Symbol, 0, len(that.Players))
	for _, player := range that.Players {
		marks = append(marks, player.Mark)
	}

	return RoomSnapshot{
		ID:      that.ID,
		State:   that.State(),
		Members: len(that.Players),
		Marks:   marks,
	}
}

// RoomSnapshot is the read-only view of a room shared with the room directory.
type RoomSnapshot struct {
	ID      string    `json:"id"`
	State   RoomState `json:"state"`
	Members int       `json:"members"`
	Marks   []Symbol  `json:"marks,omitempty"`
}

type RoomStats struct {
	Rooms       int `json:"rooms"`
	Waiting     int `json:"waiting"`
	Active      int `json:"active"`
	Connections int `json:"connections"`
}
