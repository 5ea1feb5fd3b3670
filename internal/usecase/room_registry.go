package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

type roomObserver interface {
	Publish(snapshot entity.RoomSnapshot)
}

// RoomRegistry maps room ids to their players. It only keeps player records;
// the connections behind them belong to the transport.
type RoomRegistry struct {
	logger   *slog.Logger
	observer roomObserver

	mu      sync.Mutex
	rooms   map[string]*entity.Room
	players map[string]*entity.Player
}

func NewRoomRegistry(logger *slog.Logger) *RoomRegistry {
	return &RoomRegistry{
		logger:  logger.With("component", "room_registry"),
		rooms:   make(map[string]*entity.Room),
		players: make(map[string]*entity.Player),
	}
}

// WithObserver registers an observer that receives a snapshot after every room change.
func (that *RoomRegistry) WithObserver(observer roomObserver) *RoomRegistry {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.observer = observer

	return that
}

// Join puts playerID into roomID. The first entrant gets X, the second O.
// It returns the joined player and the room's players in join order.
func (that *RoomRegistry) Join(roomID, playerID string) (*entity.Player, []*entity.Player, error) {
	roomID = strings.TrimSpace(roomID)
	if roomID == "" || len(roomID) > entity.MaxRoomIDLength {
		return nil, nil, fmt.Errorf("%w: %q", apperror.ErrInvalidRoomID, roomID)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if existing, ok := that.players[playerID]; ok {
		return nil, nil, fmt.Errorf("%w: room %s", apperror.ErrAlreadyJoined, existing.RoomID)
	}

	room, ok := that.rooms[roomID]
	if !ok {
		room = entity.NewRoom(roomID)
		that.rooms[roomID] = room
	}

	switch {
	case room.IsActive() && len(room.Players) >= entity.RoomCapacity:
		return nil, nil, fmt.Errorf("%w: room %s", apperror.ErrRoomFull, roomID)
	case room.IsActive():
		return nil, nil, fmt.Errorf("%w: room %s", apperror.ErrRoomClosed, roomID)
	}

	player := &entity.Player{
		ID:     playerID,
		Mark:   room.NextMark(),
		RoomID: roomID,
	}

	room.Players = append(room.Players, player)
	if len(room.Players) == entity.RoomCapacity {
		room.Active = true
	}

	that.players[playerID] = player
	that.publishLocked(room)

	that.logger.Debug("player joined room", "roomID", roomID, "playerID", playerID, "mark", player.Mark)

	return copyPlayer(player), copyPlayers(room.Players), nil
}

// Relay returns every player of roomID except the sender.
func (that *RoomRegistry) Relay(roomID, senderID string) []*entity.Player {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return nil
	}

	recipients := make([]*entity.Player, 0, len(room.Players))
	for _, player := range room.Players {
		if player.ID == senderID {
			continue
		}

		recipients = append(recipients, copyPlayer(player))
	}

	return recipients
}

// Leave removes playerID from its room and deletes the room once it is empty.
// It returns the room id and the players still in it; an unknown player is a no-op.
func (that *RoomRegistry) Leave(playerID string) (string, []*entity.Player) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[playerID]
	if !ok {
		return "", nil
	}

	delete(that.players, playerID)

	room, ok := that.rooms[player.RoomID]
	if !ok {
		return "", nil
	}

	remaining := room.Players[:0]
	for _, member := range room.Players {
		if member.ID != playerID {
			remaining = append(remaining, member)
		}
	}
	room.Players = remaining

	if room.IsEmpty() {
		delete(that.rooms, room.ID)
		that.logger.Debug("room removed", "roomID", room.ID)
	}

	that.publishLocked(room)

	return room.ID, copyPlayers(room.Players)
}

// Member returns the membership record of playerID.
func (that *RoomRegistry) Member(playerID string) (*entity.Player, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	player, ok := that.players[playerID]
	if !ok {
		return nil, false
	}

	return copyPlayer(player), true
}

func (that *RoomRegistry) Snapshot(roomID string) (entity.RoomSnapshot, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	room, ok := that.rooms[roomID]
	if !ok {
		return entity.RoomSnapshot{}, false
	}

	return room.Snapshot(), true
}

// GetByID lets the registry serve as the room directory when no shared one is configured.
func (that *RoomRegistry) GetByID(_ context.Context, id string) (*entity.RoomSnapshot, error) {
	snapshot, ok := that.Snapshot(id)
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, apperror.ErrNotFound)
	}

	return &snapshot, nil
}

func (that *RoomRegistry) Stats() entity.RoomStats {
	that.mu.Lock()
	defer that.mu.Unlock()

	stats := entity.RoomStats{Rooms: len(that.rooms)}
	for _, room := range that.rooms {
		switch room.State() {
		case entity.RoomWaiting:
			stats.Waiting++
		case entity.RoomActive:
			stats.Active++
		case entity.RoomEmpty:
		}
	}

	return stats
}

func (that *RoomRegistry) publishLocked(room *entity.Room) {
	if that.observer == nil {
		return
	}

	that.observer.Publish(room.Snapshot())
}

func copyPlayer(player *entity.Player) *entity.Player {
	clone := *player
	return &clone
}

func copyPlayers(players []*entity.Player) []*entity.Player {
	out := make([]*entity.Player, 0, len(players))
	for _, player := range players {
		out = append(out, copyPlayer(player))
	}

	return out
}
