package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const roomKeyPrefix = "room:"

var ErrRoomNotFound = fmt.Errorf("room %w", apperror.ErrNotFound)

type RoomRepository interface {
	CreateOrUpdate(ctx context.Context, room *entity.RoomSnapshot) error
	GetByID(ctx context.Context, id string) (*entity.RoomSnapshot, error)
	DeleteByID(ctx context.Context, id string) error
}

type dbRoom struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoomRepository stores room snapshots under room:<id>. Entries expire after ttl
// so rooms of a crashed relay do not linger; zero disables expiry.
func NewRoomRepository(client *redis.Client, ttl time.Duration) RoomRepository {
	return &dbRoom{
		client: client,
		ttl:    ttl,
	}
}

func (that *dbRoom) CreateOrUpdate(ctx context.Context, room *entity.RoomSnapshot) error {
	roomJSON, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	if err = that.client.Set(ctx, roomKeyPrefix+room.ID, roomJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByID(ctx context.Context, id string) (*entity.RoomSnapshot, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to get room by id: %w", err)
	}

	var room entity.RoomSnapshot
	if err = json.Unmarshal([]byte(response), &room); err != nil {
		return nil, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return &room, nil
}

func (that *dbRoom) DeleteByID(ctx context.Context, id string) error {
	deleted, err := that.client.Del(ctx, roomKeyPrefix+id).Result()
	if err != nil {
		return fmt.Errorf("failed to delete room by id: %w", err)
	}

	if deleted == 0 {
		return ErrRoomNotFound
	}

	return nil
}
