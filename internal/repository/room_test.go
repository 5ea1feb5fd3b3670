package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/testing/suite"
)

func TestRoomRepository_CreateOrUpdate(t *testing.T) {
	ctx, st := suite.New(t)

	roomRepo := NewRoomRepository(st.Storage, time.Minute)

	// Given: a waiting room
	room := &entity.RoomSnapshot{
		ID:      "r1",
		State:   entity.RoomWaiting,
		Members: 1,
		Marks:   []entity.Symbol{entity.PlayerX},
	}

	// When: CreateOrUpdate is called
	err := roomRepo.CreateOrUpdate(ctx, room)

	// Then: no error is returned and the key expires
	require.NoError(t, err)

	ttl, err := st.Storage.TTL(ctx, "room:r1").Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}

func TestRoomRepository_GetByID(t *testing.T) {
	t.Run("GetByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage, 0)

		// Given: a room that became active
		room := &entity.RoomSnapshot{ID: "r1", State: entity.RoomWaiting, Members: 1}
		require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))

		room.State = entity.RoomActive
		room.Members = 2
		require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))

		// When: GetByID is called
		retrievedRoom, err := roomRepo.GetByID(ctx, room.ID)

		// Then: the latest snapshot is returned
		require.NoError(t, err)
		assert.Equal(t, room.ID, retrievedRoom.ID)
		assert.Equal(t, entity.RoomActive, retrievedRoom.State)
		assert.Equal(t, 2, retrievedRoom.Members)
	})

	t.Run("GetByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage, 0)

		// When: GetByID is called with an unknown id
		retrievedRoom, err := roomRepo.GetByID(ctx, "9999999")

		// Then: a not found error is returned
		require.ErrorIs(t, err, apperror.ErrNotFound)
		assert.Nil(t, retrievedRoom)
	})
}

func TestRoomRepository_DeleteByID(t *testing.T) {
	t.Run("DeleteByID_Success", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage, 0)

		// Given: a stored room
		room := &entity.RoomSnapshot{ID: "r1", State: entity.RoomWaiting, Members: 1}
		require.NoError(t, roomRepo.CreateOrUpdate(ctx, room))

		// When: DeleteByID is called
		err := roomRepo.DeleteByID(ctx, room.ID)

		// Then: the room is gone
		require.NoError(t, err)

		_, err = roomRepo.GetByID(ctx, room.ID)
		require.ErrorIs(t, err, ErrRoomNotFound)
	})

	t.Run("DeleteByID_NotFound", func(t *testing.T) {
		ctx, st := suite.New(t)

		roomRepo := NewRoomRepository(st.Storage, 0)

		// When: DeleteByID is called with an unknown id
		err := roomRepo.DeleteByID(ctx, "9999999")

		// Then: ErrRoomNotFound is returned
		require.ErrorIs(t, err, ErrRoomNotFound)
	})
}
