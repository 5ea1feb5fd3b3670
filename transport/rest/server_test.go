package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

type stubDirectory struct {
	rooms map[string]*entity.RoomSnapshot
	err   error
}

func (that *stubDirectory) GetByID(_ context.Context, id string) (*entity.RoomSnapshot, error) {
	if that.err != nil {
		return nil, that.err
	}

	room, ok := that.rooms[id]
	if !ok {
		return nil, fmt.Errorf("room %s: %w", id, apperror.ErrNotFound)
	}

	return room, nil
}

func newTestRouter(directory roomDirectory) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	stats := func() entity.RoomStats {
		return entity.RoomStats{Rooms: 3, Waiting: 1, Active: 2, Connections: 5}
	}
	ws := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	return NewRouter(logger, directory, stats, "https://play.example/", ws)
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(method, target, nil))

	return recorder
}

func TestRouter_Ping(t *testing.T) {
	recorder := serve(newTestRouter(&stubDirectory{}), http.MethodGet, "/ping")

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "pong", recorder.Body.String())
}

func TestRouter_Rooms(t *testing.T) {
	t.Run("Creating a room returns a fresh id and its share link", func(t *testing.T) {
		// Given: a router
		router := newTestRouter(&stubDirectory{})

		// When: a room is requested
		recorder := serve(router, http.MethodPost, "/rooms")

		// Then: an id and link come back
		require.Equal(t, http.StatusCreated, recorder.Code)

		var body createRoomResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Len(t, body.RoomID, 8)
		assert.Equal(t, "https://play.example/?room="+body.RoomID, body.URL)
	})

	t.Run("A known room is returned", func(t *testing.T) {
		// Given: a directory with one waiting room
		router := newTestRouter(&stubDirectory{rooms: map[string]*entity.RoomSnapshot{
			"r1": {ID: "r1", State: entity.RoomWaiting, Members: 1, Marks: []entity.Symbol{entity.PlayerX}},
		}})

		// When: it is looked up
		recorder := serve(router, http.MethodGet, "/rooms/r1")

		// Then: its snapshot is returned
		require.Equal(t, http.StatusOK, recorder.Code)

		var snapshot entity.RoomSnapshot
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &snapshot))
		assert.Equal(t, "r1", snapshot.ID)
		assert.Equal(t, entity.RoomWaiting, snapshot.State)
		assert.Equal(t, 1, snapshot.Members)
	})

	t.Run("An unknown room is 404", func(t *testing.T) {
		recorder := serve(newTestRouter(&stubDirectory{}), http.MethodGet, "/rooms/nope")

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("A failing directory is 500", func(t *testing.T) {
		recorder := serve(newTestRouter(&stubDirectory{err: errors.New("connection refused")}), http.MethodGet, "/rooms/r1")

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	})
}

func TestRouter_RoomQR(t *testing.T) {
	t.Run("The share link is rendered as a PNG", func(t *testing.T) {
		recorder := serve(newTestRouter(&stubDirectory{}), http.MethodGet, "/rooms/r1/qr")

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "image/png", recorder.Header().Get("Content-Type"))

		img, err := png.Decode(bytes.NewReader(recorder.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, qrSize, img.Bounds().Dx())
	})

	t.Run("Overlong ids are rejected", func(t *testing.T) {
		recorder := serve(newTestRouter(&stubDirectory{}), http.MethodGet, "/rooms/"+string(bytes.Repeat([]byte("a"), 65))+"/qr")

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestRouter_Stats(t *testing.T) {
	recorder := serve(newTestRouter(&stubDirectory{}), http.MethodGet, "/stats")

	require.Equal(t, http.StatusOK, recorder.Code)

	var stats entity.RoomStats
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &stats))
	assert.Equal(t, entity.RoomStats{Rooms: 3, Waiting: 1, Active: 2, Connections: 5}, stats)
}

func TestRouter_WebsocketMounted(t *testing.T) {
	recorder := serve(newTestRouter(&stubDirectory{}), http.MethodGet, "/ws")

	assert.Equal(t, http.StatusTeapot, recorder.Code)
}

func TestStart(t *testing.T) {
	t.Run("Cancelling the context shuts the server down and runs the hooks", func(t *testing.T) {
		// Given: a running server
		ctx, cancel := context.WithCancel(context.Background())
		hookCalled := make(chan struct{})

		done := make(chan error, 1)
		go func() {
			done <- Start(ctx, "0", http.NotFoundHandler(), func() { close(hookCalled) })
		}()

		// When: the context is canceled
		time.Sleep(50 * time.Millisecond)
		cancel()

		// Then: Start returns cleanly after running the hook
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(shutdownTimeout + time.Second):
			t.Fatal("server did not shut down")
		}

		select {
		case <-hookCalled:
		case <-time.After(time.Second):
			t.Fatal("shutdown hook was not called")
		}
	})

	t.Run("A bad port is reported", func(t *testing.T) {
		err := Start(context.Background(), "not-a-port", http.NotFoundHandler())

		assert.Error(t, err)
	})
}
