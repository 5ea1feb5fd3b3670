package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/pkg"
)

const qrSize = 256

type roomDirectory interface {
	GetByID(ctx context.Context, id string) (*entity.RoomSnapshot, error)
}

type handlers struct {
	logger    *slog.Logger
	directory roomDirectory
	stats     func() entity.RoomStats
	publicURL string
}

type createRoomResponse struct {
	RoomID string `json:"roomId"`
	URL    string `json:"url"`
}

func (that *handlers) CreateRoom(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	roomID := pkg.GenerateRoomID()

	that.writeJSON(w, http.StatusCreated, createRoomResponse{
		RoomID: roomID,
		URL:    pkg.ShareURL(that.publicURL, roomID),
	})
}

func (that *handlers) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	log := that.logger.With("method", "GetRoom")

	snapshot, err := that.directory.GetByID(r.Context(), ps.ByName("id"))
	if errors.Is(err, apperror.ErrNotFound) {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	if err != nil {
		log.Error("failed to get room", "roomID", ps.ByName("id"), "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	that.writeJSON(w, http.StatusOK, snapshot)
}

// RoomQR renders the share link of a room as a PNG. The room does not have to exist yet.
func (that *handlers) RoomQR(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("id")
	if len(roomID) > entity.MaxRoomIDLength {
		http.Error(w, "room id is too long", http.StatusBadRequest)
		return
	}

	png, err := qrcode.Encode(pkg.ShareURL(that.publicURL, roomID), qrcode.Medium, qrSize)
	if err != nil {
		that.logger.Error("failed to encode qr code", "roomID", roomID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(png); err != nil {
		that.logger.Warn("failed to write qr code", "error", err)
	}
}

func (that *handlers) Stats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	that.writeJSON(w, http.StatusOK, that.stats())
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Warn("failed to write response", "error", err)
	}
}
