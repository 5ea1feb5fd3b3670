package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

type roomDirectory interface {
	CreateOrUpdate(ctx context.Context, room *entity.RoomSnapshot) error
	DeleteByID(ctx context.Context, id string) error
}

// RoomMirror copies registry snapshots into a shared room directory from its own goroutine,
// so the relay never waits on the directory.
type RoomMirror struct {
	logger    *slog.Logger
	directory roomDirectory
	queue     chan entity.RoomSnapshot
	refresh   time.Duration

	// live is owned by Run.
	live map[string]entity.RoomSnapshot
}

func NewRoomMirror(logger *slog.Logger, directory roomDirectory, buffer int) *RoomMirror {
	if buffer <= 0 {
		buffer = 1
	}

	return &RoomMirror{
		logger:    logger.With("component", "room_mirror"),
		directory: directory,
		queue:     make(chan entity.RoomSnapshot, buffer),
		live:      make(map[string]entity.RoomSnapshot),
	}
}

// WithRefresh rewrites every live room each interval, so directory entries with a TTL
// outlive quiet rooms. Zero disables it. Call before Run.
func (that *RoomMirror) WithRefresh(interval time.Duration) *RoomMirror {
	that.refresh = interval

	return that
}

// Publish enqueues a snapshot and drops it when the queue is full.
func (that *RoomMirror) Publish(snapshot entity.RoomSnapshot) {
	select {
	case that.queue <- snapshot:
	default:
		that.logger.Warn("room mirror queue is full, snapshot dropped", "roomID", snapshot.ID, "state", snapshot.State)
	}
}

// Run drains the queue until ctx is canceled.
func (that *RoomMirror) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if that.refresh > 0 {
		ticker := time.NewTicker(that.refresh)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot := <-that.queue:
			that.apply(ctx, snapshot)
		case <-tick:
			that.refreshLive(ctx)
		}
	}
}

func (that *RoomMirror) apply(ctx context.Context, snapshot entity.RoomSnapshot) {
	log := that.logger.With("method", "apply", "roomID", snapshot.ID)

	if snapshot.State == entity.RoomEmpty {
		delete(that.live, snapshot.ID)

		err := that.directory.DeleteByID(ctx, snapshot.ID)
		if err != nil && !errors.Is(err, apperror.ErrNotFound) {
			log.Error("failed to delete room from directory", "error", err)
		}

		return
	}

	that.live[snapshot.ID] = snapshot

	if err := that.directory.CreateOrUpdate(ctx, &snapshot); err != nil {
		log.Error("failed to store room in directory", "error", err)
	}
}

func (that *RoomMirror) refreshLive(ctx context.Context) {
	log := that.logger.With("method", "refreshLive")

	for id, snapshot := range that.live {
		if err := that.directory.CreateOrUpdate(ctx, &snapshot); err != nil {
			log.Error("failed to refresh room in directory", "roomID", id, "error", err)
		}
	}
}
