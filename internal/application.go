package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rocketscienceinc/tictactoe-relay/internal/config"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository"
	"github.com/rocketscienceinc/tictactoe-relay/internal/repository/storage"
	"github.com/rocketscienceinc/tictactoe-relay/internal/usecase"
	"github.com/rocketscienceinc/tictactoe-relay/transport/rest"
	"github.com/rocketscienceinc/tictactoe-relay/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

type roomDirectory interface {
	GetByID(ctx context.Context, id string) (*entity.RoomSnapshot, error)
}

// RunApp - runs the relay until SIGINT or SIGTERM.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		select {
		case sig := <-sigs:
			log.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	return Run(ctx, logger, conf)
}

// Run wires the relay and serves it until ctx is canceled.
func Run(ctx context.Context, logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	registry := usecase.NewRoomRegistry(logger)

	var directory roomDirectory = registry

	if conf.Redis.Enabled {
		redisAddrString := conf.Redis.GetRedisAddr()
		if conf.Redis.Host == "" || conf.Redis.Port == "" {
			return ErrAddrNotFound
		}

		redisStorage, err := storage.New(ctx, redisAddrString)
		if err != nil {
			return fmt.Errorf("could not connect to redis storage: %w", err)
		}

		defer func() {
			if err = redisStorage.Close(); err != nil {
				log.Error("could not close redis storage", "error", err)
			}
		}()

		roomRepo := repository.NewRoomRepository(redisStorage, conf.Redis.TTL)
		mirror := usecase.NewRoomMirror(logger, roomRepo, conf.Relay.MirrorBuffer).
			WithRefresh(conf.Redis.TTL / 2)
		go func() {
			if mirrorErr := mirror.Run(ctx); mirrorErr != nil {
				log.Error("room mirror stopped", "error", mirrorErr)
			}
		}()

		registry.WithObserver(mirror)
		directory = roomRepo

		log.Info("Room directory mirrored to redis", "addr", redisAddrString)
	}

	wsServer := websocket.New(logger, registry, conf.Relay)

	stats := func() entity.RoomStats {
		roomStats := registry.Stats()
		roomStats.Connections = wsServer.Connections()

		return roomStats
	}

	router := rest.NewRouter(logger, directory, stats, conf.PublicURL, wsServer)

	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.Port)
		httpErrCh <- rest.Start(ctx, conf.Port, router, wsServer.Shutdown)
	}()

	select {
	case err := <-httpErrCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")

		if err := <-httpErrCh; err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}

		return nil
	}
}
