package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const shutdownTimeout = 5 * time.Second

// NewRouter mounts the HTTP API next to the websocket endpoint at /ws.
func NewRouter(
	logger *slog.Logger,
	directory roomDirectory,
	stats func() entity.RoomStats,
	publicURL string,
	ws http.Handler,
) http.Handler {
	h := &handlers{
		logger:    logger.With("component", "rest"),
		directory: directory,
		stats:     stats,
		publicURL: publicURL,
	}

	router := httprouter.New()
	router.GET("/ping", h.Ping)
	router.POST("/rooms", h.CreateRoom)
	router.GET("/rooms/:id", h.GetRoom)
	router.GET("/rooms/:id/qr", h.RoomQR)
	router.GET("/stats", h.Stats)
	router.Handler(http.MethodGet, "/ws", ws)

	return router
}

// Start serves handler on port until ctx is canceled, then shuts down gracefully.
// onShutdown hooks run when shutdown begins; hijacked websocket connections are not
// tracked by net/http and have to be closed by one of them.
func Start(ctx context.Context, port string, handler http.Handler, onShutdown ...func()) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	for _, hook := range onShutdown {
		srv.RegisterOnShutdown(hook)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start server: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
