package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	gorilla "github.com/gorilla/websocket"

	"github.com/rocketscienceinc/tictactoe-relay/internal/config"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
	"github.com/rocketscienceinc/tictactoe-relay/internal/pkg"
)

type roomRegistry interface {
	Join(roomID, playerID string) (*entity.Player, []*entity.Player, error)
	Relay(roomID, senderID string) []*entity.Player
	Leave(playerID string) (string, []*entity.Player)
	Member(playerID string) (*entity.Player, bool)
}

type handlerFunc func(ctx context.Context, client *connection, raw []byte) error

// Server upgrades HTTP requests to websocket connections and relays game messages
// between the members of a room. It keeps no game state of its own.
type Server struct {
	logger   *slog.Logger
	registry roomRegistry
	conf     config.Relay
	validate *validator.Validate
	upgrader gorilla.Upgrader
	handlers map[string]handlerFunc

	connectionsMutex sync.RWMutex
	connections      map[string]*connection
}

func New(logger *slog.Logger, registry roomRegistry, conf config.Relay) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		registry:    registry,
		conf:        conf,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		connections: make(map[string]*connection),
	}

	server.upgrader = gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     server.checkOrigin,
	}

	server.handlers = map[string]handlerFunc{
		entity.MessageJoin:  server.handleJoin,
		entity.MessageMove:  server.handleMove,
		entity.MessageTie:   server.forward(entity.MessageTie),
		entity.MessageReset: server.forward(entity.MessageReset),
	}

	return server
}

func (that *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "ServeHTTP")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("failed to upgrade connection", "remote", r.RemoteAddr, "error", err)
		return
	}

	client := newConnection(pkg.GenerateConnectionID(), conn, that.conf.SendBuffer)
	that.register(client)

	log.Info("websocket connection established", "connectionID", client.id, "remote", r.RemoteAddr)

	go client.writePump()
	defer that.handleDisconnect(client)

	if err = that.handleMessages(r.Context(), client); err != nil {
		log.Warn("connection closed with error", "connectionID", client.id, "error", err)
	}
}

// Connections returns the number of open connections.
func (that *Server) Connections() int {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	return len(that.connections)
}

// Shutdown closes every open connection. Their read loops then run the usual disconnect path.
func (that *Server) Shutdown() {
	that.connectionsMutex.RLock()
	clients := make([]*connection, 0, len(that.connections))
	for _, client := range that.connections {
		clients = append(clients, client)
	}
	that.connectionsMutex.RUnlock()

	for _, client := range clients {
		client.close()
	}

	that.logger.Info("websocket connections closed", "count", len(clients))
}

func (that *Server) handleMessages(ctx context.Context, client *connection) error {
	log := that.logger.With("method", "handleMessages", "connectionID", client.id)

	client.conn.SetReadLimit(that.conf.ReadLimit)
	_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, raw, err := client.conn.ReadMessage()
		if err != nil {
			if gorilla.IsUnexpectedCloseError(err, gorilla.CloseNormalClosure, gorilla.CloseGoingAway, gorilla.CloseNoStatusReceived) {
				return fmt.Errorf("failed to read message: %w", err)
			}

			return nil
		}

		_ = client.conn.SetReadDeadline(time.Now().Add(pongWait))

		if messageType != gorilla.TextMessage {
			log.Debug("non-text frame ignored")
			continue
		}

		var envelope entity.Message
		if err = json.Unmarshal(raw, &envelope); err != nil {
			log.Warn("malformed message dropped", "error", err)
			continue
		}

		handler, ok := that.handlers[envelope.Type]
		if !ok {
			log.Debug("unknown message type ignored", "type", envelope.Type)
			continue
		}

		if err = handler(ctx, client, raw); err != nil {
			log.Warn("error processing message", "type", envelope.Type, "error", err)
		}
	}
}

func (that *Server) checkOrigin(r *http.Request) bool {
	if len(that.conf.AllowedOrigins) == 0 {
		return true
	}

	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	return slices.Contains(that.conf.AllowedOrigins, origin)
}

func (that *Server) register(client *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	that.connections[client.id] = client
}

func (that *Server) unregister(client *connection) {
	that.connectionsMutex.Lock()
	defer that.connectionsMutex.Unlock()

	delete(that.connections, client.id)
}

func (that *Server) lookup(id string) (*connection, bool) {
	that.connectionsMutex.RLock()
	defer that.connectionsMutex.RUnlock()

	client, ok := that.connections[id]

	return client, ok
}
