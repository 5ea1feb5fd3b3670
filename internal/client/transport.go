package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"nhooyr.io/websocket"

	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

const (
	writeTimeout = 10 * time.Second
	readLimit    = 4096
)

// WSTransport carries protocol messages to and from a relay.
type WSTransport struct {
	logger *slog.Logger
	conn   *websocket.Conn
}

// Dial connects to a relay websocket endpoint such as ws://localhost:8080/ws.
func Dial(ctx context.Context, logger *slog.Logger, url string) (*WSTransport, error) {
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	conn.SetReadLimit(readLimit)

	return &WSTransport{
		logger: logger.With("component", "ws_transport"),
		conn:   conn,
	}, nil
}

func (that *WSTransport) Send(ctx context.Context, msg entity.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", msg.Type, err)
	}

	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	if err = that.conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return fmt.Errorf("failed to write %s message: %w", msg.Type, err)
	}

	return nil
}

// Listen passes every decoded message to handle until the connection closes or ctx is done.
// A normal close returns nil.
func (that *WSTransport) Listen(ctx context.Context, handle func(entity.Message)) error {
	log := that.logger.With("method", "Listen")

	for {
		messageType, payload, err := that.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure || errors.Is(err, context.Canceled) {
				return nil
			}

			return fmt.Errorf("failed to read message: %w", err)
		}

		if messageType != websocket.MessageText {
			continue
		}

		var msg entity.Message
		if err = json.Unmarshal(payload, &msg); err != nil {
			log.Warn("malformed message dropped", "error", err)
			continue
		}

		handle(msg)
	}
}

func (that *WSTransport) Close() error {
	if err := that.conn.Close(websocket.StatusNormalClosure, "bye"); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}

	return nil
}
