package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-relay/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-relay/internal/entity"
)

func (that *Server) handleJoin(_ context.Context, client *connection, raw []byte) error {
	log := that.logger.With("method", "handleJoin", "connectionID", client.id)

	var request joinRequest
	if err := that.decode(raw, &request); err != nil {
		return fmt.Errorf("invalid join: %w", err)
	}

	player, members, err := that.registry.Join(request.RoomID, client.id)
	if err != nil {
		log.Info("join rejected", "roomID", request.RoomID, "error", err)
		return that.sendError(client, err)
	}

	if len(members) < entity.RoomCapacity {
		log.Info("player is waiting for an opponent", "roomID", player.RoomID, "mark", player.Mark)
		return that.sendTo(client.id, entity.NewStartMessage(player.Mark, false))
	}

	// The joiner's start is queued first, so the opponent cannot move before it.
	if err = that.sendTo(client.id, entity.NewStartMessage(player.Mark, true)); err != nil {
		return err
	}

	for _, member := range members {
		if member.ID == client.id {
			continue
		}

		if err = that.sendTo(member.ID, entity.NewStartMessage(member.Mark, true)); err != nil {
			return err
		}
	}

	log.Info("room is active", "roomID", player.RoomID)

	return nil
}

func (that *Server) handleMove(_ context.Context, client *connection, raw []byte) error {
	log := that.logger.With("method", "handleMove", "connectionID", client.id)

	var request moveRequest
	if err := that.decode(raw, &request); err != nil {
		return fmt.Errorf("invalid move: %w", err)
	}

	player, ok := that.registry.Member(client.id)
	if !ok {
		return that.sendError(client, apperror.ErrNotJoined)
	}

	if that.conf.StrictSymbols && request.Symbol != player.Mark {
		log.Warn("move dropped, symbol does not match the player", "roomID", player.RoomID, "mark", player.Mark, "symbol", request.Symbol)
		return nil
	}

	return that.relay(player, entity.Message{Type: entity.MessageMove, Position: request.Position})
}

// forward relays a bodiless message of the given type to the sender's opponent.
func (that *Server) forward(messageType string) handlerFunc {
	return func(_ context.Context, client *connection, _ []byte) error {
		player, ok := that.registry.Member(client.id)
		if !ok {
			return that.sendError(client, apperror.ErrNotJoined)
		}

		return that.relay(player, entity.Message{Type: messageType})
	}
}

func (that *Server) handleDisconnect(client *connection) {
	log := that.logger.With("method", "handleDisconnect", "connectionID", client.id)

	that.unregister(client)
	client.close()

	roomID, remaining := that.registry.Leave(client.id)
	if roomID == "" {
		log.Info("connection closed")
		return
	}

	for _, member := range remaining {
		if err := that.sendTo(member.ID, entity.NewOpponentLeftMessage()); err != nil {
			log.Warn("failed to notify opponent", "roomID", roomID, "error", err)
		}
	}

	log.Info("player left room", "roomID", roomID, "remaining", len(remaining))
}

func (that *Server) relay(sender *entity.Player, msg entity.Message) error {
	for _, recipient := range that.registry.Relay(sender.RoomID, sender.ID) {
		if err := that.sendTo(recipient.ID, msg); err != nil {
			return err
		}
	}

	return nil
}

func (that *Server) sendError(client *connection, cause error) error {
	return that.sendTo(client.id, entity.NewErrorMessage(errorCode(cause), cause.Error()))
}

// sendTo queues msg for the connection id. A recipient that is gone or closed is skipped.
func (that *Server) sendTo(id string, msg entity.Message) error {
	payload, err := encode(msg)
	if err != nil {
		return err
	}

	client, ok := that.lookup(id)
	if !ok {
		that.logger.Debug("recipient is gone, message dropped", "connectionID", id, "type", msg.Type)
		return nil
	}

	if !client.enqueue(payload) {
		that.logger.Debug("recipient is closed, message dropped", "connectionID", id, "type", msg.Type)
	}

	return nil
}
