package websocket

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
)

func (that *Server) handleCreateRoom(ctx context.Context, connID string, _ protocol.Message) error {
	if _, err := that.rooms.CreateRoom(ctx, connID); err != nil {
		that.hub.Emit(connID, protocol.ActionErrorMsg, protocol.ErrorText(err))
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

// handleJoinRoom reports join failures to the requester only.
func (that *Server) handleJoinRoom(ctx context.Context, connID string, msg protocol.Message) error {
	var code string
	if err := msg.Decode(&code); err != nil {
		that.hub.Emit(connID, protocol.ActionErrorMsg, protocol.MsgRoomNotFound)
		return err
	}

	if err := that.rooms.JoinRoom(ctx, code, connID); err != nil {
		that.logger.Info("join rejected", "connID", connID, "code", code, "reason", err.Error())
		that.hub.Emit(connID, protocol.ActionErrorMsg, protocol.ErrorText(err))
	}

	return nil
}

// handlePlayerMove never answers a rejected move, the client keeps its board as it was.
func (that *Server) handlePlayerMove(ctx context.Context, connID string, msg protocol.Message) error {
	var move protocol.MovePayload
	if err := msg.Decode(&move); err != nil {
		return err
	}

	if err := that.rooms.MakeMove(ctx, connID, move.Token, move.Index); err != nil {
		that.logger.Debug("move rejected", "connID", connID, "code", move.Token, "index", move.Index, "reason", err.Error())
	}

	return nil
}

func (that *Server) handleResetGame(ctx context.Context, connID string, msg protocol.Message) error {
	var code string
	if err := msg.Decode(&code); err != nil {
		return err
	}

	if err := that.rooms.ResetRound(ctx, connID, code); err != nil {
		that.logger.Debug("reset ignored", "connID", connID, "code", code, "reason", err.Error())
	}

	return nil
}
