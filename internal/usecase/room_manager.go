package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
	"github.com/rocketscienceinc/tictactoe-online/internal/protocol"
	"github.com/rocketscienceinc/tictactoe-online/internal/tictactoe"
)

const (
	DefaultCodeLength      = 6
	DefaultMaxCodeAttempts = 16
)

// emitter delivers an event to one connection. Implementations must not block.
type emitter interface {
	Emit(connID, action string, payload any)
}

// snapshotSink mirrors room state somewhere observable. Implementations must not block.
type snapshotSink interface {
	Publish(snapshot entity.RoomSnapshot)
	Remove(code string)
}

type CodeGenerator func() string

type RoomManagerOptions struct {
	CodeLength      int
	MaxCodeAttempts int
	// GenerateCode overrides the UUID based generator, mostly for tests.
	GenerateCode CodeGenerator
}

type roomSession struct {
	mu      sync.Mutex
	room    *entity.Room
	deleted bool
}

// RoomManager is the registry of live rooms. Every room has its own lock covering the
// whole validate, mutate and broadcast sequence; the registry lock only guards the map.
// Lock order is registry then room.
type RoomManager struct {
	logger    *slog.Logger
	emitter   emitter
	snapshots snapshotSink

	generateCode    CodeGenerator
	maxCodeAttempts int

	mu     sync.RWMutex
	rooms  map[string]*roomSession
	closed bool
}

func NewRoomManager(logger *slog.Logger, emitter emitter, snapshots snapshotSink, opts RoomManagerOptions) *RoomManager {
	if opts.CodeLength <= 0 {
		opts.CodeLength = DefaultCodeLength
	}

	if opts.MaxCodeAttempts <= 0 {
		opts.MaxCodeAttempts = DefaultMaxCodeAttempts
	}

	if opts.GenerateCode == nil {
		opts.GenerateCode = uuidCodeGenerator(opts.CodeLength)
	}

	return &RoomManager{
		logger:    logger.With("component", "room_manager"),
		emitter:   emitter,
		snapshots: snapshots,

		generateCode:    opts.GenerateCode,
		maxCodeAttempts: opts.MaxCodeAttempts,

		rooms: make(map[string]*roomSession),
	}
}

// CreateRoom opens a room with connID as player X and returns its code.
func (that *RoomManager) CreateRoom(_ context.Context, connID string) (string, error) {
	log := that.logger.With("method", "CreateRoom", "connID", connID)

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.closed {
		return "", apperror.ErrRegistryClosed
	}

	that.leaveRoomsLocked(connID, "")

	code, err := that.allocateCodeLocked()
	if err != nil {
		return "", fmt.Errorf("failed to create room: %w", err)
	}

	room := entity.NewRoom(code, connID)
	that.rooms[code] = &roomSession{room: room}

	that.emitter.Emit(connID, protocol.ActionRoomCreated, code)
	that.snapshots.Publish(room.Snapshot())

	log.Info("room created", "code", code)

	return code, nil
}

// JoinRoom seats connID as player O and starts the game for both players.
// The connection first leaves any other room it sits in.
func (that *RoomManager) JoinRoom(_ context.Context, code, connID string) error {
	code = protocol.NormalizeCode(code)
	log := that.logger.With("method", "JoinRoom", "connID", connID, "code", code)

	that.leaveRooms(connID, code)

	session, err := that.lookup(code)
	if err != nil {
		return fmt.Errorf("failed to join room %s: %w", code, err)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.deleted {
		return fmt.Errorf("failed to join room %s: %w", code, apperror.ErrRoomNotFound)
	}

	if err = tictactoe.AddPlayer(session.room, connID); err != nil {
		return fmt.Errorf("failed to join room %s: %w", code, err)
	}

	that.broadcast(session.room, protocol.ActionStartGame, code)
	that.snapshots.Publish(session.room.Snapshot())

	log.Info("player joined room")

	return nil
}

// MakeMove applies a move for connID. Rejected moves change nothing and broadcast nothing;
// the returned error is only meant for logging.
func (that *RoomManager) MakeMove(_ context.Context, connID, code string, index int) error {
	code = protocol.NormalizeCode(code)

	session, err := that.lookup(code)
	if err != nil {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, err)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.deleted {
		return fmt.Errorf("%w: %w", apperror.ErrInvalidMove, apperror.ErrRoomNotFound)
	}

	outcome, err := tictactoe.ApplyMove(session.room, connID, index)
	if err != nil {
		return fmt.Errorf("move in room %s rejected: %w", code, err)
	}

	that.broadcast(session.room, protocol.ActionUpdateBoard, protocol.BoardUpdate{
		Index:  outcome.Index,
		Symbol: outcome.Mark,
	})

	switch outcome.Result {
	case tictactoe.RoundWon:
		that.broadcast(session.room, protocol.ActionShowResult, protocol.WinMessage(outcome.Mark))
	case tictactoe.RoundDrawn:
		that.broadcast(session.room, protocol.ActionDraw, nil)
	case tictactoe.RoundContinues:
	}

	that.snapshots.Publish(session.room.Snapshot())

	if outcome.Result != tictactoe.RoundContinues {
		that.logger.Info("round finished", "code", code, "result", outcome.Result.String(), "mark", outcome.Mark.String())
	}

	return nil
}

// ResetRound starts the next round once the current one is over. Both players usually
// ask for it, the second request is rejected with ErrRoundInProgress.
func (that *RoomManager) ResetRound(_ context.Context, connID, code string) error {
	code = protocol.NormalizeCode(code)

	session, err := that.lookup(code)
	if err != nil {
		return fmt.Errorf("failed to reset room %s: %w", code, err)
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.deleted {
		return fmt.Errorf("failed to reset room %s: %w", code, apperror.ErrRoomNotFound)
	}

	if session.room.PlayerIndex(connID) == -1 {
		return fmt.Errorf("failed to reset room %s: %w", code, apperror.ErrNotInRoom)
	}

	if err = tictactoe.ResetRound(session.room); err != nil {
		return fmt.Errorf("failed to reset room %s: %w", code, err)
	}

	that.broadcast(session.room, protocol.ActionResetBoard, protocol.ResetPayload{
		Board:       session.room.Board,
		CurrentTurn: session.room.CurrentTurn,
	})
	that.snapshots.Publish(session.room.Snapshot())

	return nil
}

// RemoveConnection drops connID from every room it sits in. This scans all rooms.
func (that *RoomManager) RemoveConnection(_ context.Context, connID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.leaveRoomsLocked(connID, "")
}

// Snapshot returns a copy of the room state.
func (that *RoomManager) Snapshot(code string) (entity.RoomSnapshot, error) {
	session, err := that.lookup(protocol.NormalizeCode(code))
	if err != nil {
		return entity.RoomSnapshot{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.deleted {
		return entity.RoomSnapshot{}, apperror.ErrRoomNotFound
	}

	return session.room.Snapshot(), nil
}

// RoomCount returns the number of live rooms.
func (that *RoomManager) RoomCount() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}

// Close drops every room; further operations fail with ErrRegistryClosed.
func (that *RoomManager) Close() {
	that.mu.Lock()
	defer that.mu.Unlock()

	for code, session := range that.rooms {
		session.mu.Lock()
		that.deleteLocked(code, session)
		session.mu.Unlock()
	}

	that.closed = true
	that.logger.Info("room registry closed")
}

func (that *RoomManager) lookup(code string) (*roomSession, error) {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if that.closed {
		return nil, apperror.ErrRegistryClosed
	}

	session, ok := that.rooms[code]
	if !ok {
		return nil, apperror.ErrRoomNotFound
	}

	return session, nil
}

func (that *RoomManager) leaveRooms(connID, keep string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.leaveRoomsLocked(connID, keep)
}

// leaveRoomsLocked takes connID out of every room but keep. Rooms left empty are deleted,
// an opponent left alone is told the game cannot continue.
func (that *RoomManager) leaveRoomsLocked(connID, keep string) {
	for code, session := range that.rooms {
		if code == keep {
			continue
		}

		session.mu.Lock()

		if !tictactoe.RemovePlayer(session.room, connID) {
			session.mu.Unlock()
			continue
		}

		that.logger.Info("player left room", "code", code, "connID", connID)

		switch {
		case session.room.IsEmpty():
			that.deleteLocked(code, session)
			that.logger.Info("room deleted as it's empty", "code", code)
		case session.room.IsAbandoned():
			that.emitter.Emit(session.room.Players[0], protocol.ActionErrorMsg, protocol.MsgOpponentDisconnected)
			that.snapshots.Publish(session.room.Snapshot())
		}

		session.mu.Unlock()
	}
}

// deleteLocked requires both the registry and the room lock.
func (that *RoomManager) deleteLocked(code string, session *roomSession) {
	session.deleted = true
	delete(that.rooms, code)
	that.snapshots.Remove(code)
}

func (that *RoomManager) allocateCodeLocked() (string, error) {
	for range that.maxCodeAttempts {
		code := protocol.NormalizeCode(that.generateCode())
		if _, taken := that.rooms[code]; code != "" && !taken {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w after %d attempts", apperror.ErrCodeSpaceExhausted, that.maxCodeAttempts)
}

func (that *RoomManager) broadcast(room *entity.Room, action string, payload any) {
	for _, connID := range room.Players {
		that.emitter.Emit(connID, action, payload)
	}
}

// uuidCodeGenerator takes the leading hex digits of a random UUID.
func uuidCodeGenerator(length int) CodeGenerator {
	return func() string {
		id := strings.ReplaceAll(uuid.NewString(), "-", "")
		return strings.ToUpper(id[:min(length, len(id))])
	}
}
