package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-online/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-online/internal/entity"
)

const (
	roomKeyPrefix = "room:"
	roomsIndexKey = "rooms"
)

type RoomRepository interface {
	CreateOrUpdate(ctx context.Context, snapshot entity.RoomSnapshot) error
	GetByCode(ctx context.Context, code string) (entity.RoomSnapshot, error)
	List(ctx context.Context) ([]entity.RoomSnapshot, error)
	DeleteByCode(ctx context.Context, code string) error
	Clear(ctx context.Context) error
}

type dbRoom struct {
	client *redis.Client
}

func NewRoomRepository(client *redis.Client) RoomRepository {
	return &dbRoom{
		client: client,
	}
}

func (that *dbRoom) CreateOrUpdate(ctx context.Context, snapshot entity.RoomSnapshot) error {
	roomJSON, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("could not marshal room: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, roomKeyPrefix+snapshot.Code, roomJSON, 0)
		pipe.SAdd(ctx, roomsIndexKey, snapshot.Code)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (that *dbRoom) GetByCode(ctx context.Context, code string) (entity.RoomSnapshot, error) {
	response, err := that.client.Get(ctx, roomKeyPrefix+code).Result()

	if errors.Is(err, redis.Nil) {
		return entity.RoomSnapshot{}, apperror.ErrRoomNotFound
	}

	if err != nil {
		return entity.RoomSnapshot{}, fmt.Errorf("failed to get room by code: %w", err)
	}

	var snapshot entity.RoomSnapshot
	if err = json.Unmarshal([]byte(response), &snapshot); err != nil {
		return entity.RoomSnapshot{}, fmt.Errorf("failed to unmarshal room: %w", err)
	}

	return snapshot, nil
}

// List returns every stored room ordered by code. Index entries whose room is gone are skipped.
func (that *dbRoom) List(ctx context.Context) ([]entity.RoomSnapshot, error) {
	codes, err := that.client.SMembers(ctx, roomsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list room codes: %w", err)
	}

	slices.Sort(codes)

	rooms := make([]entity.RoomSnapshot, 0, len(codes))
	for _, code := range codes {
		snapshot, err := that.GetByCode(ctx, code)
		if errors.Is(err, apperror.ErrRoomNotFound) {
			continue
		}

		if err != nil {
			return nil, err
		}

		rooms = append(rooms, snapshot)
	}

	return rooms, nil
}

func (that *dbRoom) DeleteByCode(ctx context.Context, code string) error {
	var deleted *redis.IntCmd

	_, err := that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, roomKeyPrefix+code)
		pipe.SRem(ctx, roomsIndexKey, code)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete room by code: %w", err)
	}

	if deleted.Val() == 0 {
		return apperror.ErrRoomNotFound
	}

	return nil
}

// Clear removes every room this repository knows about.
func (that *dbRoom) Clear(ctx context.Context) error {
	codes, err := that.client.SMembers(ctx, roomsIndexKey).Result()
	if err != nil {
		return fmt.Errorf("failed to list room codes: %w", err)
	}

	keys := make([]string, 0, len(codes)+1)
	for _, code := range codes {
		keys = append(keys, roomKeyPrefix+code)
	}
	keys = append(keys, roomsIndexKey)

	if err = that.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to clear rooms: %w", err)
	}

	return nil
}
