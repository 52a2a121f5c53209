package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/gigaba/overlay-server/internal/repository/room"
)

const roomsByActivityKey = "rooms:by-activity"

func (r repo) getRoomKey(roomID string) string {
	return "room:" + roomID
}

// SetRoom writes the room hash unconditionally. Collision checks are the
// caller's concern, so the final unchecked creation attempt can reuse it.
func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	rm := room.Room{
		HostID:           params.HostID,
		CreatedAt:        params.CreatedAt,
		LastActiveAt:     params.CreatedAt,
		HostScoreVisible: false,
	}
	r.hSetStruct(ctx, pipe, r.getRoomKey(params.RoomID), rm)
	pipe.ZAdd(ctx, roomsByActivityKey, redis.Z{
		Score:  float64(params.CreatedAt),
		Member: params.RoomID,
	})

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) RoomExists(ctx context.Context, roomID string) (bool, error) {
	res, err := r.rc.Exists(ctx, r.getRoomKey(roomID)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, err
	}

	return res > 0, nil
}

func (r repo) GetRoom(ctx context.Context, roomID string) (room.Room, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	var rm room.Room
	if err := r.rc.HGetAll(ctx, r.getRoomKey(roomID)).Scan(&rm); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Room{}, err
	}

	if rm.HostID == "" {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.Room{}, room.ErrRoomNotFound
	}

	return rm, nil
}

func (r repo) UpdateLastActiveAt(ctx context.Context, roomID string, lastActiveAt int64) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomID, "last_active_at", lastActiveAt)
	pipe := r.rc.TxPipeline()

	pipe.HSet(ctx, r.getRoomKey(roomID), "last_active_at", lastActiveAt)
	pipe.ZAdd(ctx, roomsByActivityKey, redis.Z{
		Score:  float64(lastActiveAt),
		Member: roomID,
	})

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) UpdateHostScoreVisible(ctx context.Context, roomID string, visible bool) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomID, "visible", visible)
	key := r.getRoomKey(roomID)
	cmd := r.rc.Exists(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if cmd.Val() == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrRoomNotFound)
		return room.ErrRoomNotFound
	}

	if err := r.rc.HSet(ctx, key, "host_score_visible", visible).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// RemoveRoom deletes the room hash and every key hanging off it.
func (r repo) RemoveRoom(ctx context.Context, roomID string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	playerIDs, err := r.rc.ZRange(ctx, r.getPlayerListKey(roomID), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	pipe := r.rc.TxPipeline()

	keys := []string{
		r.getRoomKey(roomID),
		r.getTimerKey(roomID),
		r.getPlayerListKey(roomID),
	}
	for _, playerID := range playerIDs {
		keys = append(keys, r.getPlayerKey(roomID, playerID))
	}
	pipe.Del(ctx, keys...)
	pipe.ZRem(ctx, roomsByActivityKey, roomID)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// GetRoomIDsInactiveSince returns up to limit room ids whose last activity
// is at or before cutoff, least recently active first.
func (r repo) GetRoomIDsInactiveSince(ctx context.Context, cutoff int64, limit int) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "cutoff", cutoff, "limit", limit)
	roomIDs, err := r.rc.ZRangeByScore(ctx, roomsByActivityKey, &redis.ZRangeBy{
		Min:   "-inf",
		Max:   strconv.FormatInt(cutoff, 10),
		Count: int64(limit),
	}).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return roomIDs, nil
}
