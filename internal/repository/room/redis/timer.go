package redis

import (
	"context"

	"github.com/gigaba/overlay-server/internal/repository/room"
)

func (r repo) getTimerKey(roomID string) string {
	return "room:" + roomID + ":timer"
}

func (r repo) SetTimer(ctx context.Context, params *room.SetTimerParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	timer := room.Timer{
		DurationSeconds: params.DurationSeconds,
		StartedAt:       params.StartedAt,
		Running:         params.Running,
	}
	if err := r.hSetStruct(ctx, r.rc, r.getTimerKey(params.RoomID), timer); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetTimer(ctx context.Context, roomID string) (room.Timer, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	key := r.getTimerKey(roomID)
	cmd := r.rc.Exists(ctx, key)
	if err := cmd.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Timer{}, err
	}

	if cmd.Val() == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrTimerNotFound)
		return room.Timer{}, room.ErrTimerNotFound
	}

	var timer room.Timer
	if err := r.rc.HGetAll(ctx, key).Scan(&timer); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Timer{}, err
	}

	return timer, nil
}
