package redis

import (
	"context"

	"github.com/gigaba/overlay-server/internal/repository/room"
)

func (r repo) getPlayerKey(roomID, playerID string) string {
	return "room:" + roomID + ":player:" + playerID
}

func (r repo) getPlayerListKey(roomID string) string {
	return "room:" + roomID + ":playerlist"
}

// UpsertPlayer creates the player record with a zero score on first sight,
// otherwise merges only the identity fields. The score, join timestamp and
// sort order are never touched by an upsert. Returns whether the record was
// created.
func (r repo) UpsertPlayer(ctx context.Context, params *room.UpsertPlayerParams) (bool, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	playerKey := r.getPlayerKey(params.RoomID, params.PlayerID)

	cmd := r.rc.Exists(ctx, playerKey)
	if err := cmd.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, err
	}

	if cmd.Val() > 0 {
		if err := r.rc.HSet(ctx, playerKey,
			"name", params.Name,
			"color", params.Color,
			"icon", params.Icon,
		).Err(); err != nil {
			r.logger.DebugContext(ctx, "returned", "error", err)
			return false, err
		}

		return false, nil
	}

	pipe := r.rc.TxPipeline()

	player := room.Player{
		AuthID:   params.AuthID,
		Name:     params.Name,
		Color:    params.Color,
		Icon:     params.Icon,
		Score:    0,
		JoinedAt: params.JoinedAt,
	}
	r.hSetStruct(ctx, pipe, playerKey, player)
	r.addWithNextOrder(ctx, pipe, r.getPlayerListKey(params.RoomID), params.PlayerID)

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return false, err
	}

	return true, nil
}

func (r repo) GetPlayer(ctx context.Context, params *room.GetPlayerParams) (room.Player, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	var player room.Player
	if err := r.rc.HGetAll(ctx, r.getPlayerKey(params.RoomID, params.PlayerID)).Scan(&player); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Player{}, err
	}

	if player.AuthID == "" {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrPlayerNotFound)
		return room.Player{}, room.ErrPlayerNotFound
	}

	return player, nil
}

// GetPlayerIDs returns player ids ordered by sort order. Redis breaks score
// ties lexicographically, which matches the join-time-then-name fallback as
// orders are assigned in join sequence.
func (r repo) GetPlayerIDs(ctx context.Context, roomID string) ([]string, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomID)
	playerIDs, err := r.rc.ZRange(ctx, r.getPlayerListKey(roomID), 0, -1).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	return playerIDs, nil
}

func (r repo) GetPlayerCount(ctx context.Context, roomID string) (int, error) {
	count, err := r.rc.ZCard(ctx, r.getPlayerListKey(roomID)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return 0, err
	}

	return int(count), nil
}

func (r repo) RemovePlayer(ctx context.Context, params *room.RemovePlayerParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.TxPipeline()

	pipe.ZRem(ctx, r.getPlayerListKey(params.RoomID), params.PlayerID)
	pipe.Del(ctx, r.getPlayerKey(params.RoomID, params.PlayerID))

	if err := r.executePipe(ctx, pipe); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

// AddScore applies the delta atomically at the store, so concurrent deltas
// from several host tabs compose instead of clobbering each other.
func (r repo) AddScore(ctx context.Context, params *room.AddScoreParams) (int, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	playerKey := r.getPlayerKey(params.RoomID, params.PlayerID)

	cmd := r.rc.Exists(ctx, playerKey)
	if err := cmd.Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return 0, err
	}

	if cmd.Val() == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrPlayerNotFound)
		return 0, room.ErrPlayerNotFound
	}

	score, err := r.rc.HIncrBy(ctx, playerKey, "score", int64(params.Delta)).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return 0, err
	}

	return int(score), nil
}

func (r repo) SwapPlayerOrder(ctx context.Context, params *room.SwapPlayerOrderParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	res, err := r.rc.EvalSha(ctx, r.swapOrderScript,
		[]string{r.getPlayerListKey(params.RoomID)},
		params.PlayerID, params.OtherPlayerID,
	).Int()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if res == 0 {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrPlayerNotFound)
		return room.ErrPlayerNotFound
	}

	return nil
}
