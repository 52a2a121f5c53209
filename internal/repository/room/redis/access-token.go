package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gigaba/overlay-server/internal/repository/room"
)

const accessTokenTTL = 2 * time.Minute

func (r repo) getAccessTokenKey(token string) string {
	return "access-token:" + token
}

func (r repo) SetAccessToken(ctx context.Context, params *room.SetAccessTokenParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	ok, err := r.rc.SetNX(ctx, r.getAccessTokenKey(params.Token), params.Mode, accessTokenTTL).Result()
	if err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	if !ok {
		r.logger.DebugContext(ctx, "returned", "error", room.ErrAccessTokenAlreadyExists)
		return room.ErrAccessTokenAlreadyExists
	}

	return nil
}

// ConsumeAccessToken looks the token up and deletes it in one step, so a
// token grants its mode to exactly one reader within the TTL window.
func (r repo) ConsumeAccessToken(ctx context.Context, token string) (string, error) {
	r.logger.DebugContext(ctx, "called", "token", token)
	if token == "" {
		return "", room.ErrAccessTokenNotFound
	}

	mode, err := r.rc.GetDel(ctx, r.getAccessTokenKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.DebugContext(ctx, "returned", "error", room.ErrAccessTokenNotFound)
			return "", room.ErrAccessTokenNotFound
		}
		r.logger.DebugContext(ctx, "returned", "error", err)
		return "", err
	}

	return mode, nil
}
