package redis

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc              *redis.Client
	logger          *slog.Logger
	nextOrderScript string
	swapOrderScript string
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
		// appends a member with score max+1 so the roster keeps join order
		nextOrderScript: rc.ScriptLoad(context.Background(), `
			local top = redis.call('ZREVRANGE', KEYS[1], 0, 0, 'WITHSCORES')
			local nextOrder = 1
			if #top > 0 then
				nextOrder = tonumber(top[2]) + 1
			end
			redis.call('ZADD', KEYS[1], nextOrder, ARGV[1])
			return nextOrder
		`).Val(),
		swapOrderScript: rc.ScriptLoad(context.Background(), `
			local a = redis.call('ZSCORE', KEYS[1], ARGV[1])
			local b = redis.call('ZSCORE', KEYS[1], ARGV[2])
			if not a or not b then
				return 0
			end
			redis.call('ZADD', KEYS[1], b, ARGV[1])
			redis.call('ZADD', KEYS[1], a, ARGV[2])
			return 1
		`).Val(),
	}
}
