package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisSessionStorage resolves session ids, written to Redis by the auth
// service, to player ids. This service only reads them.
type RedisSessionStorage struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

func NewSessionRedisStorage(redis *redis.Client, log *zap.SugaredLogger) *RedisSessionStorage {
	return &RedisSessionStorage{
		client: redis,
		log:    log,
	}
}

func (r *RedisSessionStorage) GetUserIdBySession(ctx context.Context, sessionID string) (userID string, ok bool) {
	v, err := r.client.Get(ctx, sessionID).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Errorf("session lookup failed: %v", err)
		}
		return "", false
	}
	return v, true
}
