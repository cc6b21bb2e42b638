package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jafarshop/gradeoverlay/internal/repository"
)

// Attach connects to redisURL and moves the sync checkpoint and the response cache onto it.
// The caller closes the returned client.
func Attach(ctx context.Context, repos *repository.Repositories, redisURL string, cacheTTL time.Duration, logger *zap.Logger) (*redis.Client, error) {
	client, err := NewClient(ctx, redisURL)
	if err != nil {
		return nil, err
	}
	repos.Checkpoints = NewCheckpointStore(client, DefaultCheckpointKey)
	repos.Cache = NewResponseCache(client, cacheTTL)
	logger.Info("Redis attached for sync checkpoints and response cache", zap.Duration("cache_ttl", cacheTTL))
	return client, nil
}
