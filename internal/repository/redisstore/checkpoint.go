package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jafarshop/gradeoverlay/internal/domain"
)

// DefaultCheckpointKey holds the JSON encoded checkpoint of the grade sync
const DefaultCheckpointKey = "gradesync:checkpoint"

type CheckpointStore struct {
	client *redis.Client
	key    string
}

func NewCheckpointStore(client *redis.Client, key string) *CheckpointStore {
	if key == "" {
		key = DefaultCheckpointKey
	}
	return &CheckpointStore{client: client, key: key}
}

func (s *CheckpointStore) Load(ctx context.Context) (*domain.Checkpoint, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}

	var cp domain.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("decode checkpoint: %w", err)
	}
	return &cp, nil
}

// Save stores the checkpoint without expiry; a run may be resumed days later
func (s *CheckpointStore) Save(ctx context.Context, cp *domain.Checkpoint) error {
	data, err := json.Marshal(cp)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

func (s *CheckpointStore) Reset(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("reset checkpoint: %w", err)
	}
	return nil
}
