package repository

import (
	"context"
	"sync"

	"github.com/jafarshop/gradeoverlay/internal/domain"
)

type memoryCheckpointStore struct {
	mu sync.Mutex
	cp *domain.Checkpoint
}

// NewMemoryCheckpointStore keeps the checkpoint in process memory; it is lost on restart
func NewMemoryCheckpointStore() CheckpointStore {
	return &memoryCheckpointStore{}
}

func (s *memoryCheckpointStore) Load(_ context.Context) (*domain.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cp == nil {
		return nil, nil
	}
	cp := *s.cp
	return &cp, nil
}

func (s *memoryCheckpointStore) Save(_ context.Context, cp *domain.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cp == nil {
		s.cp = nil
		return nil
	}
	stored := *cp
	s.cp = &stored
	return nil
}

func (s *memoryCheckpointStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cp = nil
	return nil
}
