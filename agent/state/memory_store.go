package state

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore keeps checkpoints in process memory as encoded JSON, so callers
// never share mutable state with the store.
type MemoryStore struct {
	mu          sync.RWMutex
	checkpoints map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		checkpoints: make(map[string][]byte),
	}
}

func (s *MemoryStore) Load(_ context.Context, threadID string) (*Checkpoint, error) {
	if strings.TrimSpace(threadID) == "" {
		return nil, ErrInvalidThread
	}

	s.mu.RLock()
	payload, ok := s.checkpoints[threadID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrCheckpointNotFound
	}
	return decodeCheckpoint(payload)
}

func (s *MemoryStore) Save(_ context.Context, cp *Checkpoint) error {
	payload, err := encodeCheckpoint(cp)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.checkpoints[cp.ThreadID] = payload
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, threadID string) error {
	if strings.TrimSpace(threadID) == "" {
		return ErrInvalidThread
	}

	s.mu.Lock()
	delete(s.checkpoints, threadID)
	s.mu.Unlock()
	return nil
}
