package conversation

import (
	"context"
	"sync"

	"github.com/zhouzirui/digital-twin/backend/internal/model/chat"
)

// MemoryStore keeps transcripts in process memory. Contents are lost on
// restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]chat.Message
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string][]chat.Message)}
}

func (s *MemoryStore) Name() string { return "memory" }

func (s *MemoryStore) Load(_ context.Context, sessionID string) ([]chat.Message, error) {
	if err := checkSessionID(s.Name(), "load", sessionID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.sessions[sessionID]
	copied := make([]chat.Message, len(stored))
	copy(copied, stored)
	return copied, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, transcript []chat.Message) error {
	if err := checkSessionID(s.Name(), "save", sessionID); err != nil {
		return err
	}

	copied := make([]chat.Message, len(transcript))
	copy(copied, transcript)

	s.mu.Lock()
	s.sessions[sessionID] = copied
	s.mu.Unlock()
	return nil
}
