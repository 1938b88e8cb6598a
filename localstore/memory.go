package localstore

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ScepterCode/Storemaster-sub000/models"
)

// MemoryStore keeps everything in process memory. Used by tests and as the
// default store before a durable backend is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) GetAll(ctx context.Context, kind models.EntityKind) ([]json.RawMessage, error) {
	s.mu.RLock()
	raw, ok := s.data[CollectionKey(kind)]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *MemoryStore) SetAll(ctx context.Context, kind models.EntityKind, records []json.RawMessage) error {
	if records == nil {
		records = []json.RawMessage{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[CollectionKey(kind)] = raw
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) GetStatus(ctx context.Context, key string, dest any) (bool, error) {
	s.mu.RLock()
	raw, ok := s.data[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data[key] = raw
	s.mu.Unlock()
	return nil
}
