package repository

import (
	"context"
	"sync"
)

// MemoryStore keeps registry state in process memory. It is the default
// backend for development and the backend used by tests.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[Class]map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[Class]map[string][]byte{
		ClassInstance:   {},
		ClassPersistent: {},
	}}
}

func (s *MemoryStore) Get(_ context.Context, class Class, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.data[class][key]; ok {
		return append([]byte(nil), v...), nil
	}
	return nil, ErrKeyNotFound
}

func (s *MemoryStore) Apply(_ context.Context, writes []Write) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, w := range writes {
		bucket, ok := s.data[w.Class]
		if !ok {
			bucket = make(map[string][]byte)
			s.data[w.Class] = bucket
		}
		bucket[w.Key] = append([]byte(nil), w.Value...)
	}
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

// Len returns the number of keys stored in class.
func (s *MemoryStore) Len(class Class) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data[class])
}
