package store

import (
	"context"
	"encoding/json"
	"sync"

	"checkout-service/internal/util"

	"go.uber.org/zap"
)

// MemoryStore is an in-process PersistentStore used in tests and in dev
// mode when no Redis is available.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Load(ctx context.Context, key string, v interface{}) (bool, error) {
	m.mu.RLock()
	raw, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, v); err != nil {
		util.GetLogger().Warn("Discarding corrupted record",
			zap.String("key", key),
			zap.Error(err))
		util.CorruptedRecordsTotal.Inc()
		m.mu.Lock()
		delete(m.data, key)
		m.mu.Unlock()
		return false, nil
	}
	return true, nil
}

func (m *MemoryStore) Save(ctx context.Context, key string, v interface{}) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}
