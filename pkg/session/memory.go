package session

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend keeps sessions in process memory. Sessions do not survive
// a restart.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]Record),
		now:     time.Now,
	}
}

// Load implements Backend.
func (m *MemoryBackend) Load(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	rec, ok := m.records[id]
	m.mu.RUnlock()

	if !ok || rec.Expired(m.now()) {
		return nil, ErrNotFound
	}

	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)
	rec.Data = data
	return &rec, nil
}

// Save implements Backend.
func (m *MemoryBackend) Save(_ context.Context, rec *Record) error {
	data := make([]byte, len(rec.Data))
	copy(data, rec.Data)

	m.mu.Lock()
	m.records[rec.ID] = Record{ID: rec.ID, Data: data, ExpiresAt: rec.ExpiresAt}
	m.mu.Unlock()
	return nil
}

// Delete implements Backend.
func (m *MemoryBackend) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()
	return nil
}

// Prune implements Backend.
func (m *MemoryBackend) Prune(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, rec := range m.records {
		if rec.Expired(now) {
			delete(m.records, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records, expired ones included.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// Close implements Backend.
func (m *MemoryBackend) Close() error {
	return nil
}
