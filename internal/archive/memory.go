package archive

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu    sync.RWMutex
	now   func() time.Time
	byID  map[uuid.UUID]*Record
	byKey map[string]uuid.UUID
}

// NewMemoryRepository returns a process-local repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		now:   time.Now,
		byID:  make(map[uuid.UUID]*Record),
		byKey: make(map[string]uuid.UUID),
	}
}

func (m *memoryRepository) Save(_ context.Context, rec *Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := cloneRecord(rec)
	if stored.RenderedAt.IsZero() {
		stored.RenderedAt = m.now().UTC()
	}
	if previous, ok := m.byID[stored.ID]; ok && previous.Key != stored.Key {
		delete(m.byKey, previous.Key)
	}
	m.byID[stored.ID] = stored
	m.byKey[stored.Key] = stored.ID
	return cloneRecord(stored), nil
}

func (m *memoryRepository) Get(_ context.Context, path, format string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := RecordKey(path, format)
	id, ok := m.byKey[key]
	if !ok {
		return nil, &NotFoundError{Key: key}
	}
	return cloneRecord(m.byID[id]), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneRecord(rec), nil
}

func (m *memoryRepository) List(_ context.Context) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Record, 0, len(m.byID))
	for _, rec := range m.byID {
		out = append(out, cloneRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byID[id]
	if !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(m.byID, id)
	delete(m.byKey, rec.Key)
	return nil
}
