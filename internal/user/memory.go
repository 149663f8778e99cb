package user

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	order []string
	rows  map[string]User
}

func NewMemoryRepository() Repository {
	return &memoryRepository{rows: make(map[string]User)}
}

func (m *memoryRepository) Upsert(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	existing, ok := m.rows[u.ID]
	if ok {
		u.CreatedAt = existing.CreatedAt
	} else {
		u.CreatedAt = now
		m.order = append(m.order, u.ID)
	}
	u.LastSeenAt = now
	m.rows[u.ID] = *u
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (m *memoryRepository) List(ctx context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*User, 0, len(m.order))
	for _, id := range m.order {
		u := m.rows[id]
		result = append(result, &u)
	}
	return result, nil
}
