package entity

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu   sync.RWMutex
	rows []*Entity
}

// NewMemoryRepository returns a Repository held in process memory.
func NewMemoryRepository() Repository {
	return &memoryRepository{}
}

func (m *memoryRepository) Create(ctx context.Context, e *Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.CreatedAt = time.Now().UTC()
	c := *e
	m.rows = append(m.rows, &c)
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (*Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.rows {
		if e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) List(ctx context.Context, filter Filter) ([]*Entity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Entity
	for _, e := range m.rows {
		if filter.Matches(e) {
			c := *e
			result = append(result, &c)
		}
	}
	return result, nil
}

func (m *memoryRepository) Update(ctx context.Context, e *Entity) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.rows {
		if existing.ID == e.ID {
			c := *e
			m.rows[i] = &c
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.rows {
		if e.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
