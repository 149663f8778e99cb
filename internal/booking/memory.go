package booking

import (
	"context"
	"sync"
	"time"
)

// memoryRepository keeps reservations in process memory. It backs the server
// when no database is configured and is used throughout the tests.
type memoryRepository struct {
	mu   sync.RWMutex
	rows []*Reservation // insertion order

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

func NewMemoryRepository() Repository {
	return &memoryRepository{locks: make(map[string]*sync.Mutex)}
}

func (m *memoryRepository) Create(ctx context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r.UpdatedAt = time.Now().UTC()
	m.rows = append(m.rows, r.clone())
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.rows {
		if r.ID == id {
			return r.clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRepository) Update(ctx context.Context, r *Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.rows {
		if existing.ID == r.ID {
			r.UpdatedAt = time.Now().UTC()
			m.rows[i] = r.clone()
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.rows {
		if r.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (m *memoryRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*Reservation
	for _, r := range m.rows {
		if filter.Matches(r) {
			result = append(result, r.clone())
		}
	}
	return result, nil
}

func (m *memoryRepository) Count(ctx context.Context, filter Filter) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, r := range m.rows {
		if filter.Matches(r) {
			n++
		}
	}
	return n, nil
}

// WithEntityLock serializes writers per entity. fn gets a staging view: its
// writes are buffered and applied only when fn succeeds.
func (m *memoryRepository) WithEntityLock(ctx context.Context, entityIDs []string, fn func(ctx context.Context, repo Repository) error) error {
	ids := sortedUnique(entityIDs)
	for _, id := range ids {
		l := m.entityLock(id)
		l.Lock()
		defer l.Unlock()
	}

	stage := &stagedRepository{base: m}
	if err := fn(ctx, stage); err != nil {
		return err
	}
	return stage.apply(ctx)
}

func (m *memoryRepository) entityLock(id string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()

	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

// stagedRepository reads through to the base repository, overlaying its own
// pending writes, and flushes them in one step.
type stagedRepository struct {
	base    *memoryRepository
	created []*Reservation
	updated map[string]*Reservation
}

func (s *stagedRepository) Create(ctx context.Context, r *Reservation) error {
	r.UpdatedAt = time.Now().UTC()
	s.created = append(s.created, r.clone())
	return nil
}

func (s *stagedRepository) GetByID(ctx context.Context, id string) (*Reservation, error) {
	for _, r := range s.created {
		if r.ID == id {
			return r.clone(), nil
		}
	}
	if r, ok := s.updated[id]; ok {
		return r.clone(), nil
	}
	return s.base.GetByID(ctx, id)
}

func (s *stagedRepository) Update(ctx context.Context, r *Reservation) error {
	r.UpdatedAt = time.Now().UTC()
	for i, c := range s.created {
		if c.ID == r.ID {
			s.created[i] = r.clone()
			return nil
		}
	}
	if _, err := s.base.GetByID(ctx, r.ID); err != nil {
		return err
	}
	if s.updated == nil {
		s.updated = make(map[string]*Reservation)
	}
	s.updated[r.ID] = r.clone()
	return nil
}

func (s *stagedRepository) Delete(ctx context.Context, id string) error {
	return s.base.Delete(ctx, id)
}

func (s *stagedRepository) List(ctx context.Context, filter Filter) ([]*Reservation, error) {
	rows, err := s.base.List(ctx, Filter{})
	if err != nil {
		return nil, err
	}
	rows = append(rows, s.created...)

	var result []*Reservation
	for _, r := range rows {
		if u, ok := s.updated[r.ID]; ok {
			r = u
		}
		if filter.Matches(r) {
			result = append(result, r.clone())
		}
	}
	return result, nil
}

func (s *stagedRepository) Count(ctx context.Context, filter Filter) (int, error) {
	rows, err := s.List(ctx, filter)
	return len(rows), err
}

func (s *stagedRepository) WithEntityLock(ctx context.Context, entityIDs []string, fn func(ctx context.Context, repo Repository) error) error {
	return fn(ctx, s)
}

func (s *stagedRepository) apply(ctx context.Context) error {
	for _, r := range s.updated {
		if err := s.base.Update(ctx, r); err != nil {
			return err
		}
	}
	for _, r := range s.created {
		if err := s.base.Create(ctx, r); err != nil {
			return err
		}
	}
	return nil
}
