package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/okian/bistro/internal/domain/model"
	"github.com/okian/bistro/pkg/metrics"
)

const storeMemory = "memory"

// MemoryStore is a map-backed Store. Ids are assigned from a counter
// that starts at 1 and never reuses values.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[int64]model.Restaurant
	nextID int64
	closed bool
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[int64]model.Restaurant),
		nextID: 1,
	}
}

// FindAll returns a copy of every record ordered by id.
func (s *MemoryStore) FindAll(ctx context.Context) (out []model.Restaurant, err error) {
	defer observe(storeMemory, "find_all", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	out = make([]model.Restaurant, 0, len(s.byID))
	for _, r := range s.byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// FindByID returns the record with id.
func (s *MemoryStore) FindByID(ctx context.Context, id int64) (r model.Restaurant, err error) {
	defer observe(storeMemory, "find_by_id", time.Now(), &err)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return model.Restaurant{}, ErrClosed
	}

	r, ok := s.byID[id]
	if !ok {
		return model.Restaurant{}, ErrNotFound
	}
	return r, nil
}

// Create stores a new record under the next id.
func (s *MemoryStore) Create(ctx context.Context, fields model.Fields) (r model.Restaurant, err error) {
	defer observe(storeMemory, "create", time.Now(), &err)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return model.Restaurant{}, ErrClosed
	}
	r = model.Restaurant{ID: s.nextID}
	fields.Apply(&r, false)
	s.byID[r.ID] = r
	s.nextID++
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRestaurantsTotal(count)
	return r, nil
}

// Update merges fields into the record with id.
func (s *MemoryStore) Update(ctx context.Context, id int64, fields model.Fields, partial bool) (r model.Restaurant, err error) {
	defer observe(storeMemory, "update", time.Now(), &err)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return model.Restaurant{}, ErrClosed
	}

	r, ok := s.byID[id]
	if !ok {
		return model.Restaurant{}, ErrNotFound
	}
	fields.Apply(&r, partial)
	s.byID[id] = r
	return r, nil
}

// Delete removes the record with id. Its id is not handed out again.
func (s *MemoryStore) Delete(ctx context.Context, id int64) (err error) {
	defer observe(storeMemory, "delete", time.Now(), &err)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if _, ok := s.byID[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.byID, id)
	count := len(s.byID)
	s.mu.Unlock()

	metrics.UpdateRestaurantsTotal(count)
	return nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	return len(s.byID), nil
}

// Ping fails only once the store is closed.
func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Close marks the store closed. Later calls return ErrClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}
