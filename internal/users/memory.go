package users

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. State is
// lost on restart; Seed repopulates a synthetic data set at startup.
type InMemory struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]User
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty store.
func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[int64]User)}
}

// Seed inserts n synthetic users (User1..Usern). No-op when records exist.
func (s *InMemory) Seed(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.byID) > 0 {
		return
	}
	for i := 1; i <= n; i++ {
		s.nextID++
		id := s.nextID
		s.byID[id] = User{
			ID:    id,
			Name:  fmt.Sprintf("User%d", i),
			Email: fmt.Sprintf("user%d@example.com", i),
		}
	}
}

func (s *InMemory) Create(ctx context.Context, name, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	u := User{ID: s.nextID, Name: name, Email: email}
	s.byID[u.ID] = u
	return u, nil
}

func (s *InMemory) Get(ctx context.Context, id int64) (User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (s *InMemory) List(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]User, 0, len(s.byID))
	for _, u := range s.byID {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *InMemory) Update(ctx context.Context, id int64, name, email string) (User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[id]
	if !ok {
		return User{}, ErrNotFound
	}
	u.Name = name
	u.Email = email
	s.byID[id] = u
	return u, nil
}

func (s *InMemory) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *InMemory) Exists(ctx context.Context, id int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byID[id]
	return ok, nil
}
