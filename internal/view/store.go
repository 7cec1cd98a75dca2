package view

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned for unknown or expired view ids.
var ErrNotFound = errors.New("view not found")

// Store is a thread-safe registry of live views. Views idle for longer than
// the TTL are dropped by Cleanup; when the store is full the least recently
// used view makes room for a new one.
type Store struct {
	mu    sync.Mutex
	views map[string]*View
	ttl   time.Duration
	max   int
}

func NewStore(ttl time.Duration, maxViews int) *Store {
	return &Store{
		views: make(map[string]*View),
		ttl:   ttl,
		max:   maxViews,
	}
}

// Put registers v and returns the id of a view evicted to make room, if any.
func (s *Store) Put(v *View) (evicted string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.max > 0 && len(s.views) >= s.max {
		var oldest time.Time
		for id, other := range s.views {
			if used := other.LastUsed(); evicted == "" || used.Before(oldest) {
				evicted, oldest = id, used
			}
		}
		delete(s.views, evicted)
	}
	s.views[v.ID] = v
	return evicted
}

func (s *Store) Get(id string) (*View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[id]
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Delete removes a view and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.views[id]
	delete(s.views, id)
	return ok
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// Cleanup removes idle views and returns how many were removed.
func (s *Store) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	removed := 0
	for id, v := range s.views {
		if now.Sub(v.LastUsed()) > s.ttl {
			delete(s.views, id)
			removed++
		}
	}
	return removed
}

// Run calls Cleanup every interval until ctx is cancelled.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
