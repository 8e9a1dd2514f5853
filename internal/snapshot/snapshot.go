// Package snapshot decorates the record store with an explicit cache of
// collection snapshots plus change notification. Listings are cached per
// (collection, filters, order); any successful mutation invalidates the
// whole collection and wakes subscribers, which is how the alert engine
// learns that its inputs changed.
package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
)

// Listener is invoked with the collection name after each invalidation.
// Callbacks run synchronously on the mutating goroutine; long work belongs
// in the listener's own goroutine.
type Listener func(collection string)

type Store struct {
	inner backend.Store
	cache *cache.LRU[[]backend.Record]

	mu          sync.Mutex
	keys        map[string]map[string]struct{} // collection -> cached keys
	generations map[string]uint64              // bumped on every invalidation
	listeners   []Listener
}

func New(inner backend.Store, maxEntries int, ttl time.Duration) *Store {
	return &Store{
		inner:       inner,
		cache:       cache.NewLRU[[]backend.Record](maxEntries, ttl),
		keys:        make(map[string]map[string]struct{}),
		generations: make(map[string]uint64),
	}
}

// Cache exposes the underlying cache for expiry sweep registration.
func (s *Store) Cache() *cache.LRU[[]backend.Record] {
	return s.cache
}

// Subscribe registers a change listener. Not safe to call concurrently
// with mutations; wire subscriptions during startup.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Store) List(ctx context.Context, collection string, filters []backend.Filter, order backend.Order) ([]backend.Record, error) {
	key := snapshotKey(collection, filters, order)
	if recs, ok := s.cache.Get(key); ok {
		return recs, nil
	}

	s.mu.Lock()
	gen := s.generations[collection]
	s.mu.Unlock()

	recs, err := s.inner.List(ctx, collection, filters, order)
	if err != nil {
		return nil, err
	}

	// A mutation may have invalidated the collection while the fetch was
	// in flight. The fetched result is then already superseded: return it
	// to the caller but do not cache it.
	s.mu.Lock()
	if s.generations[collection] == gen {
		s.cache.Set(key, recs)
		if s.keys[collection] == nil {
			s.keys[collection] = make(map[string]struct{})
		}
		s.keys[collection][key] = struct{}{}
	}
	s.mu.Unlock()

	return recs, nil
}

func (s *Store) Insert(ctx context.Context, collection string, rec backend.Record) (backend.Record, error) {
	out, err := s.inner.Insert(ctx, collection, rec)
	if err != nil {
		return nil, err
	}
	s.invalidate(collection)
	return out, nil
}

func (s *Store) Update(ctx context.Context, collection string, id string, patch backend.Record) (backend.Record, error) {
	out, err := s.inner.Update(ctx, collection, id, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(collection)
	return out, nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	if err := s.inner.Delete(ctx, collection, id); err != nil {
		return err
	}
	s.invalidate(collection)
	return nil
}

func (s *Store) invalidate(collection string) {
	s.mu.Lock()
	s.generations[collection]++
	for key := range s.keys[collection] {
		s.cache.Delete(key)
	}
	delete(s.keys, collection)
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l(collection)
	}
}

func snapshotKey(collection string, filters []backend.Filter, order backend.Order) string {
	parts := make([]string, 0, len(filters))
	for _, f := range filters {
		parts = append(parts, fmt.Sprintf("%s=%v", f.Field, f.Value))
	}
	sort.Strings(parts)
	return fmt.Sprintf("%s|%s|%s:%t", collection, strings.Join(parts, ","), order.Field, order.Descending)
}

var _ backend.Store = (*Store)(nil)
