// Package memory implements the backend ports in process memory. It is the
// default backend and the fixture used across the test suite.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/backend"
)

// Store keeps every collection as a slice of records guarded by one mutex.
type Store struct {
	mu          sync.Mutex
	collections map[string][]backend.Record

	// FailNext forces the next operation to fail, for exercising the
	// store-failure paths in tests.
	FailNext error
}

func NewStore() *Store {
	return &Store{collections: make(map[string][]backend.Record)}
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *Store) List(_ context.Context, collection string, filters []backend.Filter, order backend.Order) ([]backend.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	var out []backend.Record
	for _, rec := range s.collections[collection] {
		if matches(rec, filters) {
			out = append(out, cloneRecord(rec))
		}
	}
	if order.Field != "" {
		sort.SliceStable(out, func(i, j int) bool {
			less := lessValue(out[i][order.Field], out[j][order.Field])
			if order.Descending {
				return !less && !equalValue(out[i][order.Field], out[j][order.Field])
			}
			return less
		})
	}
	return out, nil
}

func (s *Store) Insert(_ context.Context, collection string, rec backend.Record) (backend.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	stored := cloneRecord(rec)
	if stored.ID() == "" {
		stored["id"] = uuid.NewString()
	}
	if _, ok := stored["created_at"]; !ok {
		stored["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	s.collections[collection] = append(s.collections[collection], stored)
	return cloneRecord(stored), nil
}

func (s *Store) Update(_ context.Context, collection string, id string, patch backend.Record) (backend.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return nil, err
	}

	for i, rec := range s.collections[collection] {
		if rec.ID() != id {
			continue
		}
		for k, v := range patch {
			if k == "id" {
				continue
			}
			rec[k] = v
		}
		s.collections[collection][i] = rec
		return cloneRecord(rec), nil
	}
	return nil, fmt.Errorf("%s: record %s not found", collection, id)
}

func (s *Store) Delete(_ context.Context, collection string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	recs := s.collections[collection]
	for i, rec := range recs {
		if rec.ID() == id {
			s.collections[collection] = append(recs[:i:i], recs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%s: record %s not found", collection, id)
}

func matches(rec backend.Record, filters []backend.Filter) bool {
	for _, f := range filters {
		if !equalValue(rec[f.Field], f.Value) {
			return false
		}
	}
	return true
}

func cloneRecord(rec backend.Record) backend.Record {
	out := make(backend.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func equalValue(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}

func lessValue(a, b any) bool {
	ai, aok := a.(int64)
	bi, bok := b.(int64)
	if aok && bok {
		return ai < bi
	}
	return fmt.Sprintf("%v", a) < fmt.Sprintf("%v", b)
}
