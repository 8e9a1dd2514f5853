package snapshot

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/backend"
)

// countingStore counts List calls against a fixed record set.
type countingStore struct {
	lists int64
	recs  []backend.Record
}

func (c *countingStore) List(context.Context, string, []backend.Filter, backend.Order) ([]backend.Record, error) {
	atomic.AddInt64(&c.lists, 1)
	return c.recs, nil
}

func (c *countingStore) Insert(_ context.Context, _ string, rec backend.Record) (backend.Record, error) {
	c.recs = append(c.recs, rec)
	return rec, nil
}

func (c *countingStore) Update(_ context.Context, _ string, _ string, patch backend.Record) (backend.Record, error) {
	return patch, nil
}

func (c *countingStore) Delete(context.Context, string, string) error {
	return nil
}

// hookedStore runs a callback after the inner read completes, before the
// result reaches the caller. It simulates a mutation landing while a fetch
// is in flight.
type hookedStore struct {
	*countingStore
	afterRead func()
}

func (h *hookedStore) List(ctx context.Context, collection string, filters []backend.Filter, order backend.Order) ([]backend.Record, error) {
	recs, err := h.countingStore.List(ctx, collection, filters, order)
	if h.afterRead != nil {
		fn := h.afterRead
		h.afterRead = nil
		fn()
	}
	return recs, err
}

func TestListCachesSnapshots(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{recs: []backend.Record{{"id": "a"}}}
	s := New(inner, 16, time.Minute)

	filters := []backend.Filter{{Field: "user_id", Value: "u1"}}
	order := backend.Order{Field: "transaction_date", Descending: true}

	for i := 0; i < 3; i++ {
		recs, err := s.List(ctx, backend.CollectionTransactions, filters, order)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(recs) != 1 {
			t.Fatalf("len = %d", len(recs))
		}
	}
	if inner.lists != 1 {
		t.Fatalf("inner List called %d times, want 1", inner.lists)
	}

	// A different scope is a different snapshot.
	if _, err := s.List(ctx, backend.CollectionTransactions, nil, order); err != nil {
		t.Fatalf("List: %v", err)
	}
	if inner.lists != 2 {
		t.Fatalf("inner List called %d times, want 2", inner.lists)
	}
}

func TestSupersededFetchIsNotCached(t *testing.T) {
	ctx := context.Background()
	counting := &countingStore{recs: []backend.Record{{"id": "old"}}}
	inner := &hookedStore{countingStore: counting}
	s := New(inner, 16, time.Minute)

	// The insert lands between the inner read and the cache fill; the
	// fetched pre-mutation snapshot must not be cached.
	inner.afterRead = func() {
		if _, err := s.Insert(ctx, backend.CollectionTransactions, backend.Record{"id": "new"}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	first, err := s.List(ctx, backend.CollectionTransactions, nil, backend.Order{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(first) != 1 {
		t.Fatalf("in-flight fetch returned %d records, want the pre-mutation 1", len(first))
	}

	recs, err := s.List(ctx, backend.CollectionTransactions, nil, backend.Order{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("got %d record(s) after mutation, want 2", len(recs))
	}
}

func TestMutationInvalidatesAndNotifies(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{}
	s := New(inner, 16, time.Minute)

	var notified []string
	s.Subscribe(func(collection string) {
		notified = append(notified, collection)
	})

	if _, err := s.List(ctx, backend.CollectionBudgets, nil, backend.Order{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if _, err := s.Insert(ctx, backend.CollectionBudgets, backend.Record{"id": "b1"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if _, err := s.List(ctx, backend.CollectionBudgets, nil, backend.Order{}); err != nil {
		t.Fatalf("List: %v", err)
	}

	if inner.lists != 2 {
		t.Fatalf("expected refetch after mutation, inner lists = %d", inner.lists)
	}
	if len(notified) != 1 || notified[0] != backend.CollectionBudgets {
		t.Fatalf("notified = %v", notified)
	}

	// Mutating one collection leaves other snapshots alone.
	if _, err := s.List(ctx, backend.CollectionRecurring, nil, backend.Order{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	before := inner.lists
	if err := s.Delete(ctx, backend.CollectionBudgets, "b1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.List(ctx, backend.CollectionRecurring, nil, backend.Order{}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if inner.lists != before {
		t.Fatalf("recurring snapshot was invalidated by a budget mutation")
	}
}
