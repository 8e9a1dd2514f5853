// Package backend defines the capability ports the application depends on:
// a session provider, a relational record store, a blob store, and a
// notification sink. Adapters live in the subpackages.
package backend

import (
	"context"
	"time"
)

// Logical collections persisted by the record store.
const (
	CollectionTransactions = "transactions"
	CollectionRecurring    = "recurring_transactions"
	CollectionBudgets      = "budgets"
	CollectionProfiles     = "profiles"
)

// Record is one row of a collection in wire form. Values are strings,
// int64s, or bools; dates travel as YYYY-MM-DD strings and instants as
// RFC 3339 strings.
type Record map[string]any

// Filter is a single field-equality predicate. Filters on a query are
// ANDed together; no other predicate shape is supported.
type Filter struct {
	Field string
	Value any
}

// Order sorts a listing by exactly one field.
type Order struct {
	Field      string
	Descending bool
}

// Store is the relational record store port.
type Store interface {
	List(ctx context.Context, collection string, filters []Filter, order Order) ([]Record, error)
	Insert(ctx context.Context, collection string, rec Record) (Record, error)
	Update(ctx context.Context, collection string, id string, patch Record) (Record, error)
	Delete(ctx context.Context, collection string, id string) error
}

// BlobStore is the receipt file store port.
type BlobStore interface {
	Upload(ctx context.Context, path string, data []byte) error
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, path string) error
}

// SessionProvider resolves the authenticated principal, if any. All
// owner-scoped operations no-op when there is none.
type SessionProvider interface {
	CurrentPrincipal(ctx context.Context) (string, bool)
}

// Notifier is the fire-and-forget user notification sink.
type Notifier interface {
	Info(ctx context.Context, msg string)
	Warn(ctx context.Context, msg string)
}

// ID returns the record's id field, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}
