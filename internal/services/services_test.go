package services

import (
	"io"
	"log/slog"

	"fintrack/internal/backend"
	"fintrack/internal/backend/memory"
	"fintrack/internal/log"
	"fintrack/internal/notify"
)

// testEnv wires the accessors to in-memory adapters under a fixed
// principal.
type testEnv struct {
	store        *memory.Store
	blobs        *memory.Blobs
	notes        *notify.Recorder
	transactions *Transactions
	budgets      *Budgets
	recurring    *Recurring
	profiles     *Profiles
}

func newTestEnv(principal string) *testEnv {
	return newTestEnvOn(memory.NewStore(), principal)
}

// newTestEnvOn shares a store between envs, so tests can act as two
// principals over the same data.
func newTestEnvOn(store *memory.Store, principal string) *testEnv {
	blobs := memory.NewBlobs()
	notes := notify.NewRecorder()
	session := backend.StaticSession{Principal: principal}
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})

	return &testEnv{
		store:        store,
		blobs:        blobs,
		notes:        notes,
		transactions: NewTransactions(session, store, blobs, notes, logger),
		budgets:      NewBudgets(session, store, notes, logger),
		recurring:    NewRecurring(session, store, notes, logger),
		profiles:     NewProfiles(session, store, notes, logger),
	}
}
