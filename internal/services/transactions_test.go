package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"fintrack/internal/core"
)

func TestCreateAndListTransactions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")
	food := core.Food

	created, err := env.transactions.Create(ctx, NewTransaction{
		Description: "Groceries",
		Amount:      core.Money{Cents: 4550},
		Kind:        core.Expense,
		Category:    &food,
		Date:        core.NewDate(2025, 8, 10),
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.Owner != "user-1" {
		t.Fatalf("created = %+v", created)
	}

	txs, err := env.transactions.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(txs) != 1 || txs[0].Amount.Cents != 4550 {
		t.Fatalf("listed = %+v", txs)
	}
	if txs[0].Category == nil || *txs[0].Category != core.Food {
		t.Fatalf("category = %v", txs[0].Category)
	}
}

func TestCreateUnauthenticatedIsNoOp(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("") // no principal

	_, err := env.transactions.Create(ctx, NewTransaction{
		Amount: core.Money{Cents: 100},
		Kind:   core.Expense,
		Date:   core.NewDate(2025, 8, 10),
	}, nil)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if warns := env.notes.Warns(); len(warns) != 1 || !strings.Contains(warns[0], "logged in") {
		t.Fatalf("warns = %v", warns)
	}
}

func TestCreateWithReceipt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	created, err := env.transactions.Create(ctx, NewTransaction{
		Amount: core.Money{Cents: 100},
		Kind:   core.Expense,
		Date:   core.NewDate(2025, 8, 10),
	}, &Receipt{Filename: "receipt.png", Data: []byte("img")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ReceiptPath == nil {
		t.Fatal("expected receipt path")
	}
	want := "user-1/" + created.ID + ".png"
	if *created.ReceiptPath != want {
		t.Fatalf("receipt path = %s, want %s", *created.ReceiptPath, want)
	}
	if !env.blobs.Has(want) {
		t.Fatal("blob was not uploaded")
	}
}

func TestCreateReceiptUploadFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")
	env.blobs.FailUpload = errors.New("bucket down")

	created, err := env.transactions.Create(ctx, NewTransaction{
		Amount: core.Money{Cents: 100},
		Kind:   core.Expense,
		Date:   core.NewDate(2025, 8, 10),
	}, &Receipt{Filename: "r.png", Data: []byte("img")})
	if err != nil {
		t.Fatalf("Create must succeed despite upload failure, got %v", err)
	}
	if created.ReceiptPath != nil {
		t.Fatalf("record must not reference a failed upload, got %s", *created.ReceiptPath)
	}

	found := false
	for _, w := range env.notes.Warns() {
		if strings.Contains(w, "failed to upload receipt") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected soft upload warning, warns = %v", env.notes.Warns())
	}

	// The record is still listed.
	txs, err := env.transactions.List(ctx)
	if err != nil || len(txs) != 1 {
		t.Fatalf("List = %v, %v", txs, err)
	}
}

func TestDeleteCascadesToReceipt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	created, err := env.transactions.Create(ctx, NewTransaction{
		Amount: core.Money{Cents: 100},
		Kind:   core.Expense,
		Date:   core.NewDate(2025, 8, 10),
	}, &Receipt{Filename: "r.pdf", Data: []byte("doc")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	path := *created.ReceiptPath

	if err := env.transactions.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if env.blobs.Has(path) {
		t.Fatal("receipt blob should have been deleted")
	}
	txs, _ := env.transactions.List(ctx)
	if len(txs) != 0 {
		t.Fatalf("transaction still listed: %v", txs)
	}
}

func TestDeleteSucceedsWhenBlobDeleteFails(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	created, err := env.transactions.Create(ctx, NewTransaction{
		Amount: core.Money{Cents: 100},
		Kind:   core.Expense,
		Date:   core.NewDate(2025, 8, 10),
	}, &Receipt{Filename: "r.pdf", Data: []byte("doc")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	env.notes.Reset()
	env.blobs.FailDelete = errors.New("bucket down")

	if err := env.transactions.Delete(ctx, created.ID); err != nil {
		t.Fatalf("record deletion must still succeed, got %v", err)
	}

	warned := false
	for _, w := range env.notes.Warns() {
		if strings.Contains(w, "failed to delete associated receipt") {
			warned = true
		}
	}
	if !warned {
		t.Fatalf("expected receipt warning, warns = %v", env.notes.Warns())
	}
	if txs, _ := env.transactions.List(ctx); len(txs) != 0 {
		t.Fatal("record should be gone")
	}
}

func TestUpdateTransaction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	created, err := env.transactions.Create(ctx, NewTransaction{
		Description: "before",
		Amount:      core.Money{Cents: 100},
		Kind:        core.Expense,
		Date:        core.NewDate(2025, 8, 10),
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	travel := core.Travel
	err = env.transactions.Update(ctx, created.ID, NewTransaction{
		Description: "after",
		Amount:      core.Money{Cents: 999},
		Kind:        core.Expense,
		Category:    &travel,
		Date:        core.NewDate(2025, 8, 11),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	txs, _ := env.transactions.List(ctx)
	if len(txs) != 1 || txs[0].Description != "after" || txs[0].Amount.Cents != 999 {
		t.Fatalf("after update: %+v", txs)
	}
}

func TestStoreFailureNotifiesAndReturnsError(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")
	env.store.FailNext = errors.New("store down")

	if _, err := env.transactions.List(ctx); err == nil {
		t.Fatal("expected error")
	}
	if warns := env.notes.Warns(); len(warns) != 1 || warns[0] != "Failed to load transactions." {
		t.Fatalf("warns = %v", warns)
	}
}

func TestReceiptURL(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	created, err := env.transactions.Create(ctx, NewTransaction{
		Amount: core.Money{Cents: 100},
		Kind:   core.Expense,
		Date:   core.NewDate(2025, 8, 10),
	}, &Receipt{Filename: "r.png", Data: []byte("img")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	url, err := env.transactions.ReceiptURL(ctx, created.ID)
	if err != nil {
		t.Fatalf("ReceiptURL: %v", err)
	}
	if !strings.Contains(url, *created.ReceiptPath) {
		t.Fatalf("url %q does not reference %q", url, *created.ReceiptPath)
	}

	// No receipt: error, no crash.
	plain, err := env.transactions.Create(ctx, NewTransaction{
		Amount: core.Money{Cents: 100},
		Kind:   core.Expense,
		Date:   core.NewDate(2025, 8, 10),
	}, nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.transactions.ReceiptURL(ctx, plain.ID); err == nil {
		t.Fatal("expected error for transaction without receipt")
	}
}
