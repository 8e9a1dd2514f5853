package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/snapshot"
)

func newAlertEngine(env *testEnv) *AlertEngine {
	engine := NewAlertEngine(env.transactions, env.budgets, env.recurring, env.notes, env.transactions.logger)
	engine.SetClock(func() time.Time {
		return time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	})
	return engine
}

func TestBudgetOverrunWarning(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")
	food := core.Food

	if _, err := env.transactions.Create(ctx, NewTransaction{
		Amount:   core.Money{Cents: 10000},
		Kind:     core.Expense,
		Category: &food,
		Date:     core.NewDate(2025, 8, 29),
	}, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.budgets.Upsert(ctx, BudgetInput{
		Category: core.Food,
		Amount:   core.Money{Cents: 8000},
		Month:    core.NewDate(2025, 8, 1),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	env.notes.Reset()
	if err := newAlertEngine(env).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	warns := env.notes.Warns()
	if len(warns) != 1 {
		t.Fatalf("expected exactly one warning, got %v", warns)
	}
	if !strings.Contains(warns[0], "Food") || !strings.Contains(warns[0], "$20.00") {
		t.Fatalf("warning = %q", warns[0])
	}
}

func TestExactBudgetIsNotAnOverrun(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")
	food := core.Food

	if _, err := env.transactions.Create(ctx, NewTransaction{
		Amount:   core.Money{Cents: 8000},
		Kind:     core.Expense,
		Category: &food,
		Date:     core.NewDate(2025, 8, 29),
	}, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := env.budgets.Upsert(ctx, BudgetInput{
		Category: core.Food,
		Amount:   core.Money{Cents: 8000},
		Month:    core.NewDate(2025, 8, 1),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	env.notes.Reset()
	if err := newAlertEngine(env).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if warns := env.notes.Warns(); len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
}

func TestDueTemplateReminder(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	if _, err := env.recurring.Upsert(ctx, TemplateInput{
		Description: "Netflix",
		Amount:      core.Money{Cents: 1599},
		Kind:        core.Expense,
		Frequency:   core.Monthly,
		StartDate:   core.NewDate(2025, 1, 29),
		NextDue:     core.NewDate(2025, 8, 29), // due today
		Active:      true,
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if _, err := env.recurring.Upsert(ctx, TemplateInput{
		Description: "Paused gym",
		Amount:      core.Money{Cents: 3000},
		Kind:        core.Expense,
		Frequency:   core.Monthly,
		StartDate:   core.NewDate(2025, 1, 1),
		NextDue:     core.NewDate(2025, 8, 1), // overdue but inactive
		Active:      false,
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	env.notes.Reset()
	if err := newAlertEngine(env).Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	infos := env.notes.Infos()
	if len(infos) != 1 {
		t.Fatalf("expected one reminder, got %v", infos)
	}
	if !strings.Contains(infos[0], "Netflix") || !strings.Contains(infos[0], "$15.99") {
		t.Fatalf("reminder = %q", infos[0])
	}
}

func TestBindRunsOnSnapshotChange(t *testing.T) {
	ctx := context.Background()

	// Wire the accessors through the snapshot layer so mutations trigger
	// the engine.
	env := newTestEnv("user-1")
	snap := snapshot.New(env.store, 16, time.Minute)
	session := backend.StaticSession{Principal: "user-1"}
	logger := env.transactions.logger
	transactions := NewTransactions(session, snap, env.blobs, env.notes, logger)
	budgets := NewBudgets(session, snap, env.notes, logger)
	recurring := NewRecurring(session, snap, env.notes, logger)

	engine := NewAlertEngine(transactions, budgets, recurring, env.notes, logger)
	engine.SetClock(func() time.Time {
		return time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)
	})
	engine.Bind(snap)

	// Overrun the Food budget; the budget insert is the last change and
	// must re-run the engine.
	food := core.Food
	if _, err := transactions.Create(ctx, NewTransaction{
		Amount:   core.Money{Cents: 10000},
		Kind:     core.Expense,
		Category: &food,
		Date:     core.NewDate(2025, 8, 29),
	}, nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	env.notes.Reset()
	if _, err := budgets.Upsert(ctx, BudgetInput{
		Category: core.Food,
		Amount:   core.Money{Cents: 8000},
		Month:    core.NewDate(2025, 8, 1),
	}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	overruns := 0
	for _, w := range env.notes.Warns() {
		if strings.Contains(w, "Budget Alert") {
			overruns++
		}
	}
	if overruns != 1 {
		t.Fatalf("expected one overrun warning after mutation, warns = %v", env.notes.Warns())
	}
}
