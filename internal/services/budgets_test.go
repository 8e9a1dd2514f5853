package services

import (
	"context"
	"errors"
	"testing"

	"fintrack/internal/core"
)

func TestBudgetUpsertInsertAndUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")
	month := core.NewDate(2025, 8, 1)

	saved, err := env.budgets.Upsert(ctx, BudgetInput{
		Category: core.Food,
		Amount:   core.Money{Cents: 8000},
		Month:    month,
	})
	if err != nil {
		t.Fatalf("Upsert insert: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected generated id")
	}

	// Update through the same entry point.
	saved2, err := env.budgets.Upsert(ctx, BudgetInput{
		ID:       saved.ID,
		Category: core.Food,
		Amount:   core.Money{Cents: 9000},
		Month:    month,
	})
	if err != nil {
		t.Fatalf("Upsert update: %v", err)
	}
	if saved2.ID != saved.ID || saved2.Amount.Cents != 9000 {
		t.Fatalf("updated = %+v", saved2)
	}

	list, err := env.budgets.ListForMonth(ctx, month)
	if err != nil {
		t.Fatalf("ListForMonth: %v", err)
	}
	if len(list) != 1 || list[0].Amount.Cents != 9000 {
		t.Fatalf("list = %+v", list)
	}
}

func TestBudgetSalaryRejected(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	_, err := env.budgets.Upsert(ctx, BudgetInput{
		Category: core.Salary,
		Amount:   core.Money{Cents: 100},
		Month:    core.NewDate(2025, 8, 1),
	})
	if !errors.Is(err, core.ErrIncomeCategory) {
		t.Fatalf("expected ErrIncomeCategory, got %v", err)
	}
}

func TestListForMonthScopesByMonth(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	for _, month := range []core.Date{core.NewDate(2025, 7, 1), core.NewDate(2025, 8, 1)} {
		if _, err := env.budgets.Upsert(ctx, BudgetInput{
			Category: core.Bills,
			Amount:   core.Money{Cents: 5000},
			Month:    month,
		}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	list, err := env.budgets.ListForMonth(ctx, core.NewDate(2025, 8, 15))
	if err != nil {
		t.Fatalf("ListForMonth: %v", err)
	}
	if len(list) != 1 || list[0].Month.String() != "2025-08-01" {
		t.Fatalf("list = %+v", list)
	}
}

func TestBudgetDelete(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")
	month := core.NewDate(2025, 8, 1)

	saved, err := env.budgets.Upsert(ctx, BudgetInput{
		Category: core.Travel,
		Amount:   core.Money{Cents: 1000},
		Month:    month,
	})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := env.budgets.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, _ := env.budgets.ListForMonth(ctx, month)
	if len(list) != 0 {
		t.Fatalf("budget still listed: %+v", list)
	}
}

func TestRecurringListOrderedByDueDate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	dates := []core.Date{
		core.NewDate(2025, 9, 15),
		core.NewDate(2025, 9, 1),
		core.NewDate(2025, 9, 30),
	}
	for _, d := range dates {
		if _, err := env.recurring.Upsert(ctx, TemplateInput{
			Description: "sub " + d.String(),
			Amount:      core.Money{Cents: 999},
			Kind:        core.Expense,
			Frequency:   core.Monthly,
			StartDate:   core.NewDate(2025, 1, 1),
			NextDue:     d,
			Active:      true,
		}); err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	list, err := env.recurring.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].NextDue.Before(list[i-1].NextDue.Time) {
			t.Fatalf("list not ordered by next due date: %v", list)
		}
	}
}

func TestProfileGetCreatesAndUpdate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv("user-1")

	p, err := env.profiles.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.ID != "user-1" || p.FirstName != "" {
		t.Fatalf("profile = %+v", p)
	}

	updated, err := env.profiles.Update(ctx, "Ada", "Lovelace")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.FirstName != "Ada" || updated.LastName != "Lovelace" {
		t.Fatalf("updated = %+v", updated)
	}
	if updated.UpdatedAt.IsZero() {
		t.Fatal("updated_at not set")
	}
}
