package services

import (
	"context"
	"fmt"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// BudgetInput carries the user-editable fields of a budget. A non-empty ID
// updates the existing record; an empty ID inserts a new one.
type BudgetInput struct {
	ID       string
	Category core.Category
	Amount   core.Money
	Month    core.Date
}

// Budgets is the accessor for the monthly budgets collection.
type Budgets struct {
	session  backend.SessionProvider
	store    backend.Store
	notifier backend.Notifier
	logger   *log.Logger
}

func NewBudgets(session backend.SessionProvider, store backend.Store, notifier backend.Notifier, logger *log.Logger) *Budgets {
	return &Budgets{
		session:  session,
		store:    store,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentBudgets),
	}
}

// ListForMonth returns the principal's budgets for one calendar month.
func (s *Budgets) ListForMonth(ctx context.Context, month core.Date) ([]core.Budget, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to view budgets.")
		return nil, ErrUnauthenticated
	}

	recs, err := s.store.List(ctx, backend.CollectionBudgets,
		[]backend.Filter{
			{Field: "user_id", Value: owner},
			{Field: "month", Value: month.MonthStart().String()},
		},
		backend.Order{Field: "category"})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list budgets",
			log.FieldError, err, log.FieldMonth, month.MonthStart().String())
		s.notifier.Warn(ctx, "Failed to load budgets.")
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	out := make([]core.Budget, 0, len(recs))
	for _, rec := range recs {
		b, err := decodeBudget(rec)
		if err != nil {
			return nil, fmt.Errorf("decode budget %s: %w", rec.ID(), err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Upsert saves a budget, inserting or updating depending on in.ID.
func (s *Budgets) Upsert(ctx context.Context, in BudgetInput) (*core.Budget, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to manage budgets.")
		return nil, ErrUnauthenticated
	}

	b := core.Budget{
		ID:       in.ID,
		Owner:    owner,
		Category: in.Category,
		Amount:   in.Amount,
		Month:    in.Month,
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validate budget: %w", err)
	}

	payload := backend.Record{
		"user_id":      owner,
		"category":     string(in.Category),
		"amount_cents": in.Amount.Cents,
		"month":        in.Month.String(),
	}

	var (
		rec backend.Record
		err error
	)
	if in.ID != "" {
		// Updating by id alone would let one principal rewrite (and via
		// the user_id column, take over) another's record.
		if _, err := s.getOwned(ctx, owner, in.ID); err != nil {
			s.notifier.Warn(ctx, "Failed to save budget.")
			return nil, err
		}
		rec, err = s.store.Update(ctx, backend.CollectionBudgets, in.ID, payload)
	} else {
		rec, err = s.store.Insert(ctx, backend.CollectionBudgets, payload)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save budget",
			log.FieldError, err, log.FieldCategory, string(in.Category))
		s.notifier.Warn(ctx, "Failed to save budget.")
		return nil, fmt.Errorf("save budget: %w", err)
	}

	saved, err := decodeBudget(rec)
	if err != nil {
		return nil, fmt.Errorf("decode budget %s: %w", rec.ID(), err)
	}
	s.notifier.Info(ctx, "Budget saved successfully!")
	return &saved, nil
}

// Delete removes a budget.
func (s *Budgets) Delete(ctx context.Context, id string) error {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to delete a budget.")
		return ErrUnauthenticated
	}

	if _, err := s.getOwned(ctx, owner, id); err != nil {
		s.notifier.Warn(ctx, "Failed to delete budget.")
		return err
	}
	if err := s.store.Delete(ctx, backend.CollectionBudgets, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete budget", log.FieldError, err, log.FieldRecordID, id)
		s.notifier.Warn(ctx, "Failed to delete budget.")
		return fmt.Errorf("delete budget: %w", err)
	}
	s.notifier.Info(ctx, "Budget deleted successfully!")
	return nil
}

// getOwned fetches a budget scoped to its owner, so mutations never
// touch another principal's records.
func (s *Budgets) getOwned(ctx context.Context, owner, id string) (core.Budget, error) {
	recs, err := s.store.List(ctx, backend.CollectionBudgets,
		[]backend.Filter{{Field: "id", Value: id}, {Field: "user_id", Value: owner}},
		backend.Order{})
	if err != nil {
		return core.Budget{}, fmt.Errorf("fetch budget %s: %w", id, err)
	}
	if len(recs) == 0 {
		return core.Budget{}, fmt.Errorf("budget %s not found", id)
	}
	return decodeBudget(recs[0])
}
