package services

import (
	"context"
	"fmt"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// TemplateInput carries the user-editable fields of a recurring template.
// NextDue is written once on save; afterwards only the store advances it.
type TemplateInput struct {
	ID          string
	Description string
	Amount      core.Money
	Kind        core.Kind
	Category    *core.Category
	Frequency   core.Frequency
	StartDate   core.Date
	NextDue     core.Date
	Active      bool
}

// Recurring is the accessor for the recurring templates collection.
type Recurring struct {
	session  backend.SessionProvider
	store    backend.Store
	notifier backend.Notifier
	logger   *log.Logger
}

func NewRecurring(session backend.SessionProvider, store backend.Store, notifier backend.Notifier, logger *log.Logger) *Recurring {
	return &Recurring{
		session:  session,
		store:    store,
		notifier: notifier,
		logger:   logger.WithComponent(log.ComponentRecurring),
	}
}

// List returns the principal's templates ordered by next due date, soonest
// first. The scanner relies on this ordering.
func (s *Recurring) List(ctx context.Context) ([]core.RecurringTemplate, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to view recurring transactions.")
		return nil, ErrUnauthenticated
	}

	recs, err := s.store.List(ctx, backend.CollectionRecurring,
		[]backend.Filter{{Field: "user_id", Value: owner}},
		backend.Order{Field: "next_due_date"})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list recurring transactions", log.FieldError, err)
		s.notifier.Warn(ctx, "Failed to load recurring transactions.")
		return nil, fmt.Errorf("list recurring transactions: %w", err)
	}

	out := make([]core.RecurringTemplate, 0, len(recs))
	for _, rec := range recs {
		t, err := decodeTemplate(rec)
		if err != nil {
			return nil, fmt.Errorf("decode template %s: %w", rec.ID(), err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Upsert saves a template, inserting or updating depending on in.ID.
func (s *Recurring) Upsert(ctx context.Context, in TemplateInput) (*core.RecurringTemplate, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to manage recurring transactions.")
		return nil, ErrUnauthenticated
	}

	t := core.RecurringTemplate{
		ID:          in.ID,
		Owner:       owner,
		Description: in.Description,
		Amount:      in.Amount,
		Kind:        in.Kind,
		Category:    in.Category,
		Frequency:   in.Frequency,
		StartDate:   in.StartDate,
		NextDue:     in.NextDue,
		Active:      in.Active,
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("validate template: %w", err)
	}

	payload := backend.Record{
		"user_id":       owner,
		"description":   in.Description,
		"amount_cents":  in.Amount.Cents,
		"kind":          string(in.Kind),
		"category":      categoryValue(in.Category),
		"frequency":     string(in.Frequency),
		"start_date":    in.StartDate.String(),
		"next_due_date": in.NextDue.String(),
		"is_active":     in.Active,
	}

	var (
		rec backend.Record
		err error
	)
	if in.ID != "" {
		// Updating by id alone would let one principal rewrite (and via
		// the user_id column, take over) another's record.
		if _, err := s.getOwned(ctx, owner, in.ID); err != nil {
			s.notifier.Warn(ctx, "Failed to save recurring transaction.")
			return nil, err
		}
		rec, err = s.store.Update(ctx, backend.CollectionRecurring, in.ID, payload)
	} else {
		rec, err = s.store.Insert(ctx, backend.CollectionRecurring, payload)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to save recurring transaction", log.FieldError, err)
		s.notifier.Warn(ctx, "Failed to save recurring transaction.")
		return nil, fmt.Errorf("save recurring transaction: %w", err)
	}

	saved, err := decodeTemplate(rec)
	if err != nil {
		return nil, fmt.Errorf("decode template %s: %w", rec.ID(), err)
	}
	s.notifier.Info(ctx, "Recurring transaction saved successfully!")
	return &saved, nil
}

// Delete removes a template.
func (s *Recurring) Delete(ctx context.Context, id string) error {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to delete a recurring transaction.")
		return ErrUnauthenticated
	}

	if _, err := s.getOwned(ctx, owner, id); err != nil {
		s.notifier.Warn(ctx, "Failed to delete recurring transaction.")
		return err
	}
	if err := s.store.Delete(ctx, backend.CollectionRecurring, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete recurring transaction",
			log.FieldError, err, log.FieldRecordID, id)
		s.notifier.Warn(ctx, "Failed to delete recurring transaction.")
		return fmt.Errorf("delete recurring transaction: %w", err)
	}
	s.notifier.Info(ctx, "Recurring transaction deleted successfully!")
	return nil
}

// getOwned fetches a template scoped to its owner, so mutations never
// touch another principal's records.
func (s *Recurring) getOwned(ctx context.Context, owner, id string) (core.RecurringTemplate, error) {
	recs, err := s.store.List(ctx, backend.CollectionRecurring,
		[]backend.Filter{{Field: "id", Value: id}, {Field: "user_id", Value: owner}},
		backend.Order{})
	if err != nil {
		return core.RecurringTemplate{}, fmt.Errorf("fetch recurring transaction %s: %w", id, err)
	}
	if len(recs) == 0 {
		return core.RecurringTemplate{}, fmt.Errorf("recurring transaction %s not found", id)
	}
	return decodeTemplate(recs[0])
}
