package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/snapshot"
)

// AlertEngine recomputes due-date reminders and budget overrun warnings
// from the latest snapshots of its three input collections. It keeps no
// state between runs: the same conditions produce the same notifications
// every time.
type AlertEngine struct {
	transactions *Transactions
	budgets      *Budgets
	recurring    *Recurring
	notifier     backend.Notifier
	logger       *log.Logger
	now          func() time.Time
}

func NewAlertEngine(transactions *Transactions, budgets *Budgets, recurring *Recurring, notifier backend.Notifier, logger *log.Logger) *AlertEngine {
	return &AlertEngine{
		transactions: transactions,
		budgets:      budgets,
		recurring:    recurring,
		notifier:     notifier,
		logger:       logger.WithComponent(log.ComponentAlerts),
		now:          time.Now,
	}
}

// SetClock overrides the reference clock.
func (e *AlertEngine) SetClock(now func() time.Time) {
	e.now = now
}

// Bind re-runs the engine whenever one of its input collections changes.
// Other collections are ignored.
func (e *AlertEngine) Bind(snapshots *snapshot.Store) {
	inputs := map[string]bool{
		backend.CollectionTransactions: true,
		backend.CollectionBudgets:      true,
		backend.CollectionRecurring:    true,
	}
	snapshots.Subscribe(func(collection string) {
		if !inputs[collection] {
			return
		}
		if err := e.Run(context.Background()); err != nil {
			e.logger.Error("Alert run failed", log.FieldError, err, log.FieldCollection, collection)
		}
	})
}

// Run fetches the three collections concurrently, evaluates reminders and
// overruns, and emits notifications.
func (e *AlertEngine) Run(ctx context.Context) error {
	today := core.DateOf(e.now())

	var (
		txs       []core.Transaction
		budgets   []core.Budget
		templates []core.RecurringTemplate
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = e.transactions.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = e.budgets.ListForMonth(gctx, today.MonthStart())
		return err
	})
	g.Go(func() error {
		var err error
		templates, err = e.recurring.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("refresh alert inputs: %w", err)
	}

	due := DueTemplates(templates, today)
	lines := core.CompareBudgets(core.CategorySpending(txs, today), budgets)
	e.emit(ctx, due, lines)

	e.logger.InfoContext(ctx, "Alert run complete",
		"due_templates", len(due),
		"budget_lines", len(lines))
	return nil
}

func (e *AlertEngine) emit(ctx context.Context, due []core.RecurringTemplate, lines []core.BudgetLine) {
	for _, t := range due {
		e.notifier.Info(ctx, fmt.Sprintf("Reminder: %s is due today (%s).", t.Label(), t.Amount))
	}
	for _, l := range lines {
		if overrun, ok := l.Overrun(); ok {
			e.notifier.Warn(ctx, fmt.Sprintf(
				"Budget Alert: You have exceeded your %s budget by %s this month.",
				l.Category, overrun))
		}
	}
}
