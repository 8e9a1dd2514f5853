package http

import (
	"net/http"
	"time"

	"fintrack/internal/core"
)

// Dashboard endpoints recompute from the current transaction snapshot on
// every call. Caching happens below the accessors, not here.

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	sum := core.Summarize(txs)
	writeJSON(w, http.StatusOK, map[string]any{
		"total_income_cents":  sum.TotalIncome.Cents,
		"total_expense_cents": sum.TotalExpense.Cents,
		"net_balance_cents":   sum.NetBalance.Cents,
		"total_income":        sum.TotalIncome.String(),
		"total_expense":       sum.TotalExpense.String(),
		"net_balance":         sum.NetBalance.String(),
		"transaction_count":   sum.Count,
	})
}

func (s *Server) handleDashboardDaily(w http.ResponseWriter, r *http.Request) {
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	type point struct {
		Day        string `json:"day"`
		TotalCents int64  `json:"total_cents"`
	}
	series := core.DailySpending(txs, core.DateOf(time.Now()))
	out := make([]point, 0, len(series))
	for _, d := range series {
		out = append(out, point{Day: d.Day.String(), TotalCents: d.Total.Cents})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleDashboardCategories joins current-month spending against the
// month's budgets.
func (s *Server) handleDashboardCategories(w http.ResponseWriter, r *http.Request) {
	today := core.DateOf(time.Now())

	txs, err := s.transactions.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	budgets, err := s.budgets.ListForMonth(r.Context(), today.MonthStart())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	type line struct {
		Category      string `json:"category"`
		SpentCents    int64  `json:"spent_cents"`
		BudgetedCents int64  `json:"budgeted_cents"`
		OverrunCents  int64  `json:"overrun_cents,omitempty"`
	}
	lines := core.CompareBudgets(core.CategorySpending(txs, today), budgets)
	out := make([]line, 0, len(lines))
	for _, l := range lines {
		entry := line{
			Category:      string(l.Category),
			SpentCents:    l.Spent.Cents,
			BudgetedCents: l.Budgeted.Cents,
		}
		if overrun, ok := l.Overrun(); ok {
			entry.OverrunCents = overrun.Cents
		}
		out = append(out, entry)
	}
	writeJSON(w, http.StatusOK, out)
}
