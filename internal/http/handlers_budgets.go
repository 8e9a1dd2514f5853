package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type budgetInput struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Month    string `json:"month"`
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month")
		return
	}
	budgets, err := s.budgets.ListForMonth(r.Context(), month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]budgetJSON, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetJSON(b))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleSaveBudget(w http.ResponseWriter, r *http.Request) {
	var in budgetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	month, err := core.ParseDate(in.Month)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	saved, err := s.budgets.Upsert(r.Context(), services.BudgetInput{
		ID:       strings.TrimSpace(in.ID),
		Category: core.Category(in.Category),
		Amount:   amount,
		Month:    month.MonthStart(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(*saved))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.budgets.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
