package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

type templateInput struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"start_date"`
	Active      *bool  `json:"is_active"`
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	templates, err := s.recurring.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]templateJSON, 0, len(templates))
	for _, t := range templates {
		out = append(out, toTemplateJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSaveRecurring saves a template. The first due date equals the
// start date; only the store advances it afterwards.
func (s *Server) handleSaveRecurring(w http.ResponseWriter, r *http.Request) {
	var in templateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	amount, err := parseAmount(in.Amount)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	category, err := parseCategory(in.Category)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	startDate, err := core.ParseDate(in.StartDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	saved, err := s.recurring.Upsert(r.Context(), services.TemplateInput{
		ID:          strings.TrimSpace(in.ID),
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Kind:        core.Kind(in.Kind),
		Category:    category,
		Frequency:   core.Frequency(in.Frequency),
		StartDate:   startDate,
		NextDue:     startDate,
		Active:      active,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTemplateJSON(*saved))
}

func (s *Server) handleDeleteRecurring(w http.ResponseWriter, r *http.Request) {
	if err := s.recurring.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
