package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service failures onto HTTP statuses. Validation
// sentinels become 422, missing sessions 401, everything else 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidFrequency),
		errors.Is(err, core.ErrUnknownCategory),
		errors.Is(err, core.ErrIncomeCategory):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseMonth reads the ?month=YYYY-MM-DD query value, defaulting to the
// current month.
func parseMonth(r *http.Request) (core.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return core.DateOf(time.Now()).MonthStart(), nil
	}
	d, err := core.ParseDate(v)
	if err != nil {
		return core.Date{}, err
	}
	return d.MonthStart(), nil
}

// parseCategory maps an optional category string onto the closed set. An
// empty string means uncategorized.
func parseCategory(v string) (*core.Category, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	c := core.Category(v)
	if !c.Valid() {
		return nil, core.ErrUnknownCategory
	}
	return &c, nil
}

// parseAmount accepts decimal strings ("12.34", "12,34").
func parseAmount(v string) (core.Money, error) {
	cents, err := core.ParseDecimalToCents(v)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

func requestID(_ *http.Request) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(b)
}
