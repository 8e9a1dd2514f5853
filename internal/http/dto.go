package http

import (
	"time"

	"fintrack/internal/core"
)

// Wire shapes for the JSON API. Amounts travel as integer cents plus a
// formatted display string; dates in YYYY-MM-DD.

type transactionJSON struct {
	ID          string  `json:"id"`
	Description string  `json:"description,omitempty"`
	AmountCents int64   `json:"amount_cents"`
	Amount      string  `json:"amount"`
	Kind        string  `json:"kind"`
	Category    *string `json:"category"`
	Date        string  `json:"transaction_date"`
	CreatedAt   string  `json:"created_at,omitempty"`
	HasReceipt  bool    `json:"has_receipt"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	out := transactionJSON{
		ID:          t.ID,
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Amount:      t.Amount.String(),
		Kind:        string(t.Kind),
		Date:        t.Date.String(),
		HasReceipt:  t.ReceiptPath != nil,
	}
	if t.Category != nil {
		c := string(*t.Category)
		out.Category = &c
	}
	if !t.CreatedAt.IsZero() {
		out.CreatedAt = t.CreatedAt.Format(time.RFC3339)
	}
	return out
}

type budgetJSON struct {
	ID          string `json:"id"`
	Category    string `json:"category"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Month       string `json:"month"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	return budgetJSON{
		ID:          b.ID,
		Category:    string(b.Category),
		AmountCents: b.Amount.Cents,
		Amount:      b.Amount.String(),
		Month:       b.Month.String(),
	}
}

type templateJSON struct {
	ID          string  `json:"id"`
	Description string  `json:"description,omitempty"`
	AmountCents int64   `json:"amount_cents"`
	Amount      string  `json:"amount"`
	Kind        string  `json:"kind"`
	Category    *string `json:"category"`
	Frequency   string  `json:"frequency"`
	StartDate   string  `json:"start_date"`
	NextDue     string  `json:"next_due_date"`
	Active      bool    `json:"is_active"`
}

func toTemplateJSON(t core.RecurringTemplate) templateJSON {
	out := templateJSON{
		ID:          t.ID,
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Amount:      t.Amount.String(),
		Kind:        string(t.Kind),
		Frequency:   string(t.Frequency),
		StartDate:   t.StartDate.String(),
		NextDue:     t.NextDue.String(),
		Active:      t.Active,
	}
	if t.Category != nil {
		c := string(*t.Category)
		out.Category = &c
	}
	return out
}

type profileJSON struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

func toProfileJSON(p core.Profile) profileJSON {
	out := profileJSON{
		ID:        p.ID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
	if !p.UpdatedAt.IsZero() {
		out.UpdatedAt = p.UpdatedAt.Format(time.RFC3339)
	}
	return out
}
