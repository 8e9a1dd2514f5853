package services

import (
	"fmt"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
)

// Record field helpers. Missing keys decode to zero values; absent optional
// text fields stay nil on the domain side.

func recString(rec backend.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

func recInt64(rec backend.Record, key string) int64 {
	switch v := rec[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	}
	return 0
}

func recBool(rec backend.Record, key string) bool {
	b, _ := rec[key].(bool)
	return b
}

func recDate(rec backend.Record, key string) (core.Date, error) {
	s := recString(rec, key)
	if s == "" {
		return core.Date{}, fmt.Errorf("missing %s", key)
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}, fmt.Errorf("field %s: %w", key, err)
	}
	return d, nil
}

func recTime(rec backend.Record, key string) time.Time {
	t, _ := time.Parse(time.RFC3339, recString(rec, key))
	return t
}

func recCategory(rec backend.Record, key string) *core.Category {
	s := recString(rec, key)
	if s == "" {
		return nil
	}
	cat := core.Category(s)
	return &cat
}

func decodeTransaction(rec backend.Record) (core.Transaction, error) {
	date, err := recDate(rec, "transaction_date")
	if err != nil {
		return core.Transaction{}, err
	}
	t := core.Transaction{
		ID:          rec.ID(),
		Owner:       recString(rec, "user_id"),
		Description: recString(rec, "description"),
		Amount:      core.Money{Cents: recInt64(rec, "amount_cents")},
		Kind:        core.Kind(recString(rec, "kind")),
		Category:    recCategory(rec, "category"),
		Date:        date,
		CreatedAt:   recTime(rec, "created_at"),
	}
	if path := recString(rec, "receipt_path"); path != "" {
		t.ReceiptPath = &path
	}
	return t, nil
}

func decodeTemplate(rec backend.Record) (core.RecurringTemplate, error) {
	start, err := recDate(rec, "start_date")
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	due, err := recDate(rec, "next_due_date")
	if err != nil {
		return core.RecurringTemplate{}, err
	}
	return core.RecurringTemplate{
		ID:          rec.ID(),
		Owner:       recString(rec, "user_id"),
		Description: recString(rec, "description"),
		Amount:      core.Money{Cents: recInt64(rec, "amount_cents")},
		Kind:        core.Kind(recString(rec, "kind")),
		Category:    recCategory(rec, "category"),
		Frequency:   core.Frequency(recString(rec, "frequency")),
		StartDate:   start,
		NextDue:     due,
		Active:      recBool(rec, "is_active"),
		CreatedAt:   recTime(rec, "created_at"),
	}, nil
}

func decodeBudget(rec backend.Record) (core.Budget, error) {
	month, err := recDate(rec, "month")
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		ID:        rec.ID(),
		Owner:     recString(rec, "user_id"),
		Category:  core.Category(recString(rec, "category")),
		Amount:    core.Money{Cents: recInt64(rec, "amount_cents")},
		Month:     month,
		CreatedAt: recTime(rec, "created_at"),
	}, nil
}

func decodeProfile(rec backend.Record) core.Profile {
	return core.Profile{
		ID:        rec.ID(),
		FirstName: recString(rec, "first_name"),
		LastName:  recString(rec, "last_name"),
		UpdatedAt: recTime(rec, "updated_at"),
	}
}

func categoryValue(cat *core.Category) any {
	if cat == nil {
		return nil
	}
	return string(*cat)
}
