package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Expense Kind = "expense"
	Income  Kind = "income"

	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"

	Food          Category = "Food"
	Travel        Category = "Travel"
	Bills         Category = "Bills"
	Entertainment Category = "Entertainment"
	Salary        Category = "Salary"
	Other         Category = "Other"
)

type (
	// Kind distinguishes money leaving the account from money entering it.
	Kind string

	// Frequency is the repetition cadence of a recurring template.
	Frequency string

	// Category is one of the fixed transaction categories. Salary is the
	// income-only category and never carries a budget.
	Category string

	// Date is a calendar day in UTC. Stored values carry no timezone and
	// are compared day by day, never converted.
	Date struct {
		time.Time
	}

	// Money is a positive amount in cents.
	Money struct {
		Cents int64
	}

	Transaction struct {
		ID          string
		Owner       string
		Description string
		Amount      Money
		Kind        Kind
		Category    *Category // nil = uncategorized
		Date        Date
		CreatedAt   time.Time
		ReceiptPath *string // nil = no receipt attached
	}

	RecurringTemplate struct {
		ID          string
		Owner       string
		Description string
		Amount      Money
		Kind        Kind
		Category    *Category
		Frequency   Frequency
		StartDate   Date
		NextDue     Date // advanced by the store, never written here
		Active      bool
		CreatedAt   time.Time
	}

	Budget struct {
		ID        string
		Owner     string
		Category  Category
		Amount    Money
		Month     Date // first day of the calendar month
		CreatedAt time.Time
	}

	Profile struct {
		ID        string
		FirstName string
		LastName  string
		UpdatedAt time.Time
	}
)

// Categories is the closed category set, in display order.
var Categories = []Category{Food, Travel, Bills, Entertainment, Salary, Other}

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid kind")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrIncomeCategory   = errors.New("income category cannot be budgeted")
)

func (k Kind) Valid() bool {
	return k == Expense || k == Income
}

func (f Frequency) Valid() bool {
	return f == Daily || f == Weekly || f == Monthly
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// NewDate builds a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day in UTC.
func DateOf(t time.Time) Date {
	return NewDate(t.UTC().Year(), int(t.UTC().Month()), t.UTC().Day())
}

// ParseDate parses a stored YYYY-MM-DD value.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String renders the stored wire form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthStart returns the first day of d's calendar month.
func (d Date) MonthStart() Date {
	return NewDate(d.Year(), int(d.Month()), 1)
}

// SameMonth reports whether both dates fall in the same calendar month.
func (d Date) SameMonth(o Date) bool {
	return d.Year() == o.Year() && d.Month() == o.Month()
}

// AddDays returns the date n calendar days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

// OnOrBefore reports whether d is the same calendar day as o or earlier.
func (d Date) OnOrBefore(o Date) bool {
	return !d.After(o.Time)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !t.Kind.Valid() {
		return ErrInvalidKind
	}
	if t.Category != nil && !t.Category.Valid() {
		return ErrUnknownCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (r RecurringTemplate) Validate() error {
	if err := r.StartDate.Validate(); err != nil {
		return err
	}
	if err := r.NextDue.Validate(); err != nil {
		return err
	}
	if err := r.Amount.Validate(); err != nil {
		return err
	}
	if !r.Kind.Valid() {
		return ErrInvalidKind
	}
	if !r.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if r.Category != nil && !r.Category.Valid() {
		return ErrUnknownCategory
	}
	return nil
}

func (b Budget) Validate() error {
	if !b.Category.Valid() {
		return ErrUnknownCategory
	}
	if b.Category == Salary {
		return ErrIncomeCategory
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if err := b.Month.Validate(); err != nil {
		return err
	}
	if b.Month.Day() != 1 {
		return errors.New("budget month must be the first day of a month")
	}
	return nil
}

// Label is the display name of a template: description when present,
// otherwise the category, otherwise the kind.
func (r RecurringTemplate) Label() string {
	if strings.TrimSpace(r.Description) != "" {
		return r.Description
	}
	if r.Category != nil {
		return string(*r.Category)
	}
	return string(r.Kind)
}
