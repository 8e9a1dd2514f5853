// Pure aggregation over fetched transaction snapshots. Every function here
// is stateless and re-runs on each snapshot refresh.
package core

// DaySpend is one point of the trailing-30-day series.
type DaySpend struct {
	Day   Date
	Total Money
}

// BudgetLine joins one month's spending against its configured budget for a
// single category. Spent or Budgeted is zero when the other side is missing.
type BudgetLine struct {
	Category Category
	Spent    Money
	Budgeted Money
}

// Summary is the dashboard header view over a full transaction list.
type Summary struct {
	TotalIncome  Money
	TotalExpense Money
	NetBalance   Money
	Count        int
}

// CategorySpending sums expenses per category for the calendar month
// containing ref. Income and uncategorized transactions are excluded, so
// every entry in the result carries a strictly positive amount.
func CategorySpending(txs []Transaction, ref Date) map[Category]Money {
	out := make(map[Category]Money)
	for _, t := range txs {
		if t.Kind != Expense || t.Category == nil {
			continue
		}
		if !t.Date.SameMonth(ref) {
			continue
		}
		out[*t.Category] = out[*t.Category].Add(t.Amount)
	}
	return out
}

// DailySpending produces the expense total for each of the 30 consecutive
// calendar days ending at ref, oldest first. Days without expenses are
// zero-filled so the series always has exactly 30 entries with no gaps.
func DailySpending(txs []Transaction, ref Date) []DaySpend {
	const window = 30

	byDay := make(map[string]Money, window)
	start := ref.AddDays(-(window - 1))
	for _, t := range txs {
		if t.Kind != Expense {
			continue
		}
		if t.Date.Before(start.Time) || t.Date.After(ref.Time) {
			continue
		}
		key := t.Date.String()
		byDay[key] = byDay[key].Add(t.Amount)
	}

	out := make([]DaySpend, 0, window)
	for i := 0; i < window; i++ {
		day := start.AddDays(i)
		out = append(out, DaySpend{Day: day, Total: byDay[day.String()]})
	}
	return out
}

// Summarize totals income and expense over the whole list and derives the
// net balance.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Kind {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpense = s.TotalExpense.Add(t.Amount)
		}
	}
	s.NetBalance = s.TotalIncome.Sub(s.TotalExpense)
	s.Count = len(txs)
	return s
}

// CompareBudgets joins per-category spending against the month's budgets.
// The result covers the union of both sides in fixed category order,
// defaults the missing side to zero, skips the income-only category, and
// drops categories where both sides are zero.
func CompareBudgets(spending map[Category]Money, budgets []Budget) []BudgetLine {
	budgeted := make(map[Category]Money, len(budgets))
	for _, b := range budgets {
		budgeted[b.Category] = b.Amount
	}

	out := make([]BudgetLine, 0, len(Categories))
	for _, cat := range Categories {
		if cat == Salary {
			continue
		}
		line := BudgetLine{Category: cat, Spent: spending[cat], Budgeted: budgeted[cat]}
		if line.Spent.Cents == 0 && line.Budgeted.Cents == 0 {
			continue
		}
		out = append(out, line)
	}
	return out
}

// Overrun returns how far spending exceeds the budget, and whether it does.
func (l BudgetLine) Overrun() (Money, bool) {
	if l.Spent.Cents <= l.Budgeted.Cents {
		return Money{}, false
	}
	return l.Spent.Sub(l.Budgeted), true
}
