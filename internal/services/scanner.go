package services

import "fintrack/internal/core"

// DueTemplates returns the active templates whose next due date is today
// or already past, preserving input order. Inactive templates never
// surface, however overdue. Callers pass the list straight from
// Recurring.List, which orders by next due date ascending.
func DueTemplates(templates []core.RecurringTemplate, today core.Date) []core.RecurringTemplate {
	out := make([]core.RecurringTemplate, 0, len(templates))
	for _, t := range templates {
		if !t.Active {
			continue
		}
		if t.NextDue.OnOrBefore(today) {
			out = append(out, t)
		}
	}
	return out
}
