package core

// TransactionFilter narrows a transaction list client-side. Zero-value
// fields are ignored.
type TransactionFilter struct {
	Category *Category
	From     *Date
	To       *Date
}

// FilterTransactions applies f to the list, preserving input order.
func FilterTransactions(txs []Transaction, f TransactionFilter) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Category != nil {
			if t.Category == nil || *t.Category != *f.Category {
				continue
			}
		}
		if f.From != nil && t.Date.Before(f.From.Time) {
			continue
		}
		if f.To != nil && t.Date.After(f.To.Time) {
			continue
		}
		out = append(out, t)
	}
	return out
}
