package services

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

// NewTransaction carries the user-editable fields of a transaction.
type NewTransaction struct {
	Description string
	Amount      core.Money
	Kind        core.Kind
	Category    *core.Category
	Date        core.Date
}

// Receipt is an uploaded receipt file.
type Receipt struct {
	Filename string
	Data     []byte
}

// Transactions is the accessor for the transactions collection and its
// receipt blobs.
type Transactions struct {
	session    backend.SessionProvider
	store      backend.Store
	blobs      backend.BlobStore
	notifier   backend.Notifier
	logger     *log.Logger
	receiptTTL time.Duration
}

func NewTransactions(session backend.SessionProvider, store backend.Store, blobs backend.BlobStore, notifier backend.Notifier, logger *log.Logger) *Transactions {
	return &Transactions{
		session:    session,
		store:      store,
		blobs:      blobs,
		notifier:   notifier,
		logger:     logger.WithComponent(log.ComponentTransactions),
		receiptTTL: time.Hour,
	}
}

// SetReceiptTTL overrides the signed receipt URL lifetime.
func (s *Transactions) SetReceiptTTL(ttl time.Duration) {
	s.receiptTTL = ttl
}

// List returns the principal's transactions, newest first.
func (s *Transactions) List(ctx context.Context) ([]core.Transaction, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to view transactions.")
		return nil, ErrUnauthenticated
	}

	recs, err := s.store.List(ctx, backend.CollectionTransactions,
		[]backend.Filter{{Field: "user_id", Value: owner}},
		backend.Order{Field: "transaction_date", Descending: true})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list transactions", log.FieldError, err, log.FieldOwner, owner)
		s.notifier.Warn(ctx, "Failed to load transactions.")
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	out := make([]core.Transaction, 0, len(recs))
	for _, rec := range recs {
		t, err := decodeTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w", rec.ID(), err)
		}
		out = append(out, t)
	}
	return out, nil
}

// Create inserts the record first and uploads the receipt after. A failed
// upload keeps the record: the user is warned and the transaction simply
// has no receipt reference.
func (s *Transactions) Create(ctx context.Context, in NewTransaction, receipt *Receipt) (*core.Transaction, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to add a transaction.")
		return nil, ErrUnauthenticated
	}

	tx := core.Transaction{
		Owner:       owner,
		Description: in.Description,
		Amount:      in.Amount,
		Kind:        in.Kind,
		Category:    in.Category,
		Date:        in.Date,
	}
	if err := tx.Validate(); err != nil {
		return nil, fmt.Errorf("validate transaction: %w", err)
	}

	rec, err := s.store.Insert(ctx, backend.CollectionTransactions, backend.Record{
		"user_id":          owner,
		"description":      in.Description,
		"amount_cents":     in.Amount.Cents,
		"kind":             string(in.Kind),
		"category":         categoryValue(in.Category),
		"transaction_date": in.Date.String(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to insert transaction", log.FieldError, err, log.FieldOwner, owner)
		s.notifier.Warn(ctx, "Failed to add transaction.")
		return nil, fmt.Errorf("insert transaction: %w", err)
	}

	created, err := decodeTransaction(rec)
	if err != nil {
		return nil, fmt.Errorf("decode transaction %s: %w", rec.ID(), err)
	}

	if receipt != nil {
		if receiptPath, ok := s.attachReceipt(ctx, owner, created.ID, receipt); ok {
			created.ReceiptPath = &receiptPath
		}
	}

	s.logger.InfoContext(ctx, "Transaction created",
		log.FieldRecordID, created.ID,
		log.FieldOwner, owner,
		log.FieldAmountCents, created.Amount.Cents)
	s.notifier.Info(ctx, "Transaction added successfully!")
	return &created, nil
}

// attachReceipt uploads the receipt and links its path onto the record.
// Both steps are soft failures: the transaction stays either way.
func (s *Transactions) attachReceipt(ctx context.Context, owner, txID string, receipt *Receipt) (string, bool) {
	ext := strings.TrimPrefix(path.Ext(receipt.Filename), ".")
	if ext == "" {
		ext = "bin"
	}
	receiptPath := fmt.Sprintf("%s/%s.%s", owner, txID, ext)

	if err := s.blobs.Upload(ctx, receiptPath, receipt.Data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to upload receipt",
			log.FieldError, err, log.FieldBlobPath, receiptPath)
		s.notifier.Warn(ctx, "Transaction added, but failed to upload receipt.")
		return "", false
	}

	if _, err := s.store.Update(ctx, backend.CollectionTransactions, txID,
		backend.Record{"receipt_path": receiptPath}); err != nil {
		s.logger.ErrorContext(ctx, "Failed to link receipt path",
			log.FieldError, err, log.FieldRecordID, txID)
		s.notifier.Warn(ctx, "Transaction added, but failed to link receipt path.")
		return "", false
	}
	return receiptPath, true
}

// Update replaces the editable fields of a transaction. The receipt, if
// any, is left untouched.
func (s *Transactions) Update(ctx context.Context, id string, in NewTransaction) error {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to update a transaction.")
		return ErrUnauthenticated
	}

	tx := core.Transaction{
		Owner:       owner,
		Description: in.Description,
		Amount:      in.Amount,
		Kind:        in.Kind,
		Category:    in.Category,
		Date:        in.Date,
	}
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("validate transaction: %w", err)
	}

	if _, err := s.getOwned(ctx, owner, id); err != nil {
		s.notifier.Warn(ctx, "Failed to update transaction.")
		return err
	}

	_, err := s.store.Update(ctx, backend.CollectionTransactions, id, backend.Record{
		"description":      in.Description,
		"amount_cents":     in.Amount.Cents,
		"kind":             string(in.Kind),
		"category":         categoryValue(in.Category),
		"transaction_date": in.Date.String(),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to update transaction",
			log.FieldError, err, log.FieldRecordID, id)
		s.notifier.Warn(ctx, "Failed to update transaction.")
		return fmt.Errorf("update transaction: %w", err)
	}

	s.notifier.Info(ctx, "Transaction updated successfully!")
	return nil
}

// Delete removes the record and then its receipt blob. A failed blob
// delete only warns: the record deletion already succeeded.
func (s *Transactions) Delete(ctx context.Context, id string) error {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to delete a transaction.")
		return ErrUnauthenticated
	}

	tx, err := s.getOwned(ctx, owner, id)
	if err != nil {
		s.notifier.Warn(ctx, "Failed to delete transaction.")
		return err
	}

	if err := s.store.Delete(ctx, backend.CollectionTransactions, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete transaction",
			log.FieldError, err, log.FieldRecordID, id)
		s.notifier.Warn(ctx, "Failed to delete transaction.")
		return fmt.Errorf("delete transaction: %w", err)
	}

	if tx.ReceiptPath != nil {
		if err := s.blobs.Delete(ctx, *tx.ReceiptPath); err != nil {
			s.logger.WarnContext(ctx, "Failed to delete associated receipt",
				log.FieldError, err, log.FieldBlobPath, *tx.ReceiptPath)
			s.notifier.Warn(ctx, "Warning: failed to delete associated receipt file.")
		}
	}

	s.notifier.Info(ctx, "Transaction deleted successfully!")
	return nil
}

// ReceiptURL returns a signed, time-limited URL for the transaction's
// receipt.
func (s *Transactions) ReceiptURL(ctx context.Context, id string) (string, error) {
	owner, ok := s.session.CurrentPrincipal(ctx)
	if !ok {
		s.notifier.Warn(ctx, "You must be logged in to view receipts.")
		return "", ErrUnauthenticated
	}

	tx, err := s.getOwned(ctx, owner, id)
	if err != nil {
		s.notifier.Warn(ctx, "Failed to retrieve receipt link.")
		return "", err
	}
	if tx.ReceiptPath == nil {
		return "", fmt.Errorf("transaction %s has no receipt", id)
	}

	url, err := s.blobs.SignedURL(ctx, *tx.ReceiptPath, s.receiptTTL)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to sign receipt URL",
			log.FieldError, err, log.FieldBlobPath, *tx.ReceiptPath)
		s.notifier.Warn(ctx, "Failed to retrieve receipt link.")
		return "", fmt.Errorf("sign receipt url: %w", err)
	}
	return url, nil
}

func (s *Transactions) getOwned(ctx context.Context, owner, id string) (core.Transaction, error) {
	recs, err := s.store.List(ctx, backend.CollectionTransactions,
		[]backend.Filter{{Field: "id", Value: id}, {Field: "user_id", Value: owner}},
		backend.Order{})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("fetch transaction %s: %w", id, err)
	}
	if len(recs) == 0 {
		return core.Transaction{}, fmt.Errorf("transaction %s not found", id)
	}
	return decodeTransaction(recs[0])
}
