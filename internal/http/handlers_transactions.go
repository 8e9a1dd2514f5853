package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// maxReceiptBytes caps receipt uploads at 10 MiB.
const maxReceiptBytes = 10 << 20

type transactionInput struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Date        string `json:"transaction_date"`
}

func (in transactionInput) toService() (services.NewTransaction, error) {
	amount, err := parseAmount(in.Amount)
	if err != nil {
		return services.NewTransaction{}, err
	}
	category, err := parseCategory(in.Category)
	if err != nil {
		return services.NewTransaction{}, err
	}
	date, err := core.ParseDate(in.Date)
	if err != nil {
		return services.NewTransaction{}, err
	}
	return services.NewTransaction{
		Description: strings.TrimSpace(in.Description),
		Amount:      amount,
		Kind:        core.Kind(in.Kind),
		Category:    category,
		Date:        date,
	}, nil
}

// handleListTransactions lists the principal's transactions, optionally
// narrowed by ?category=, ?from= and ?to= (inclusive dates).
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txs, err := s.transactions.List(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	txs = core.FilterTransactions(txs, filter)
	out := make([]transactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateTransaction accepts either a JSON body or multipart form
// data. The multipart form may carry a "receipt" file part.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, receipt, err := decodeTransactionRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := in.toService()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	created, err := s.transactions.Create(r.Context(), tx, receipt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionJSON(*created))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in transactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := in.toService()
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := s.transactions.Update(r.Context(), r.PathValue("id"), tx); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.transactions.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReceiptURL(w http.ResponseWriter, r *http.Request) {
	url, err := s.transactions.ReceiptURL(r.Context(), r.PathValue("id"))
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Receipt URL request failed",
			log.FieldError, err, log.FieldRecordID, r.PathValue("id"))
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}

func parseTransactionFilter(r *http.Request) (core.TransactionFilter, error) {
	var f core.TransactionFilter

	category, err := parseCategory(r.URL.Query().Get("category"))
	if err != nil {
		return core.TransactionFilter{}, err
	}
	f.Category = category

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.TransactionFilter{}, err
		}
		f.From = &d
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.TransactionFilter{}, err
		}
		f.To = &d
	}
	return f, nil
}

func decodeTransactionRequest(r *http.Request) (transactionInput, *services.Receipt, error) {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/form-data") {
		var in transactionInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return transactionInput{}, nil, fmt.Errorf("invalid JSON body")
		}
		return in, nil, nil
	}

	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		return transactionInput{}, nil, fmt.Errorf("invalid multipart form")
	}
	in := transactionInput{
		Description: r.FormValue("description"),
		Amount:      r.FormValue("amount"),
		Kind:        r.FormValue("kind"),
		Category:    r.FormValue("category"),
		Date:        r.FormValue("transaction_date"),
	}

	file, header, err := r.FormFile("receipt")
	if err == http.ErrMissingFile {
		return in, nil, nil
	}
	if err != nil {
		return transactionInput{}, nil, fmt.Errorf("invalid receipt upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxReceiptBytes))
	if err != nil {
		return transactionInput{}, nil, fmt.Errorf("read receipt upload")
	}
	return in, &services.Receipt{Filename: header.Filename, Data: data}, nil
}
