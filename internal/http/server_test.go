package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintrack/internal/backend"
	"fintrack/internal/backend/memory"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/notify"
	"fintrack/internal/services"
)

func todayWire() string {
	return core.DateOf(time.Now()).String()
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.NewStore()
	blobs := memory.NewBlobs()
	notes := notify.NewRecorder()
	session := backend.ContextSession{}
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})

	srv := NewServer("127.0.0.1:0",
		services.NewTransactions(session, store, blobs, notes, logger),
		services.NewBudgets(session, store, notes, logger),
		services.NewRecurring(session, store, notes, logger),
		services.NewProfiles(session, store, notes, logger),
		logger,
		Options{DefaultPrincipal: "user-1"})

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestCreateAndListTransactions(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]string{
		"description":      "groceries",
		"amount":           "42.50",
		"kind":             "expense",
		"category":         "Food",
		"transaction_date": "2025-08-15",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decodeBody[transactionJSON](t, resp)
	if created.ID == "" || created.AmountCents != 4250 {
		t.Fatalf("created = %+v", created)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	list := decodeBody[[]transactionJSON](t, resp)
	if len(list) != 1 || list[0].ID != created.ID {
		t.Fatalf("list = %+v", list)
	}
	if list[0].Category == nil || *list[0].Category != "Food" {
		t.Fatalf("category = %v", list[0].Category)
	}
}

func TestListTransactionsFilteredByCategory(t *testing.T) {
	ts := newTestServer(t)

	for _, cat := range []string{"Food", "Bills"} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]string{
			"amount":           "10",
			"kind":             "expense",
			"category":         cat,
			"transaction_date": "2025-08-15",
		})
		resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status = %d", resp.StatusCode)
		}
	}

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/transactions?category=Food", nil)
	list := decodeBody[[]transactionJSON](t, resp)
	if len(list) != 1 || list[0].Category == nil || *list[0].Category != "Food" {
		t.Fatalf("filtered list = %+v", list)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/transactions?category=Nope", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("unknown category status = %d, want 400", resp.StatusCode)
	}
}

func TestCreateTransactionRejectsBadAmount(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]string{
		"amount":           "-5",
		"kind":             "expense",
		"transaction_date": "2025-08-15",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestBudgetRoundTrip(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budgets", map[string]string{
		"category": "Food",
		"amount":   "300",
		"month":    "2025-08-01",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", resp.StatusCode)
	}
	saved := decodeBody[budgetJSON](t, resp)
	if saved.AmountCents != 30000 || saved.Month != "2025-08-01" {
		t.Fatalf("saved = %+v", saved)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/budgets?month=2025-08-20", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	list := decodeBody[[]budgetJSON](t, resp)
	if len(list) != 1 || list[0].ID != saved.ID {
		t.Fatalf("list = %+v", list)
	}
}

func TestSalaryBudgetRejected(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/budgets", map[string]string{
		"category": "Salary",
		"amount":   "100",
		"month":    "2025-08-01",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestUnauthenticatedRequestGets401(t *testing.T) {
	store := memory.NewStore()
	notes := notify.NewRecorder()
	logger := log.New(log.Config{
		Component: log.ComponentApp,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
	session := backend.ContextSession{}

	// No default principal and no X-Principal header.
	srv := NewServer("127.0.0.1:0",
		services.NewTransactions(session, store, memory.NewBlobs(), notes, logger),
		services.NewBudgets(session, store, notes, logger),
		services.NewRecurring(session, store, notes, logger),
		services.NewProfiles(session, store, notes, logger),
		logger,
		Options{})
	ts := httptest.NewServer(srv.Handler)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/transactions", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestPrincipalHeaderScopesData(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]string{
		"amount":           "10",
		"kind":             "expense",
		"transaction_date": "2025-08-15",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/transactions", nil)
	req.Header.Set("X-Principal", "someone-else")
	other, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	list := decodeBody[[]transactionJSON](t, other)
	if len(list) != 0 {
		t.Fatalf("expected empty list for other principal, got %+v", list)
	}
}

func TestDashboardCategories(t *testing.T) {
	ts := newTestServer(t)

	// Spending without budgets still yields a line with budgeted zero.
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/transactions", map[string]string{
		"amount":           "25",
		"kind":             "expense",
		"category":         "Bills",
		"transaction_date": todayWire(),
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/categories", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	lines := decodeBody[[]map[string]any](t, resp)
	if len(lines) != 1 {
		t.Fatalf("lines = %+v", lines)
	}
	if lines[0]["category"] != "Bills" {
		t.Fatalf("category = %v", lines[0]["category"])
	}
}

func TestDashboardDailyHasThirtyPoints(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/dashboard/daily", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	series := decodeBody[[]map[string]any](t, resp)
	if len(series) != 30 {
		t.Fatalf("expected 30 points, got %d", len(series))
	}
}

func TestProfileCreateOnFirstGet(t *testing.T) {
	ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/profile", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	p := decodeBody[profileJSON](t, resp)
	if p.ID != "user-1" {
		t.Fatalf("profile id = %q", p.ID)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/profile", map[string]string{
		"first_name": "Ada",
		"last_name":  "Lovelace",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	p = decodeBody[profileJSON](t, resp)
	if p.FirstName != "Ada" || p.LastName != "Lovelace" {
		t.Fatalf("profile = %+v", p)
	}
}
