package transactions_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/myfintrack/fintrack-go/api"
	"github.com/myfintrack/fintrack-go/transactions"
)

func newService(t *testing.T, handler http.HandlerFunc) *transactions.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return transactions.NewService(api.NewClient(srv.URL))
}

func TestListMapsWireFormat(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/", r.URL.Path)
		w.Write([]byte(`[{"id":1,"amount":"-42.50","transaction_type":"EX","category":"FOOD","category_display":"Food","description":"groceries","date":"2025-08-14"}]`))
	})

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, transactions.Expense, list[0].Type)
	require.Equal(t, 42.50, list[0].Amount)
	require.Equal(t, "Food", list[0].Category)
}

func TestCreateSendsWireFormat(t *testing.T) {
	var sent map[string]any
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		w.Write([]byte(`{"id":9,"amount":"42.50","transaction_type":"EX","category":"FOOD","category_display":"Food","description":"groceries","date":"2025-08-14"}`))
	})

	created, err := svc.Create(context.Background(), transactions.Transaction{
		Type:        transactions.Expense,
		Category:    "FOOD",
		Description: "groceries",
		Amount:      42.50,
		Date:        "2025-08-14",
	})
	require.NoError(t, err)
	require.Equal(t, int64(9), created.ID)
	require.Equal(t, "EX", sent["transaction_type"])
	require.Equal(t, 42.50, sent["amount"])
	require.Equal(t, "2025-08-14", sent["date"])
}

func TestCreateRejectsInvalidDateWithoutRequest(t *testing.T) {
	requests := 0
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
	})

	_, err := svc.Create(context.Background(), transactions.Transaction{
		Type:     transactions.Expense,
		Category: "FOOD",
		Amount:   10,
		Date:     "2026-13-45",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "2026-13-45")
	require.Zero(t, requests)
}

func TestUpdateTargetsItemPath(t *testing.T) {
	var gotPath string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		w.Write([]byte(`{"id":7,"amount":"5","transaction_type":"IN","category":"SALARY","description":"","date":"2025-08-01"}`))
	})

	_, err := svc.Update(context.Background(), 7, transactions.Transaction{Type: transactions.Income, Category: "SALARY", Amount: 5, Date: "2025-08-01"})
	require.NoError(t, err)
	require.Equal(t, "PUT /transactions/7/", gotPath)
}

func TestDeleteHandlesEmptyResponse(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "DELETE /transactions/7/", r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, svc.Delete(context.Background(), 7))
}

func TestSummaryDecodesStringAmounts(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/transactions/summary/", r.URL.Path)
		w.Write([]byte(`{"total_income":"1200.00","total_expenses":"300.50","balance":"899.50","category_expenses":[{"category":"FOOD","total":"120.00"}]}`))
	})

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	require.Equal(t, transactions.Amount(1200), summary.TotalIncome)
	require.Equal(t, transactions.Amount(300.50), summary.TotalExpenses)
	require.Len(t, summary.CategoryExpenses, 1)
	require.Equal(t, "FOOD", summary.CategoryExpenses[0].Category)
}

func TestMonthlyStatsPassesTimeRange(t *testing.T) {
	var gotQuery string
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`[{"month":8,"year":2025,"income":"1200","expenses":"300","savings":"900"}]`))
	})

	months, err := svc.MonthlyStats(context.Background(), "3months")
	require.NoError(t, err)
	require.Equal(t, "time_range=3months", gotQuery)
	require.Len(t, months, 1)
	require.Equal(t, 8, months[0].Month)
}

func TestCategoriesFallsBackToTransactionsEndpoint(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/categories/":
			w.WriteHeader(http.StatusNotFound)
		case "/transactions/categories/":
			w.Write([]byte(`{"income":[{"value":"SALARY","label":"Salary"}],"expense":[{"value":"FOOD","label":"Food"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, cats.Income, 1)
	require.Equal(t, "SALARY", cats.Income[0].Value)
}

func TestCategoriesFallsBackToBuiltinDefaults(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	cats, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, cats.Income)
	require.NotEmpty(t, cats.Expense)
	require.Equal(t, "HOUSING", cats.Expense[0].Value)
}
