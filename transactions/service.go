package transactions

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/myfintrack/fintrack-go/api"
)

const (
	transactionsPath       = "transactions/"
	summaryPath            = "transactions/summary/"
	monthlySummaryPath     = "transactions/monthly_summary/"
	categoriesPath         = "categories/"
	categoriesFallbackPath = "transactions/categories/"
)

// Category is one selectable category with its backend code and display
// label.
type Category struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Categories groups the selectable categories by transaction type.
type Categories struct {
	Income  []Category `json:"income"`
	Expense []Category `json:"expense"`
}

// CategoryTotal is one category's aggregate spend.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    Amount `json:"total"`
}

// Summary is the current-month aggregate.
type Summary struct {
	TotalIncome      Amount          `json:"total_income"`
	TotalExpenses    Amount          `json:"total_expenses"`
	Balance          Amount          `json:"balance"`
	CategoryExpenses []CategoryTotal `json:"category_expenses"`
}

// MonthlySummary is one month's income/expense aggregate.
type MonthlySummary struct {
	Month    int    `json:"month"`
	Year     int    `json:"year"`
	Income   Amount `json:"income"`
	Expenses Amount `json:"expenses"`
	Savings  Amount `json:"savings"`
}

// Service is the transactions API client. Give it a recovery-wrapped Doer
// and every call gets the refresh-and-retry behavior.
type Service struct {
	client api.Doer
}

// NewService creates a Service over the given API client.
func NewService(client api.Doer) *Service {
	return &Service{client: client}
}

// List fetches all transactions, mapped to the client shape.
func (s *Service) List(ctx context.Context) ([]Transaction, error) {
	raw, err := s.client.Do(ctx, http.MethodGet, transactionsPath, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.List] fetch transactions")
	}
	list, err := decodeList(raw)
	return list, errors.Wrap(err, "[Service.List] decode transactions")
}

// Create stores a new transaction and returns the backend's view of it.
func (s *Service) Create(ctx context.Context, t Transaction) (Transaction, error) {
	payload, err := toWire(t)
	if err != nil {
		return Transaction{}, errors.Wrap(err, "[Service.Create] map transaction")
	}
	raw, err := s.client.Do(ctx, http.MethodPost, transactionsPath, payload, nil)
	if err != nil {
		return Transaction{}, errors.Wrap(err, "[Service.Create] create transaction")
	}
	var w wireTransaction
	if err := api.Decode(raw, &w); err != nil {
		return Transaction{}, errors.Wrap(err, "[Service.Create] decode transaction")
	}
	return fromWire(w), nil
}

// Update replaces the transaction with the given id.
func (s *Service) Update(ctx context.Context, id int64, t Transaction) (Transaction, error) {
	payload, err := toWire(t)
	if err != nil {
		return Transaction{}, errors.Wrap(err, "[Service.Update] map transaction")
	}
	raw, err := s.client.Do(ctx, http.MethodPut, itemPath(id), payload, nil)
	if err != nil {
		return Transaction{}, errors.Wrap(err, "[Service.Update] update transaction")
	}
	var w wireTransaction
	if err := api.Decode(raw, &w); err != nil {
		return Transaction{}, errors.Wrap(err, "[Service.Update] decode transaction")
	}
	return fromWire(w), nil
}

// Delete removes the transaction with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	_, err := s.client.Do(ctx, http.MethodDelete, itemPath(id), nil, nil)
	return errors.Wrap(err, "[Service.Delete] delete transaction")
}

// Summary fetches the current-month totals.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	raw, err := s.client.Do(ctx, http.MethodGet, summaryPath, nil, nil)
	if err != nil {
		return Summary{}, errors.Wrap(err, "[Service.Summary] fetch summary")
	}
	var summary Summary
	if err := api.Decode(raw, &summary); err != nil {
		return Summary{}, errors.Wrap(err, "[Service.Summary] decode summary")
	}
	return summary, nil
}

// MonthlyStats fetches the per-month aggregates for the given range
// (3months, 6months, 1year, all; empty means the backend default).
func (s *Service) MonthlyStats(ctx context.Context, timeRange string) ([]MonthlySummary, error) {
	path := monthlySummaryPath
	if timeRange != "" {
		path += "?time_range=" + timeRange
	}
	raw, err := s.client.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "[Service.MonthlyStats] fetch monthly summary")
	}
	var months []MonthlySummary
	if err := api.Decode(raw, &months); err != nil {
		return nil, errors.Wrap(err, "[Service.MonthlyStats] decode monthly summary")
	}
	return months, nil
}

// Categories fetches the selectable categories, trying the dedicated
// endpoint first, then the transactions-scoped one, and finally falling back
// to the built-in default set so the caller always gets a usable list.
func (s *Service) Categories(ctx context.Context) (Categories, error) {
	for _, path := range []string{categoriesPath, categoriesFallbackPath} {
		raw, err := s.client.Do(ctx, http.MethodGet, path, nil, nil)
		if err != nil {
			log.Debug().Err(err).Str("path", path).Msg("categories endpoint unavailable")
			continue
		}
		var cats Categories
		if err := api.Decode(raw, &cats); err != nil || (len(cats.Income) == 0 && len(cats.Expense) == 0) {
			log.Debug().Str("path", path).Msg("categories endpoint returned an unusable shape")
			continue
		}
		return cats, nil
	}
	return defaultCategories(), nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s%d/", transactionsPath, id)
}

// defaultCategories mirrors the backend's model choices for when no
// categories endpoint is reachable.
func defaultCategories() Categories {
	return Categories{
		Income: []Category{
			{Value: "SALARY", Label: "Salary"},
			{Value: "FREELANCE", Label: "Freelance"},
			{Value: "INVESTMENT", Label: "Investment"},
			{Value: "GIFT", Label: "Gift"},
			{Value: "OTHER_INC", Label: "Other Income"},
		},
		Expense: []Category{
			{Value: "HOUSING", Label: "Housing"},
			{Value: "FOOD", Label: "Food"},
			{Value: "TRANSPORT", Label: "Transportation"},
			{Value: "HEALTH", Label: "Health"},
			{Value: "ENTERTAIN", Label: "Entertainment"},
			{Value: "EDUCATION", Label: "Education"},
			{Value: "SHOPPING", Label: "Shopping"},
			{Value: "UTILITIES", Label: "Utilities"},
			{Value: "TRAVEL", Label: "Travel"},
			{Value: "OTHER_EXP", Label: "Other Expense"},
		},
	}
}
