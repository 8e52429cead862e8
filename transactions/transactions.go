package transactions

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Type classifies a transaction on the client side.
type Type string

const (
	Income  Type = "income"
	Expense Type = "expense"
)

// Wire codes used by the backend's transaction_type field.
const (
	wireIncome  = "IN"
	wireExpense = "EX"
)

const dateLayout = "2006-01-02"

// Transaction is the client-side shape. Amount is always non-negative; the
// sign lives in Type.
type Transaction struct {
	ID          int64
	Date        string // YYYY-MM-DD
	Type        Type
	Category    string
	Description string
	Amount      float64
}

// Amount tolerates both JSON numbers and the string encoding the backend's
// decimal fields serialize to.
type Amount float64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

// wireTransaction is the backend's representation.
type wireTransaction struct {
	ID              int64  `json:"id,omitempty"`
	Amount          Amount `json:"amount"`
	TransactionType string `json:"transaction_type"`
	Category        string `json:"category"`
	CategoryDisplay string `json:"category_display,omitempty"`
	Description     string `json:"description"`
	Date            string `json:"date"`
}

// wirePayload is the subset sent on create/update.
type wirePayload struct {
	Amount          float64 `json:"amount"`
	TransactionType string  `json:"transaction_type"`
	Category        string  `json:"category"`
	Description     string  `json:"description"`
	Date            string  `json:"date"`
}

// fromWire maps the backend shape to the client shape: IN/EX becomes
// income/expense, the display category is preferred over the raw code, and
// the amount is normalized to non-negative regardless of the sign received.
func fromWire(w wireTransaction) Transaction {
	txType := Expense
	if w.TransactionType == wireIncome {
		txType = Income
	}
	category := w.Category
	if w.CategoryDisplay != "" {
		category = w.CategoryDisplay
	}
	return Transaction{
		ID:          w.ID,
		Date:        w.Date,
		Type:        txType,
		Category:    category,
		Description: w.Description,
		Amount:      math.Abs(float64(w.Amount)),
	}
}

// toWire maps the client shape back: the date is normalized to YYYY-MM-DD,
// accepting both a bare date and an RFC 3339 timestamp. An empty date means
// today; a non-empty date that does not parse is an error rather than a
// silent substitution.
func toWire(t Transaction) (wirePayload, error) {
	wireType := wireExpense
	if t.Type == Income {
		wireType = wireIncome
	}
	date, err := normalizeDate(t.Date)
	if err != nil {
		return wirePayload{}, err
	}
	return wirePayload{
		Amount:          t.Amount,
		TransactionType: wireType,
		Category:        t.Category,
		Description:     t.Description,
		Date:            date,
	}, nil
}

func normalizeDate(date string) (string, error) {
	if date == "" {
		return time.Now().Format(dateLayout), nil
	}
	if idx := strings.Index(date, "T"); idx > 0 {
		date = date[:idx]
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return "", errors.Errorf("invalid date %q, want YYYY-MM-DD", date)
	}
	return date, nil
}

// decodeList handles both response shapes the backend produces: a bare array
// and a paginated {"results": [...]} envelope.
func decodeList(raw json.RawMessage) ([]Transaction, error) {
	var wires []wireTransaction
	if err := json.Unmarshal(raw, &wires); err != nil {
		var envelope struct {
			Results []wireTransaction `json:"results"`
		}
		if envErr := json.Unmarshal(raw, &envelope); envErr != nil {
			return nil, err
		}
		wires = envelope.Results
	}
	list := make([]Transaction, 0, len(wires))
	for _, w := range wires {
		list = append(list, fromWire(w))
	}
	return list, nil
}
