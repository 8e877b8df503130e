package payment

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
)

const (
	DefaultTotal    int64 = 85000
	DefaultCurrency       = "PKR"
	dateLayout            = "2006-01-02"
)

var (
	ErrAmountRequired = errors.New("Amount must be greater than zero")
	ErrAmountInvalid  = errors.New("Amount must be a whole number")
	ErrDateRequired   = errors.New("Payment date is required")
	ErrMethodInvalid  = errors.New("Unknown payment method")
	ErrTotalNegative  = errors.New("Total amount cannot be negative")
	ErrNotFound       = errors.New("Payment not found")
)

type Method string

const (
	MethodBank      Method = "bank"
	MethodJazzCash  Method = "jazzcash"
	MethodEasyPaisa Method = "easypaisa"
	MethodCash      Method = "cash"
)

var Methods = []Method{MethodBank, MethodCash, MethodJazzCash, MethodEasyPaisa}

func (m Method) Label() string {
	switch m {
	case MethodBank:
		return "Bank Transfer"
	case MethodJazzCash:
		return "JazzCash"
	case MethodEasyPaisa:
		return "EasyPaisa"
	case MethodCash:
		return "Cash"
	}
	return string(m)
}

func (m Method) Valid() bool {
	for _, v := range Methods {
		if v == m {
			return true
		}
	}
	return false
}

// ID accepts the numeric ids written by older clients as well as ksuid strings.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if string(b) == "null" {
		*id = ""
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return errors.Wrap(err, "invalid payment id")
	}
	*id = ID(strconv.FormatInt(int64(n), 10))
	return nil
}

type Entry struct {
	ID          ID     `json:"id"`
	Date        string `json:"date"`
	Amount      int64  `json:"amount"`
	Method      Method `json:"method"`
	Description string `json:"description"`
	Printed     bool   `json:"printed"`
}

func (e Entry) Time() time.Time {
	t, _ := time.Parse(dateLayout, e.Date)
	return t
}

// DescriptionOrDefault is the text shown for entries saved without one.
func (e Entry) DescriptionOrDefault() string {
	if strings.TrimSpace(e.Description) == "" {
		return "Payment"
	}
	return e.Description
}

// Ledger is the fee plan of one application and the payments made against it.
type Ledger struct {
	ApplicationID string  `json:"applicationId"`
	TotalAmount   int64   `json:"totalAmount"`
	Currency      string  `json:"currency"`
	Payments      []Entry `json:"payments"`
}

func NewLedger(applicationID string, total int64, currency string) Ledger {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Ledger{
		ApplicationID: applicationID,
		TotalAmount:   total,
		Currency:      currency,
		Payments:      []Entry{},
	}
}

func (l *Ledger) SetTotal(amount int64) error {
	if amount < 0 {
		return ErrTotalNegative
	}
	l.TotalAmount = amount
	return nil
}

// Add validates e, assigns it a fresh id and appends it unprinted.
func (l *Ledger) Add(e Entry) (Entry, error) {
	if e.Amount <= 0 {
		return Entry{}, ErrAmountRequired
	}
	e.Date = strings.TrimSpace(e.Date)
	if e.Date == "" {
		return Entry{}, ErrDateRequired
	}
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return Entry{}, ErrDateRequired
	}
	if e.Method == "" {
		e.Method = MethodBank
	}
	if !e.Method.Valid() {
		return Entry{}, ErrMethodInvalid
	}
	e.ID = ID(ksuid.New().String())
	e.Description = strings.TrimSpace(e.Description)
	e.Printed = false
	l.Payments = append(l.Payments, e)
	return e, nil
}

func (l *Ledger) Remove(id string) error {
	for i, e := range l.Payments {
		if string(e.ID) == id {
			l.Payments = append(l.Payments[:i], l.Payments[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// MarkPrinted flags one entry as printed, or all of them when id is empty.
func (l *Ledger) MarkPrinted(id string) error {
	if id == "" {
		for i := range l.Payments {
			l.Payments[i].Printed = true
		}
		return nil
	}
	for i := range l.Payments {
		if string(l.Payments[i].ID) == id {
			l.Payments[i].Printed = true
			return nil
		}
	}
	return ErrNotFound
}

func (l Ledger) Find(id string) (Entry, bool) {
	for _, e := range l.Payments {
		if string(e.ID) == id {
			return e, true
		}
	}
	return Entry{}, false
}

func (l Ledger) Paid() int64 {
	var sum int64
	for _, e := range l.Payments {
		sum += e.Amount
	}
	return sum
}

func (l Ledger) Remaining() int64 {
	return l.TotalAmount - l.Paid()
}

func (l Ledger) Overpaid() bool {
	return l.Remaining() < 0
}

func (l Ledger) Progress() float64 {
	if l.TotalAmount <= 0 {
		return 0
	}
	return float64(l.Paid()) / float64(l.TotalAmount) * 100
}

// ProgressPercent is the rounded progress clamped to [0, 100] for display.
func (l Ledger) ProgressPercent() int {
	p := math.Round(l.Progress())
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return int(p)
}

// History lists entries newest first.
func (l Ledger) History() []Entry {
	return l.sorted(func(a, b time.Time) bool { return a.After(b) })
}

// Chronological lists entries oldest first, as printed on a summary.
func (l Ledger) Chronological() []Entry {
	return l.sorted(func(a, b time.Time) bool { return a.Before(b) })
}

func (l Ledger) sorted(less func(a, b time.Time) bool) []Entry {
	out := make([]Entry, len(l.Payments))
	copy(out, l.Payments)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i].Time(), out[j].Time())
	})
	return out
}
