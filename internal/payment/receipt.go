package payment

import (
	"time"

	"github.com/cisd/recruitment-portal/internal/application"
)

type Company struct {
	Name    string
	Address string
	Phone   string
	Email   string
}

var CISD = Company{
	Name:    "College Of Skill Development",
	Address: "48 Main Margalla Rd, F-7/2, Islamabad, Pakistan",
	Phone:   "+92 322 0547996",
	Email:   "hr@cisd.edu.pk",
}

const (
	TitleReceipt = "PAYMENT RECEIPT"
	TitleSummary = "PAYMENT SUMMARY"
	Footer       = "Thank you for your payment. This is a computer generated receipt and does not require a physical signature."
)

// Receipt is the printable view of either one payment or the whole ledger.
// Entry is nil for a summary.
type Receipt struct {
	Title          string
	Number         string
	Issued         time.Time
	Company        Company
	CandidateName  string
	PassportNumber string
	Currency       string

	Entry       *Entry
	AmountWords string

	Total     int64
	Paid      int64
	Remaining int64
	Entries   []Entry

	Footer string
}

func (r Receipt) Single() bool {
	return r.Entry != nil
}

// NewReceipt builds a receipt for entryID, or a summary of every payment when
// entryID is empty.
func NewReceipt(l Ledger, app application.Application, entryID string, now time.Time) (Receipt, error) {
	r := Receipt{
		Title:          TitleSummary,
		Issued:         now,
		Company:        CISD,
		CandidateName:  app.FullName,
		PassportNumber: app.PassportNumber,
		Currency:       l.Currency,
		Total:          l.TotalAmount,
		Paid:           l.Paid(),
		Remaining:      l.Remaining(),
		Footer:         Footer,
	}
	if entryID == "" {
		r.Entries = l.Chronological()
		return r, nil
	}
	e, ok := l.Find(entryID)
	if !ok {
		return Receipt{}, ErrNotFound
	}
	r.Title = TitleReceipt
	r.Number = string(e.ID)
	r.Entry = &e
	r.AmountWords = InWords(e.Amount, l.Currency)
	return r, nil
}
