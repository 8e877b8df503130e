package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cisd/recruitment-portal/internal/api"
	"github.com/cisd/recruitment-portal/internal/application"
	"github.com/cisd/recruitment-portal/internal/payment"
	"github.com/cisd/recruitment-portal/internal/server"

	humanize "github.com/dustin/go-humanize"
	"github.com/gorilla/mux"
)

// parseAmount reads a whole currency amount, tolerating thousands
// separators. Ledgers hold whole rupees, so fractions are rejected.
func parseAmount(s string, empty error) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, empty
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, payment.ErrAmountInvalid
	}
	return n, nil
}

func loadLedger(svr server.Server, w http.ResponseWriter, r *http.Request) (application.Application, payment.Ledger, bool) {
	app, ok := findApplication(svr, w, r)
	if !ok {
		return app, payment.Ledger{}, false
	}
	l, err := svr.Payments.Load(r.Context(), svr.Sessions.Bind(w, r), app.ID)
	if err != nil {
		if api.IsUnauthorized(err) {
			svr.Redirect(w, r, http.StatusFound, "/login")
			return app, l, false
		}
		svr.Log(err, "unable to load payment ledger")
		svr.Render(w, http.StatusBadGateway, "error.html", map[string]interface{}{
			"Title":   "Payments unavailable",
			"Message": api.UserMessage(err),
		})
		return app, l, false
	}
	return app, l, true
}

// updateLedger loads the ledger, applies change and saves the result. A
// change error is shown as a flash and nothing is written.
func updateLedger(svr server.Server, change func(*payment.Ledger) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, l, ok := loadLedger(svr, w, r)
		if !ok {
			return
		}
		back := applicationURL(app.ID, "/payments")
		msg, err := change(&l)
		if err != nil {
			svr.Sessions.AddFlash(w, r, err.Error())
			svr.Redirect(w, r, http.StatusSeeOther, back)
			return
		}
		if err := svr.Payments.Save(r.Context(), svr.Sessions.Bind(w, r), l); err != nil {
			handleBackendError(svr, w, r, err, "unable to save payment ledger", back)
			return
		}
		svr.Sessions.AddFlash(w, r, msg)
		svr.Redirect(w, r, http.StatusSeeOther, back)
	}
}

func PaymentsPageHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, l, ok := loadLedger(svr, w, r)
		if !ok {
			return
		}
		svr.Render(w, http.StatusOK, "admin-payments.html", map[string]interface{}{
			"User":        adminSession(r).User,
			"Flashes":     svr.Sessions.Flashes(w, r),
			"Application": app,
			"Ledger":      l,
			"History":     l.History(),
			"Methods":     payment.Methods,
			"Today":       time.Now().Format("2006-01-02"),
		})
	}
}

func AddPaymentHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updateLedger(svr, func(l *payment.Ledger) (string, error) {
			amount, err := parseAmount(r.FormValue("amount"), payment.ErrAmountRequired)
			if err != nil {
				return "", err
			}
			e, err := l.Add(payment.Entry{
				Date:        r.FormValue("date"),
				Amount:      amount,
				Method:      payment.Method(r.FormValue("method")),
				Description: r.FormValue("description"),
			})
			if err != nil {
				return "", err
			}
			return "Payment of " + payment.FormatAmount(e.Amount, l.Currency) + " recorded", nil
		})(w, r)
	}
}

func DeletePaymentHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updateLedger(svr, func(l *payment.Ledger) (string, error) {
			if err := l.Remove(mux.Vars(r)["paymentId"]); err != nil {
				return "", err
			}
			return "Payment removed", nil
		})(w, r)
	}
}

func SetPaymentTotalHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updateLedger(svr, func(l *payment.Ledger) (string, error) {
			amount, err := parseAmount(r.FormValue("totalAmount"), payment.ErrAmountInvalid)
			if err != nil {
				return "", err
			}
			if err := l.SetTotal(amount); err != nil {
				return "", err
			}
			msg := "Total amount set to " + payment.FormatAmount(amount, l.Currency)
			if l.Overpaid() {
				msg += ", payments exceed the total by " + humanize.Comma(-l.Remaining())
			}
			return msg, nil
		})(w, r)
	}
}

// ReceiptHandler renders a printable receipt for one payment, or a summary
// of the ledger, and flags the printed entries.
func ReceiptHandler(svr server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, l, ok := loadLedger(svr, w, r)
		if !ok {
			return
		}
		entryID := r.URL.Query().Get("payment")
		receipt, err := payment.NewReceipt(l, app, entryID, time.Now())
		if err != nil {
			notFound(svr, w, "Payment not found")
			return
		}
		if err := l.MarkPrinted(entryID); err == nil {
			if err := svr.Payments.Save(r.Context(), svr.Sessions.Bind(w, r), l); err != nil {
				svr.Log(err, "unable to flag payment as printed")
			}
		}
		svr.Render(w, http.StatusOK, "receipt.html", map[string]interface{}{
			"Receipt":     receipt,
			"Application": app,
		})
	}
}
