package payment

import (
	"context"
	"net/http"
	"net/url"

	"github.com/cisd/recruitment-portal/internal/api"

	"github.com/pkg/errors"
)

type Repository struct {
	client   *api.Client
	total    int64
	currency string
}

func NewRepository(client *api.Client, total int64, currency string) *Repository {
	return &Repository{
		client:   client,
		total:    total,
		currency: currency,
	}
}

// Load fetches the ledger of an application. Applications without one get a
// fresh ledger with the configured defaults.
func (r *Repository) Load(ctx context.Context, src api.TokenSource, applicationID string) (Ledger, error) {
	var l Ledger
	err := r.client.Do(ctx, http.MethodGet, "/api/payments/"+url.PathEscape(applicationID), src, nil, &l)
	if api.IsNotFound(err) {
		return NewLedger(applicationID, r.total, r.currency), nil
	}
	if err != nil {
		return Ledger{}, err
	}
	l.ApplicationID = applicationID
	if l.Currency == "" {
		l.Currency = r.currency
	}
	if l.Payments == nil {
		l.Payments = []Entry{}
	}
	return l, nil
}

func (r *Repository) Save(ctx context.Context, src api.TokenSource, l Ledger) error {
	if l.ApplicationID == "" {
		return errors.New("ledger has no application id")
	}
	return r.client.Do(ctx, http.MethodPost, "/api/payments", src, l, nil)
}
