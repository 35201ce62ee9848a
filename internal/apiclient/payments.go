package apiclient

import (
	"context"
	"fmt"
	"net/http"

	"github.com/parliamentplating/reservations-web/internal/model"
)

func (a *API) Payments(ctx context.Context) (List[model.Payment], error) {
	return getList[model.Payment](ctx, a, "/payments/payments/", nil)
}

// CreatePayment records a manual payment.  The API updates the reservation's
// amount paid; re-fetch reservations to see the new balance.
func (a *API) CreatePayment(ctx context.Context, req model.CreatePaymentRequest) (model.Payment, error) {
	var p model.Payment
	err := a.sendJSON(ctx, http.MethodPost, "/payments/payments/", req, &p)
	return p, err
}

func (a *API) MarkPaymentCompleted(ctx context.Context, id uint64, transactionRef string) error {
	body := map[string]string{"transaction_reference": transactionRef}
	return a.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/payments/payments/%d/mark-completed/", id), body, nil)
}

func (a *API) DeletePayment(ctx context.Context, id uint64) error {
	return a.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/payments/payments/%d/", id)}, nil)
}

func (a *API) PaymentStats(ctx context.Context) (model.PaymentStats, error) {
	var s model.PaymentStats
	err := a.getJSON(ctx, "/payments/payments/stats/", nil, &s)
	return s, err
}

func (a *API) BankingDetails(ctx context.Context) (List[model.BankingDetail], error) {
	return getList[model.BankingDetail](ctx, a, "/payments/banking-details/", nil)
}

func (a *API) CreateBankingDetail(ctx context.Context, d model.BankingDetail) (model.BankingDetail, error) {
	var out model.BankingDetail
	err := a.sendJSON(ctx, http.MethodPost, "/payments/banking-details/", d, &out)
	return out, err
}

func (a *API) UpdateBankingDetail(ctx context.Context, id uint64, d model.BankingDetail) (model.BankingDetail, error) {
	var out model.BankingDetail
	err := a.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/payments/banking-details/%d/", id), d, &out)
	return out, err
}

func (a *API) DeleteBankingDetail(ctx context.Context, id uint64) error {
	return a.do(ctx, call{method: http.MethodDelete, path: fmt.Sprintf("/payments/banking-details/%d/", id)}, nil)
}
