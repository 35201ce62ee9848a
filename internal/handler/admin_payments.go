package handler

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/listing"
    "github.com/parliamentplating/reservations-web/internal/model"
)

func paymentKey(p model.Payment) uint64 { return p.ID }
func bankKey(b model.BankingDetail) uint64 { return b.ID }

// paymentsPage loads the payments ledger, its stats and the banking details.
func (h *Handler) paymentsPage(ctx context.Context, api *apiclient.API) (echo.Map, error) {
    payments, err := api.Payments(ctx)
    if err != nil {
        return nil, err
    }
    stats, err := api.PaymentStats(ctx)
    if err != nil {
        return nil, err
    }
    banks, err := api.BankingDetails(ctx)
    if err != nil {
        return nil, err
    }
    pending, history := listing.SplitPayments(payments.Items)
    return echo.Map{
        "pending":         pending,
        "history":         history,
        "stats":           stats,
        "banking_details": banks.Items,
    }, nil
}

// AdminPayments handles GET /admin/payments.
func (h *Handler) AdminPayments(c echo.Context) error {
    page, err := h.paymentsPage(c.Request().Context(), h.api(c))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, page)
}

// CreatePayment handles POST /admin/payments: a manual ledger entry.
func (h *Handler) CreatePayment(c echo.Context) error {
    var req model.CreatePaymentRequest
    if err := bindValid(c, &req); err != nil {
        return fail(c, err)
    }
    if req.Status == "" {
        req.Status = model.PaymentCompleted
    }
    api := h.api(c)
    ctx := c.Request().Context()
    if _, err := api.CreatePayment(ctx, req); err != nil {
        return fail(c, err)
    }
    page, err := h.paymentsPage(ctx, api)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, page)
}

type markCompletedForm struct {
    TransactionReference string `json:"transaction_reference" form:"transaction_reference"`
}

// MarkPaymentCompleted handles POST /admin/payments/:id/mark-completed.
func (h *Handler) MarkPaymentCompleted(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return fail(c, err)
    }
    var form markCompletedForm
    if err := c.Bind(&form); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    api := h.api(c)
    ctx := c.Request().Context()
    if err := api.MarkPaymentCompleted(ctx, id, strings.TrimSpace(form.TransactionReference)); err != nil {
        return fail(c, err)
    }
    page, err := h.paymentsPage(ctx, api)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, page)
}

// DeletePayment handles DELETE /admin/payments/:id.
func (h *Handler) DeletePayment(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    res, mutErr, err := deleteAndReconcile(c.Request().Context(), api.Payments, paymentKey, id, api.DeletePayment)
    if err != nil {
        return fail(c, err)
    }
    if mutErr != nil {
        status, body := errorBody(c, mutErr)
        body["payments"] = res
        return c.JSON(status, body)
    }
    return c.JSON(http.StatusOK, echo.Map{"payments": res})
}

// BankingDetails handles GET /admin/banking-details.
func (h *Handler) BankingDetails(c echo.Context) error {
    list, err := h.api(c).BankingDetails(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"banking_details": list.Items})
}

func (h *Handler) bankingList(c echo.Context, api *apiclient.API, status int) error {
    list, err := api.BankingDetails(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(status, echo.Map{"banking_details": list.Items})
}

// CreateBankingDetail handles POST /admin/banking-details.
func (h *Handler) CreateBankingDetail(c echo.Context) error {
    var d model.BankingDetail
    if err := bindValid(c, &d); err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    if _, err := api.CreateBankingDetail(c.Request().Context(), d); err != nil {
        return fail(c, err)
    }
    h.purgePublic(c)
    return h.bankingList(c, api, http.StatusCreated)
}

// UpdateBankingDetail handles PATCH /admin/banking-details/:id.
func (h *Handler) UpdateBankingDetail(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return fail(c, err)
    }
    var d model.BankingDetail
    if err := bindValid(c, &d); err != nil {
        return fail(c, err)
    }
    d.ID = id
    api := h.api(c)
    if _, err := api.UpdateBankingDetail(c.Request().Context(), id, d); err != nil {
        return fail(c, err)
    }
    h.purgePublic(c)
    return h.bankingList(c, api, http.StatusOK)
}

// DeleteBankingDetail handles DELETE /admin/banking-details/:id.
func (h *Handler) DeleteBankingDetail(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    res, mutErr, err := deleteAndReconcile(c.Request().Context(), api.BankingDetails, bankKey, id, api.DeleteBankingDetail)
    if err != nil {
        return fail(c, err)
    }
    // The event pages embed the banking detail, so refresh them even when
    // the delete only partly went through.
    h.purgePublic(c)
    if mutErr != nil {
        status, body := errorBody(c, mutErr)
        body["banking_details"] = res
        return c.JSON(status, body)
    }
    return c.JSON(http.StatusOK, echo.Map{"banking_details": res})
}
