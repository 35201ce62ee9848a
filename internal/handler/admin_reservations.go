package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/listing"
    "github.com/parliamentplating/reservations-web/internal/model"
    "github.com/parliamentplating/reservations-web/internal/reservation"
)

type adminReservation struct {
    model.Reservation
    State       reservation.State `json:"state"`
    Outstanding float64           `json:"outstanding"`
}

// reservationsPage loads reservations and pending proofs.  It is used both
// for the page and to re-fetch after an approve or reject.
func (h *Handler) reservationsPage(c echo.Context, api *apiclient.API) (echo.Map, error) {
    ctx := c.Request().Context()
    all, err := api.Reservations(ctx)
    if err != nil {
        return nil, err
    }
    proofs, err := api.PaymentProofs(ctx, model.VerificationPending)
    if err != nil {
        return nil, err
    }

    status := model.ReservationStatus(strings.TrimSpace(c.QueryParam("status")))
    shown := listing.FilterReservations(all.Items, status, c.QueryParam("search"))
    rows := make([]adminReservation, 0, len(shown))
    for _, r := range shown {
        state, _ := reservation.StateOf(r.Status)
        rows = append(rows, adminReservation{
            Reservation: r,
            State:       state,
            Outstanding: reservation.Outstanding(r.TotalAmount.Float64(), r.AmountPaid.Float64()),
        })
    }
    counts := map[model.ReservationStatus]int{}
    for _, r := range all.Items {
        counts[r.Status]++
    }
    return echo.Map{
        "reservations":   rows,
        "pending_proofs": proofs.Items,
        "status_counts":  counts,
        "total":          len(all.Items),
    }, nil
}

// AdminReservations handles GET /admin/reservations?status=&search=.
func (h *Handler) AdminReservations(c echo.Context) error {
    page, err := h.reservationsPage(c, h.api(c))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, page)
}

// ApproveProof handles POST /admin/proofs/:id/approve.  The API records the
// payment and advances the reservation; the page is re-fetched to show it.
func (h *Handler) ApproveProof(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    if err := api.ApproveProof(c.Request().Context(), id); err != nil {
        return fail(c, err)
    }
    page, err := h.reservationsPage(c, api)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, page)
}

type rejectForm struct {
    Reason string `json:"reason" form:"reason" validate:"required"`
}

// RejectProof handles POST /admin/proofs/:id/reject.  A reason is required;
// it is shown to the guest.
func (h *Handler) RejectProof(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return fail(c, err)
    }
    var form rejectForm
    if err := c.Bind(&form); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    form.Reason = strings.TrimSpace(form.Reason)
    if err := c.Validate(&form); err != nil {
        return fail(c, &reservation.ValidationError{Field: "reason", Message: "Please give a reason for rejecting this proof."})
    }
    api := h.api(c)
    if err := api.RejectProof(c.Request().Context(), id, form.Reason); err != nil {
        return fail(c, err)
    }
    page, err := h.reservationsPage(c, api)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, page)
}
