package handler

import (
    "context"
    "errors"
    "io"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/skip2/go-qrcode"

    "github.com/parliamentplating/reservations-web/internal/activity"
    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/calendar"
    "github.com/parliamentplating/reservations-web/internal/model"
    "github.com/parliamentplating/reservations-web/internal/reservation"
)

// statusPage is the payload of the reservation status page.
type statusPage struct {
    Reservation  model.Reservation `json:"reservation"`
    View         reservation.View  `json:"view"`
    SelectedFile string            `json:"selected_file,omitempty"`
}

// banks loads banking details for the payment instructions.  Errors are
// logged and yield no details.
func (h *Handler) banks(c echo.Context, api *apiclient.API) []model.BankingDetail {
    list, err := api.BankingDetails(c.Request().Context())
    if err != nil {
        c.Logger().Warnf("banking details: %v", err)
    }
    return list.Items
}

func (h *Handler) statusPage(c echo.Context, api *apiclient.API, r model.Reservation) statusPage {
    p := statusPage{Reservation: r, View: reservation.Project(r, h.banks(c, api))}
    if p.View.Can(reservation.UploadProof) {
        if f, ok := h.Uploads.Selected(r.ReferenceCode); ok {
            p.SelectedFile = f.Name
        }
    }
    return p
}

// ReservationStatus handles GET /reservations/:reference.  The reference is
// the guest's lookup key; no login is needed.
func (h *Handler) ReservationStatus(c echo.Context) error {
    api := h.api(c)
    r, err := api.ReservationByReference(c.Request().Context(), c.Param("reference"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, h.statusPage(c, api, r))
}

// readProof turns the multipart "file" field into a ProofFile.  A missing
// field yields nil so the upload flow can reuse a retained selection.  The
// declared size is checked before the body is read.
func readProof(c echo.Context) (*reservation.ProofFile, error) {
    fh, err := c.FormFile("file")
    if errors.Is(err, http.ErrMissingFile) {
        return nil, nil
    }
    if err != nil {
        return nil, &reservation.ValidationError{Field: "file", Message: "Could not read the uploaded file."}
    }
    pf := &reservation.ProofFile{Name: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Size: fh.Size}
    if err := reservation.ValidateProof(pf); err != nil {
        return nil, err
    }
    src, err := fh.Open()
    if err != nil {
        return nil, &reservation.ValidationError{Field: "file", Message: "Could not read the uploaded file."}
    }
    defer src.Close()
    pf.Data, err = io.ReadAll(io.LimitReader(src, reservation.MaxProofSize+1))
    if err != nil {
        return nil, &reservation.ValidationError{Field: "file", Message: "Could not read the uploaded file."}
    }
    return pf, nil
}

// UploadProof handles POST /reservations/:reference/proof with the
// multipart fields file and payment_option.  The view only moves on once
// the re-fetched reservation says so.
func (h *Handler) UploadProof(c echo.Context) error {
    ref := c.Param("reference")
    opt, err := reservation.ParsePaymentOption(c.FormValue("payment_option"))
    if err != nil {
        return fail(c, err)
    }
    file, err := readProof(c)
    if err != nil {
        return fail(c, err)
    }

    api := h.api(c)
    out, err := h.Uploads.Submit(c.Request().Context(), api, ref, opt, file)
    if err != nil && out.Uploaded {
        // The proof is stored but the refreshed status is unknown; show the
        // last known state rather than guessing.
        c.Logger().Warnf("refresh after proof upload for %s: %v", ref, err)
        return c.JSON(http.StatusAccepted, echo.Map{
            "page":    h.statusPage(c, api, out.Reservation),
            "message": "Your proof was uploaded. Refresh the page to see the latest status.",
        })
    }
    if err != nil {
        status, body := errorBody(c, err)
        _, kept := h.Uploads.Selected(ref)
        body["file_retained"] = kept
        return c.JSON(status, body)
    }

    ev := activity.New(activity.PaymentUpload, c.Request().URL.Path)
    ev.Reference = ref
    h.track(c, ev.With("payment_option", string(opt)).With("amount", strconv.FormatFloat(out.Declared, 'f', 2, 64)))

    return c.JSON(http.StatusOK, echo.Map{
        "page":            h.statusPage(c, api, out.Reservation),
        "declared_amount": out.Declared,
        "proof":           out.Proof,
    })
}

// eventFor finds the event a reservation belongs to: an explicit ?event=
// slug, then the reservation's own slug, then a scan of the listing by
// ticket type or title.
func eventFor(ctx context.Context, c echo.Context, api *apiclient.API, r model.Reservation) (model.Event, error) {
    slug := c.QueryParam("event")
    if slug == "" {
        slug = r.EventSlug
    }
    if slug != "" {
        return api.Event(ctx, slug)
    }
    list, err := api.Events(ctx, apiclient.EventFilter{})
    if err != nil {
        return model.Event{}, err
    }
    for _, e := range list.Items {
        if _, ok := e.TicketByID(r.TicketType); ok && r.TicketType != 0 {
            return e, nil
        }
    }
    for _, e := range list.Items {
        if r.EventTitle != "" && e.Title == r.EventTitle {
            return e, nil
        }
    }
    return model.Event{}, apiclient.ErrNotFound
}

func (h *Handler) reservationEvent(c echo.Context) (model.Reservation, calendar.Entry, error) {
    ctx := c.Request().Context()
    api := h.api(c)
    r, err := api.ReservationByReference(ctx, c.Param("reference"))
    if err != nil {
        return r, calendar.Entry{}, err
    }
    ev, err := eventFor(ctx, c, api, r)
    if err != nil {
        return r, calendar.Entry{}, err
    }
    return r, calendar.FromEvent(ev), nil
}

// CalendarICS handles GET /reservations/:reference/calendar.ics.
func (h *Handler) CalendarICS(c echo.Context) error {
    r, entry, err := h.reservationEvent(c)
    if err != nil {
        return fail(c, err)
    }
    ev := activity.New(activity.CalendarAdd, c.Request().URL.Path)
    ev.Reference = r.ReferenceCode
    h.track(c, ev.With("target", "ics"))

    c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+calendar.Filename(r.ReferenceCode)+`"`)
    return c.Blob(http.StatusOK, "text/calendar;charset=utf-8", []byte(h.Calendar.ICS(entry, r.ReferenceCode, nowFunc())))
}

// CalendarLinks handles GET /reservations/:reference/calendar-links.
func (h *Handler) CalendarLinks(c echo.Context) error {
    r, entry, err := h.reservationEvent(c)
    if err != nil {
        return fail(c, err)
    }
    ev := activity.New(activity.CalendarAdd, c.Request().URL.Path)
    ev.Reference = r.ReferenceCode
    h.track(c, ev.With("target", "links"))

    return c.JSON(http.StatusOK, calendar.Links{
        Google:   h.Calendar.GoogleURL(entry, r.ReferenceCode),
        Outlook:  h.Calendar.OutlookURL(entry, r.ReferenceCode),
        ICS:      "/reservations/" + r.ReferenceCode + "/calendar.ics",
        Filename: calendar.Filename(r.ReferenceCode),
    })
}

// QRCode handles GET /reservations/:reference/qr.png: a PNG of the status
// page URL for the guest to show at the door.
func (h *Handler) QRCode(c echo.Context) error {
    r, err := h.api(c).ReservationByReference(c.Request().Context(), c.Param("reference"))
    if err != nil {
        return fail(c, err)
    }
    size := 256
    if s, err := strconv.Atoi(c.QueryParam("size")); err == nil && s >= 64 && s <= 1024 {
        size = s
    }
    png, err := qrcode.Encode(h.PublicBaseURL+"/reservations/"+r.ReferenceCode, qrcode.Medium, size)
    if err != nil {
        c.Logger().Errorf("qr for %s: %v", r.ReferenceCode, err)
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not render QR code"})
    }
    return c.Blob(http.StatusOK, "image/png", png)
}

// ownReservation is one row of the profile page.
type ownReservation struct {
    model.Reservation
    State            reservation.State `json:"state"`
    Outstanding      float64           `json:"outstanding"`
    OutstandingLabel string            `json:"outstanding_label"`
}

// ProfileReservations handles GET /profile/reservations.
func (h *Handler) ProfileReservations(c echo.Context) error {
    list, err := h.api(c).Reservations(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    rows := make([]ownReservation, 0, len(list.Items))
    for _, r := range list.Items {
        state, _ := reservation.StateOf(r.Status)
        owed := reservation.Outstanding(r.TotalAmount.Float64(), r.AmountPaid.Float64())
        rows = append(rows, ownReservation{
            Reservation:      r,
            State:            state,
            Outstanding:      owed,
            OutstandingLabel: model.FormatRand(owed),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"reservations": rows})
}
