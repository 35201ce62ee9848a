// Package handler exposes HTTP handlers for the public pages, the guest's
// own reservations, authentication and the admin back-office.  Handlers
// return JSON view-models; every piece of data is fetched from the
// reservations API with the caller's session.

package handler

import (
    "net/http"
    "strconv"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/activity"
    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/calendar"
    "github.com/parliamentplating/reservations-web/internal/listing"
    "github.com/parliamentplating/reservations-web/internal/middleware"
    "github.com/parliamentplating/reservations-web/internal/model"
    "github.com/parliamentplating/reservations-web/internal/reservation"
)

// maxTicketsPerReservation caps the quantity selector.
const maxTicketsPerReservation = 10

// EventCard is an event as listed on /events.
type EventCard struct {
    model.Event
    PriceLabel string `json:"price_label"`
}

func priceLabel(e model.Event) string {
    if p := e.MinPrice(); p > 0 {
        return "From " + model.FormatRand(p)
    }
    return "Free"
}

// ListEvents handles GET /events.  location and start_date are filtered by
// the API, search is applied here to title and description.
func (h *Handler) ListEvents(c echo.Context) error {
    f := apiclient.EventFilter{
        Location:  strings.TrimSpace(c.QueryParam("location")),
        StartDate: strings.TrimSpace(c.QueryParam("start_date")),
    }
    list, err := h.api(c).Events(c.Request().Context(), f)
    if err != nil {
        return fail(c, err)
    }
    found := listing.SearchEvents(list.Items, c.QueryParam("search"))
    cards := make([]EventCard, 0, len(found))
    for _, e := range found {
        cards = append(cards, EventCard{Event: e, PriceLabel: priceLabel(e)})
    }
    h.track(c, activity.New(activity.PageView, c.Request().URL.Path))
    return c.JSON(http.StatusOK, echo.Map{"events": cards, "count": len(cards)})
}

// GetEvent handles GET /events/:slug.  Banking details are fetched alongside
// so the reservation modal can show where to pay; a failure there does not
// fail the page.
func (h *Handler) GetEvent(c echo.Context) error {
    ctx := c.Request().Context()
    api := h.api(c)
    ev, err := api.Event(ctx, c.Param("slug"))
    if err != nil {
        return fail(c, err)
    }
    banks, err := api.BankingDetails(ctx)
    if err != nil {
        c.Logger().Warnf("banking details for %s: %v", ev.Slug, err)
    }

    entry := calendar.FromEvent(ev)
    view := activity.New(activity.EventView, c.Request().URL.Path)
    view.EventSlug = ev.Slug
    h.track(c, view)
    return c.JSON(http.StatusOK, echo.Map{
        "event":          ev,
        "price_label":    priceLabel(ev),
        "max_quantity":   maxTicketsPerReservation,
        "banking_detail": reservation.ActiveBank(banks.Items),
        "calendar": calendar.Links{
            Google:   h.Calendar.GoogleURL(entry, ""),
            Outlook:  h.Calendar.OutlookURL(entry, ""),
            Filename: calendar.EventFilename(ev.Title),
        },
    })
}

type reservationForm struct {
    TicketType uint64 `json:"ticket_type" form:"ticket_type"`
    Quantity   int    `json:"quantity" form:"quantity"`
    GuestEmail string `json:"guest_email" form:"guest_email" validate:"omitempty,email"`
}

// CreateReservation handles POST /events/:slug/reservations.  The guest must
// be logged in; the profile is fetched first and an unauthenticated answer
// becomes a login redirect back to the event.
func (h *Handler) CreateReservation(c echo.Context) error {
    ctx := c.Request().Context()
    api := h.api(c)
    slug := c.Param("slug")

    var form reservationForm
    if err := bindValid(c, &form); err != nil {
        return fail(c, err)
    }
    if form.TicketType == 0 {
        return fail(c, &reservation.ValidationError{Field: "ticket_type", Message: "Please select a ticket type before booking."})
    }

    user, err := api.Me(ctx)
    if err != nil {
        status, body := errorBody(c, err)
        if status == http.StatusUnauthorized {
            body["redirect"] = middleware.LoginRedirect("/events/" + slug)
        }
        return c.JSON(status, body)
    }

    ev, err := api.Event(ctx, slug)
    if err != nil {
        return fail(c, err)
    }
    ticket, ok := ev.TicketByID(form.TicketType)
    if !ok {
        return fail(c, &reservation.ValidationError{Field: "ticket_type", Message: "That ticket type is not offered for this event."})
    }
    limit := ticket.QuantityAvailable
    if limit > maxTicketsPerReservation {
        limit = maxTicketsPerReservation
    }
    if limit < 1 {
        return fail(c, &reservation.ValidationError{Field: "ticket_type", Message: "This ticket type is sold out."})
    }
    if form.Quantity < 1 || form.Quantity > limit {
        return fail(c, &reservation.ValidationError{Field: "quantity", Message: "Choose between 1 and " + strconv.Itoa(limit) + " tickets."})
    }
    email := strings.TrimSpace(form.GuestEmail)
    if email == "" {
        email = user.Email
    }

    r, err := api.CreateReservation(ctx, model.CreateReservationRequest{
        TicketType: ticket.ID,
        Quantity:   form.Quantity,
        GuestEmail: email,
    })
    attempt := activity.New(activity.ReservationAttempt, c.Request().URL.Path)
    attempt.EventSlug = slug
    attempt.Reference = r.ReferenceCode
    h.track(c, attempt.With("success", strconv.FormatBool(err == nil)))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{
        "reservation": r,
        "redirect":    "/reservations/" + r.ReferenceCode,
    })
}
