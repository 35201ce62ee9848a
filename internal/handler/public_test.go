package handler

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/parliamentplating/reservations-web/internal/activity"
    "github.com/parliamentplating/reservations-web/internal/model"
)

func wineNight() model.Event {
    return model.Event{
        ID:            7,
        Title:         "Wine Night",
        Slug:          "wine-night",
        Location:      "Cape Town",
        StartDatetime: time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC),
        EndDatetime:   time.Date(2026, 11, 1, 21, 0, 0, 0, time.UTC),
        Published:     true,
        TicketTypes: []model.TicketType{
            {ID: 3, Event: 7, Name: "Standard", Price: 450, ReservationFee: 100, QuantityAvailable: 4},
            {ID: 4, Event: 7, Name: "Sold out", Price: 900, ReservationFee: 200, QuantityAvailable: 0},
        },
    }
}

func TestListEvents(t *testing.T) {
    env := newTestEnv(t)
    env.e.GET("/events", env.h.ListEvents)

    var location string
    env.api.on(http.MethodGet, "/events/events/", func(w http.ResponseWriter, r *http.Request) {
        location = r.URL.Query().Get("location")
        writeJSON(w, http.StatusOK, map[string]any{
            "count":    2,
            "next":     nil,
            "previous": nil,
            "results": []model.Event{
                wineNight(),
                {ID: 8, Title: "Bread Class", Slug: "bread-class"},
            },
        })
    })

    tests := []struct {
        description string
        target      string
        count       int
    }{
        {description: "all events", target: "/events?location=Cape+Town", count: 2},
        {description: "search by title is case insensitive", target: "/events?search=WINE", count: 1},
        {description: "search with no match", target: "/events?search=opera", count: 0},
    }
    for _, test := range tests {
        rec := env.do(httptest.NewRequest(http.MethodGet, test.target, nil))
        require.Equalf(t, http.StatusOK, rec.Code, test.description)
        body := decode(t, rec)
        assert.EqualValuesf(t, test.count, body["count"], test.description)
    }
    assert.Equal(t, "Cape Town", location)
    assert.Equal(t, activity.PageView, env.activity.next(t).Name)
}

func TestListEventsPriceLabel(t *testing.T) {
    assert.Equal(t, "From R 450.00", priceLabel(wineNight()))
    assert.Equal(t, "Free", priceLabel(model.Event{}))
}

func TestGetEventSurvivesBankingFailure(t *testing.T) {
    env := newTestEnv(t)
    env.e.GET("/events/:slug", env.h.GetEvent)
    env.api.reply(http.MethodGet, "/events/events/wine-night/", http.StatusOK, wineNight())
    env.api.reply(http.MethodGet, "/payments/banking-details/", http.StatusInternalServerError, map[string]string{"detail": "boom"})

    rec := env.do(httptest.NewRequest(http.MethodGet, "/events/wine-night", nil))
    require.Equal(t, http.StatusOK, rec.Code)
    body := decode(t, rec)
    assert.Nil(t, body["banking_detail"])
    links := body["calendar"].(map[string]any)
    assert.Contains(t, links["google"], "calendar.google.com")
    assert.Equal(t, "event-wine-night.ics", links["filename"])
}

func TestCreateReservation(t *testing.T) {
    tests := []struct {
        description string
        body        string
        loggedIn    bool
        status      int
        field       string
        redirect    string
    }{
        {description: "ticket type is required", body: `{"quantity":1}`, loggedIn: true, status: http.StatusUnprocessableEntity, field: "ticket_type"},
        {description: "anonymous guest is sent to login", body: `{"ticket_type":3,"quantity":1}`, status: http.StatusUnauthorized, redirect: "/login?redirect=%2Fevents%2Fwine-night"},
        {description: "unknown ticket type", body: `{"ticket_type":99,"quantity":1}`, loggedIn: true, status: http.StatusUnprocessableEntity, field: "ticket_type"},
        {description: "sold out ticket type", body: `{"ticket_type":4,"quantity":1}`, loggedIn: true, status: http.StatusUnprocessableEntity, field: "ticket_type"},
        {description: "more than available", body: `{"ticket_type":3,"quantity":5}`, loggedIn: true, status: http.StatusUnprocessableEntity, field: "quantity"},
        {description: "zero quantity", body: `{"ticket_type":3,"quantity":0}`, loggedIn: true, status: http.StatusUnprocessableEntity, field: "quantity"},
        {description: "invalid guest email", body: `{"ticket_type":3,"quantity":1,"guest_email":"nope"}`, loggedIn: true, status: http.StatusUnprocessableEntity},
        {description: "created", body: `{"ticket_type":3,"quantity":2}`, loggedIn: true, status: http.StatusCreated, redirect: "/reservations/PPPA-0001"},
    }

    for _, test := range tests {
        env := newTestEnv(t)
        env.e.POST("/events/:slug/reservations", env.h.CreateReservation)
        env.api.on(http.MethodGet, "/auth/me/", func(w http.ResponseWriter, r *http.Request) {
            if r.Header.Get("Authorization") == "" {
                writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Authentication credentials were not provided."})
                return
            }
            writeJSON(w, http.StatusOK, model.User{ID: 1, Email: "guest@example.com", Role: model.RoleAttendee})
        })
        env.api.reply(http.MethodGet, "/events/events/wine-night/", http.StatusOK, wineNight())
        var sent model.CreateReservationRequest
        env.api.on(http.MethodPost, "/reservations/reservations/", func(w http.ResponseWriter, r *http.Request) {
            _ = decodeBody(r, &sent)
            writeJSON(w, http.StatusCreated, model.Reservation{ID: 1, ReferenceCode: "PPPA-0001", Status: model.StatusReserved})
        })

        req := jsonRequest(http.MethodPost, "/events/wine-night/reservations", test.body)
        if test.loggedIn {
            env.login(t, req, model.RoleAttendee)
        }
        rec := env.do(req)
        require.Equalf(t, test.status, rec.Code, "%s: %s", test.description, rec.Body.String())
        body := decode(t, rec)
        if test.field != "" {
            assert.Equalf(t, test.field, body["field"], test.description)
        }
        if test.redirect != "" {
            assert.Equalf(t, test.redirect, body["redirect"], test.description)
        }
        if test.status == http.StatusCreated {
            assert.Equal(t, "guest@example.com", sent.GuestEmail, "email falls back to the profile")
            assert.Equal(t, 2, sent.Quantity)
            ev := env.activity.next(t)
            assert.Equal(t, activity.ReservationAttempt, ev.Name)
            assert.Equal(t, "PPPA-0001", ev.Reference)
        } else {
            assert.Zerof(t, env.api.called(http.MethodPost, "/reservations/reservations/"), test.description)
        }
    }
}
