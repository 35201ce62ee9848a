package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/go-playground/validator/v10"
    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/activity"
    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/calendar"
    "github.com/parliamentplating/reservations-web/internal/middleware"
    "github.com/parliamentplating/reservations-web/internal/reservation"
    "github.com/parliamentplating/reservations-web/internal/session"
)

// Handler bundles what every page handler needs.  All data comes from the
// reservations API through Client; nothing is stored here except sessions.
type Handler struct {
    Client        *apiclient.Client
    Sessions      *session.Manager
    Uploads       *reservation.Flow
    Calendar      calendar.Builder
    Location      *time.Location // calendar time zone for the scheduler
    Activity      activity.Publisher
    Cache         *middleware.ResponseCache
    PublicBaseURL string
}

// api binds the shared client to the request's session, or makes anonymous
// calls when there is none.
func (h *Handler) api(c echo.Context) *apiclient.API {
    if s := middleware.SessionFrom(c); s != nil {
        return h.Client.For(s)
    }
    return h.Client.For(nil)
}

// track publishes an activity event without blocking the response.
func (h *Handler) track(c echo.Context, ev activity.Event) {
    if s := middleware.SessionFrom(c); s != nil {
        ev.SessionID = s.ID
    }
    activity.Track(h.Activity, ev)
}

// errorBody maps an error to a status and a JSON body.  Local validation
// errors never reached the API; API errors carry the message the API gave.
func errorBody(c echo.Context, err error) (int, echo.Map) {
    var ve *reservation.ValidationError
    var fields validator.ValidationErrors
    switch {
    case errors.As(err, &ve):
        return http.StatusUnprocessableEntity, echo.Map{"error": ve.Message, "field": ve.Field}
    case errors.As(err, &fields):
        return http.StatusUnprocessableEntity, echo.Map{"error": "Please correct the highlighted fields.", "fields": fieldMessages(fields)}
    case errors.Is(err, reservation.ErrInFlight), errors.Is(err, reservation.ErrNotAwaitingPayment):
        return http.StatusConflict, echo.Map{"error": err.Error()}
    case errors.Is(err, apiclient.ErrSessionExpired), errors.Is(err, apiclient.ErrUnauthorized):
        return http.StatusUnauthorized, echo.Map{
            "error":    apiclient.Message(err),
            "redirect": middleware.LoginRedirect(c.Request().URL.RequestURI()),
        }
    case errors.Is(err, apiclient.ErrForbidden):
        return http.StatusForbidden, echo.Map{"error": apiclient.Message(err), "view": "permission_denied"}
    case errors.Is(err, apiclient.ErrNotFound):
        return http.StatusNotFound, echo.Map{"error": apiclient.Message(err)}
    case errors.Is(err, apiclient.ErrTimeout):
        return http.StatusGatewayTimeout, echo.Map{"error": apiclient.Message(err)}
    case errors.Is(err, context.Canceled):
        return http.StatusServiceUnavailable, echo.Map{"error": "request cancelled"}
    }
    if status := apiclient.StatusOf(err); status >= 400 && status < 500 {
        return status, echo.Map{"error": apiclient.Message(err)}
    }
    c.Logger().Errorf("upstream %s %s: %v", c.Request().Method, c.Path(), err)
    return http.StatusBadGateway, echo.Map{"error": apiclient.Message(err)}
}

// fail writes the response for err.
func fail(c echo.Context, err error) error {
    status, body := errorBody(c, err)
    return c.JSON(status, body)
}

// bindValid binds the request into v and runs the validator.
func bindValid(c echo.Context, v any) error {
    if err := c.Bind(v); err != nil {
        return &reservation.ValidationError{Field: "body", Message: "invalid request body"}
    }
    return c.Validate(v)
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, &reservation.ValidationError{Field: name, Message: "invalid " + name}
    }
    return id, nil
}

// safeRedirect accepts only local absolute paths.
func safeRedirect(p, fallback string) string {
    if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
        return fallback
    }
    return p
}

// nowFunc is replaced in tests.
var nowFunc = time.Now
