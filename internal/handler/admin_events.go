package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/reservation"
)

func resourceParam(c echo.Context) (apiclient.Resource, error) {
    r, ok := apiclient.ParseResource(c.Param("kind"))
    if !ok {
        return "", &reservation.ValidationError{Field: "kind", Message: "kind must be events, sub-events or ticket-types"}
    }
    return r, nil
}

// loadResource lists one of the event collections.
func loadResource(ctx context.Context, api *apiclient.API, r apiclient.Resource) (any, int, error) {
    switch r {
    case apiclient.ResourceSubEvents:
        l, err := api.SubEvents(ctx)
        return l.Items, len(l.Items), err
    case apiclient.ResourceTicketTypes:
        l, err := api.TicketTypes(ctx)
        return l.Items, len(l.Items), err
    default:
        l, err := api.Events(ctx, apiclient.EventFilter{})
        return l.Items, len(l.Items), err
    }
}

func (h *Handler) resourceList(c echo.Context, api *apiclient.API, r apiclient.Resource, status int) error {
    items, n, err := loadResource(c.Request().Context(), api, r)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(status, echo.Map{"kind": r, "items": items, "count": n})
}

// purgePublic drops cached public event pages after an edit.
func (h *Handler) purgePublic(c echo.Context) {
    if err := h.Cache.Purge(c.Request().Context()); err != nil {
        c.Logger().Warnf("purge event cache: %v", err)
    }
}

// AdminResources handles GET /admin/events/:kind.
func (h *Handler) AdminResources(c echo.Context) error {
    r, err := resourceParam(c)
    if err != nil {
        return fail(c, err)
    }
    return h.resourceList(c, h.api(c), r, http.StatusOK)
}

func bindPayload(c echo.Context) (map[string]any, error) {
    payload := map[string]any{}
    if err := (&echo.DefaultBinder{}).BindBody(c, &payload); err != nil || len(payload) == 0 {
        return nil, &reservation.ValidationError{Field: "body", Message: "a JSON object is required"}
    }
    return payload, nil
}

// CreateResource handles POST /admin/events/:kind.  The payload is passed
// through; the API validates it.
func (h *Handler) CreateResource(c echo.Context) error {
    r, err := resourceParam(c)
    if err != nil {
        return fail(c, err)
    }
    payload, err := bindPayload(c)
    if err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    if _, err := api.CreateResource(c.Request().Context(), r, payload); err != nil {
        return fail(c, err)
    }
    h.purgePublic(c)
    return h.resourceList(c, api, r, http.StatusCreated)
}

// UpdateResource handles PATCH /admin/events/:kind/:key.  Events are keyed
// by slug, the other collections by id.
func (h *Handler) UpdateResource(c echo.Context) error {
    r, err := resourceParam(c)
    if err != nil {
        return fail(c, err)
    }
    payload, err := bindPayload(c)
    if err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    if _, err := api.UpdateResource(c.Request().Context(), r, c.Param("key"), payload); err != nil {
        return fail(c, err)
    }
    h.purgePublic(c)
    return h.resourceList(c, api, r, http.StatusOK)
}

// DeleteResource handles DELETE /admin/events/:kind/:key.
func (h *Handler) DeleteResource(c echo.Context) error {
    r, err := resourceParam(c)
    if err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    if err := api.DeleteResource(c.Request().Context(), r, c.Param("key")); err != nil {
        return fail(c, err)
    }
    h.purgePublic(c)
    return h.resourceList(c, api, r, http.StatusOK)
}
