package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/model"
)

func userKey(u model.User) uint64 { return u.ID }

// AdminUsers handles GET /admin/users.
func (h *Handler) AdminUsers(c echo.Context) error {
    list, err := h.api(c).Users(c.Request().Context())
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"users": list.Items})
}

// UpdateUser handles PATCH /admin/users/:id (name, phone, role, verified).
func (h *Handler) UpdateUser(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return fail(c, err)
    }
    var upd model.ProfileUpdate
    if err := bindValid(c, &upd); err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    ctx := c.Request().Context()
    if _, err := api.UpdateUser(ctx, id, upd); err != nil {
        return fail(c, err)
    }
    list, err := api.Users(ctx)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"users": list.Items})
}

// DeleteUser handles DELETE /admin/users/:id.
func (h *Handler) DeleteUser(c echo.Context) error {
    id, err := paramID(c, "id")
    if err != nil {
        return fail(c, err)
    }
    api := h.api(c)
    res, mutErr, err := deleteAndReconcile(c.Request().Context(), api.Users, userKey, id, api.DeleteUser)
    if err != nil {
        return fail(c, err)
    }
    if mutErr != nil {
        status, body := errorBody(c, mutErr)
        body["users"] = res
        return c.JSON(status, body)
    }
    return c.JSON(http.StatusOK, echo.Map{"users": res})
}
