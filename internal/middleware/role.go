package middleware // middleware provides shared request processing for handlers

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/model"
)

// RequireRole returns a middleware function that enforces that the session
// belongs to one of the given roles.  The role is read from the API access
// token by LoadSession, so this gate only decides which pages are offered;
// the API still authorises every call.  Anonymous requests get 401 with a
// login redirect, other roles 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    // Build a set of allowed roles for constant-time lookups.
    allowed := make(map[string]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if !Authenticated(c) {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "error":    "authentication required",
                    "redirect": LoginRedirect(c.Request().URL.RequestURI()),
                })
            }
            role, ok := c.Get(CtxRole).(string)
            if !ok || !allowed[role] {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden", "view": "permission_denied"})
            }
            return next(c)
        }
    }
}

// RequireAdmin admits admins and organizers to the back-office.
func RequireAdmin() echo.MiddlewareFunc {
    return RequireRole(model.RoleAdmin, model.RoleOrganizer)
}
