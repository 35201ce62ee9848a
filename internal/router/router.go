package router // package router defines how HTTP routes are registered for the web tier

import (
    "github.com/labstack/echo/v4" // import the Echo web framework to handle routing

    "github.com/parliamentplating/reservations-web/internal/handler"    // page handlers backed by the reservations API
    "github.com/parliamentplating/reservations-web/internal/middleware" // session, role, cache and rate-limit middleware
)

// RegisterRoutes registers routes that need neither a session nor the API.
// Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
    // Load balancers probe this endpoint; it never calls the API.
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the guest-facing pages.  Event browse pages are
// wrapped by the response cache; the reservation pages are keyed by the
// public reference and never cached because they change as proofs are
// verified.  limit guards the mutating routes.
func RegisterPublic(e *echo.Echo, h *handler.Handler, cache *middleware.ResponseCache, limit echo.MiddlewareFunc) {
    // Event listing and detail are identical for every visitor.
    e.GET("/events", h.ListEvents, cache.Middleware())
    e.GET("/events/:slug", h.GetEvent, cache.Middleware())
    // Creating a reservation needs a logged-in guest; the handler checks the
    // profile itself so it can send the guest back to the event after login.
    e.POST("/events/:slug/reservations", h.CreateReservation, limit)

    // Reservation status, proof upload and the calendar/QR helpers.
    r := e.Group("/reservations/:reference")
    r.GET("", h.ReservationStatus)
    r.POST("/proof", h.UploadProof, limit)
    r.GET("/calendar.ics", h.CalendarICS)
    r.GET("/calendar-links", h.CalendarLinks)
    r.GET("/qr.png", h.QRCode)

    // The guest's own reservations require a session.
    p := e.Group("/profile", middleware.RequireSession())
    p.GET("/reservations", h.ProfileReservations)
}

// RegisterAuth registers login, registration, logout and the profile
// endpoints.  Login and register are rate limited; logout works with or
// without a session so a stale cookie can always be dropped.
func RegisterAuth(e *echo.Echo, h *handler.Handler, limit echo.MiddlewareFunc) {
    e.POST("/login", h.Login, limit)
    e.POST("/register", h.Register, limit)
    e.POST("/logout", h.Logout)

    // Profile of the current user.
    me := e.Group("/me", middleware.RequireSession())
    me.GET("", h.Me)
    me.PATCH("", h.UpdateMe)
}

// RegisterAdmin registers the back-office under /admin.  Every route
// requires an admin or organizer session; the API authorises each call again
// and a 403 there is rendered as the permission-denied view.
func RegisterAdmin(e *echo.Echo, h *handler.Handler) {
    g := e.Group("/admin", middleware.RequireAdmin())

    g.GET("/dashboard", h.Dashboard)
    g.GET("/analytics", h.Analytics)
    g.GET("/scheduler", h.Scheduler)

    // Reservations and payment proof verification.
    g.GET("/reservations", h.AdminReservations)
    g.POST("/proofs/:id/approve", h.ApproveProof)
    g.POST("/proofs/:id/reject", h.RejectProof)

    // Payment ledger.
    g.GET("/payments", h.AdminPayments)
    g.POST("/payments", h.CreatePayment)
    g.POST("/payments/:id/mark-completed", h.MarkPaymentCompleted)
    g.DELETE("/payments/:id", h.DeletePayment)

    // Banking details shown to guests for EFT.
    g.GET("/banking-details", h.BankingDetails)
    g.POST("/banking-details", h.CreateBankingDetail)
    g.PATCH("/banking-details/:id", h.UpdateBankingDetail)
    g.DELETE("/banking-details/:id", h.DeleteBankingDetail)

    // Events, sub-events and ticket types share one set of routes.
    g.GET("/events/:kind", h.AdminResources)
    g.POST("/events/:kind", h.CreateResource)
    g.PATCH("/events/:kind/:key", h.UpdateResource)
    g.DELETE("/events/:kind/:key", h.DeleteResource)

    // Users.
    g.GET("/users", h.AdminUsers)
    g.PATCH("/users/:id", h.UpdateUser)
    g.DELETE("/users/:id", h.DeleteUser)
}
