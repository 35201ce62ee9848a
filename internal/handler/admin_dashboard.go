package handler

import (
    "errors"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/parliamentplating/reservations-web/internal/apiclient"
    "github.com/parliamentplating/reservations-web/internal/calendar"
    "github.com/parliamentplating/reservations-web/internal/model"
)

// Dashboard handles GET /admin/dashboard.  A 403 from the API is rendered as
// the permission-denied view rather than an error.
func (h *Handler) Dashboard(c echo.Context) error {
    stats, err := h.api(c).Dashboard(c.Request().Context())
    if errors.Is(err, apiclient.ErrForbidden) {
        return c.JSON(http.StatusForbidden, echo.Map{
            "view":  "permission_denied",
            "error": "You do not have permission to view the dashboard.",
        })
    }
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "view":                "dashboard",
        "stats":               stats,
        "total_revenue_label": model.FormatRand(stats.TotalRevenue.Float64()),
    })
}

// Analytics handles GET /admin/analytics.
func (h *Handler) Analytics(c echo.Context) error {
    ctx := c.Request().Context()
    api := h.api(c)

    events, err := api.AnalyticsEvents(ctx)
    if err != nil {
        return fail(c, err)
    }
    logs, err := api.NotificationLogs(ctx)
    if err != nil {
        return fail(c, err)
    }
    nstats, err := api.NotificationStats(ctx)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "events":             events.Items,
        "notifications":      logs.Items,
        "notification_stats": nstats,
    })
}

type monthRef struct {
    Year  int `json:"year"`
    Month int `json:"month"`
}

func refOf(m calendar.Month) monthRef { return monthRef{Year: m.Year, Month: int(m.Month)} }

// Scheduler handles GET /admin/scheduler?year=&month=.  Without parameters
// it shows the current month in the calendar time zone.
func (h *Handler) Scheduler(c echo.Context) error {
    loc := h.Location
    if loc == nil {
        loc = time.UTC
    }
    m := calendar.MonthOf(nowFunc().In(loc))
    if ys, ms := c.QueryParam("year"), c.QueryParam("month"); ys != "" || ms != "" {
        y, yerr := strconv.Atoi(ys)
        mo, merr := strconv.Atoi(ms)
        if yerr != nil || merr != nil || mo < 1 || mo > 12 || y < 1970 || y > 9999 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "year and month must be valid numbers"})
        }
        m = calendar.Month{Year: y, Month: time.Month(mo), Loc: loc}
    }

    list, err := h.api(c).Events(c.Request().Context(), apiclient.EventFilter{})
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "title": fmt.Sprintf("%s %d", m.Month, m.Year),
        "month": refOf(m),
        "prev":  refOf(m.Prev()),
        "next":  refOf(m.Next()),
        "cells": m.Schedule(list.Items),
    })
}
