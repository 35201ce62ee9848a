package apiclient

import (
	"context"

	"github.com/parliamentplating/reservations-web/internal/model"
)

// Dashboard returns the admin dashboard aggregate.  Non-staff sessions get
// an error matching ErrForbidden.
func (a *API) Dashboard(ctx context.Context) (model.DashboardStats, error) {
	var s model.DashboardStats
	err := a.getJSON(ctx, "/analytics/dashboard/", nil, &s)
	return s, err
}

func (a *API) AnalyticsEvents(ctx context.Context) (List[model.AnalyticsEvent], error) {
	return getList[model.AnalyticsEvent](ctx, a, "/analytics/events/", nil)
}

func (a *API) NotificationLogs(ctx context.Context) (List[model.NotificationLog], error) {
	return getList[model.NotificationLog](ctx, a, "/analytics/notifications/", nil)
}

func (a *API) NotificationStats(ctx context.Context) (model.NotificationStats, error) {
	var s model.NotificationStats
	err := a.getJSON(ctx, "/analytics/notifications/notification-stats/", nil, &s)
	return s, err
}
