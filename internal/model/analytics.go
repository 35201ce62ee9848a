package model

import "time"

// DashboardStats is the payload of GET /analytics/dashboard/.
type DashboardStats struct {
	TotalEvents                int            `json:"total_events"`
	TotalReservations          int            `json:"total_reservations"`
	TotalRevenue               Amount         `json:"total_revenue"`
	TotalUsers                 int            `json:"total_users"`
	PendingApprovalsCount      int            `json:"pending_approvals_count"`
	UpcomingEventsCount        int            `json:"upcoming_events_count"`
	UpcomingEventsList         []Event        `json:"upcoming_events_list"`
	RevenueTrend               []RevenuePoint `json:"revenue_trend"`
	ReservationStatusBreakdown []StatusPoint  `json:"reservation_status_breakdown"`
	PendingProofsList          []PaymentProof `json:"pending_proofs_list"`
}

// RevenuePoint is one day of the revenue trend.
type RevenuePoint struct {
	Date  string `json:"date"`
	Total Amount `json:"total"`
}

// StatusPoint counts reservations in one status.
type StatusPoint struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// AnalyticsEvent is a per-event performance row from GET /analytics/events/.
type AnalyticsEvent struct {
	ID                  uint64 `json:"id"`
	Title               string `json:"title"`
	TotalReservations   int    `json:"total_reservations"`
	TicketsSold         int    `json:"tickets_sold"`
	Revenue             Amount `json:"revenue"`
	CapacityUtilisation Amount `json:"capacity_utilization"`
}

// NotificationLog is one delivered (or failed) notification.
type NotificationLog struct {
	ID               uint64     `json:"id"`
	NotificationType string     `json:"notification_type"`
	Recipient        string     `json:"recipient"`
	Status           string     `json:"status"`
	SentAt           *time.Time `json:"sent_at"`
}

// NotificationStats summarises notification delivery.
type NotificationStats struct {
	Total  int            `json:"total"`
	Sent   int            `json:"sent"`
	Failed int            `json:"failed"`
	ByType map[string]int `json:"by_type"`
}
