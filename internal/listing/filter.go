// Package listing holds the client-side list operations of the pages: text
// search, status filters and optimistic edits that are reconciled against a
// fresh fetch.
package listing

import (
	"strings"

	"github.com/parliamentplating/reservations-web/internal/model"
)

// SearchEvents keeps events whose title or description contains query,
// ignoring case.  An empty query keeps everything.
func SearchEvents(events []model.Event, query string) []model.Event {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return events
	}
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if strings.Contains(strings.ToLower(e.Title), q) ||
			strings.Contains(strings.ToLower(e.DescriptionText()), q) {
			out = append(out, e)
		}
	}
	return out
}

// FilterReservations narrows by status (empty means any) and by a query
// matched against reference, guest email and event title.
func FilterReservations(rs []model.Reservation, status model.ReservationStatus, query string) []model.Reservation {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Reservation, 0, len(rs))
	for _, r := range rs {
		if status != "" && r.Status != status {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(r.ReferenceCode), q) &&
			!strings.Contains(strings.ToLower(r.GuestEmail), q) &&
			!strings.Contains(strings.ToLower(r.EventTitle), q) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SplitPayments separates pending entries from the history.
func SplitPayments(ps []model.Payment) (pending, history []model.Payment) {
	pending, history = []model.Payment{}, []model.Payment{}
	for _, p := range ps {
		if p.Status == model.PaymentPending {
			pending = append(pending, p)
		} else {
			history = append(history, p)
		}
	}
	return pending, history
}
