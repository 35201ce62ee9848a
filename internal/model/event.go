package model

import "time"

// Event is a published experience guests can reserve tickets for.  Detail
// responses embed ticket types and sub-events; list responses may omit them.
type Event struct {
	ID            uint64       `json:"id"`
	Title         string       `json:"title"`
	Slug          string       `json:"slug"`
	Description   *string      `json:"description"`
	Location      string       `json:"location"`
	Address       string       `json:"address"`
	StartDatetime time.Time    `json:"start_datetime"`
	EndDatetime   time.Time    `json:"end_datetime"`
	Capacity      int          `json:"capacity"`
	Published     bool         `json:"published"`
	TicketTypes   []TicketType `json:"ticket_types,omitempty"`
	SubEvents     []SubEvent   `json:"sub_events,omitempty"`
}

// DescriptionText returns the description or "" when the API sent null.
func (e Event) DescriptionText() string {
	if e.Description == nil {
		return ""
	}
	return *e.Description
}

// MinPrice returns the cheapest ticket price, or 0 when the event has no
// ticket types (rendered as "Free").
func (e Event) MinPrice() float64 {
	if len(e.TicketTypes) == 0 {
		return 0
	}
	min := e.TicketTypes[0].Price.Float64()
	for _, t := range e.TicketTypes[1:] {
		if p := t.Price.Float64(); p < min {
			min = p
		}
	}
	return min
}

// TicketByID finds a ticket type embedded in the event.
func (e Event) TicketByID(id uint64) (TicketType, bool) {
	for _, t := range e.TicketTypes {
		if t.ID == id {
			return t, true
		}
	}
	return TicketType{}, false
}

// TicketType is a priced class of ticket for an event.
type TicketType struct {
	ID                uint64 `json:"id"`
	Event             uint64 `json:"event"`
	Name              string `json:"name"`
	Price             Amount `json:"price"`
	ReservationFee    Amount `json:"reservation_fee"`
	QuantityAvailable int    `json:"quantity_available"`
}

// SubEvent is a session inside a larger event (a tasting within a festival).
type SubEvent struct {
	ID            uint64    `json:"id"`
	Event         uint64    `json:"event"`
	Title         string    `json:"title"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Capacity      int       `json:"capacity"`
}
