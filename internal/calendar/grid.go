package calendar

import (
	"time"

	"github.com/parliamentplating/reservations-web/internal/model"
)

// Month identifies a calendar month in a location.
type Month struct {
	Year  int
	Month time.Month
	Loc   *time.Location
}

// MonthOf returns the month containing t, in t's location.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month(), Loc: t.Location()}
}

func (m Month) loc() *time.Location {
	if m.Loc == nil {
		return time.UTC
	}
	return m.Loc
}

// First is midnight on the first day of the month.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, m.loc())
}

// Next and Prev step one month; time.Date normalises year boundaries.
func (m Month) Next() Month { return MonthOf(m.First().AddDate(0, 1, 0)) }
func (m Month) Prev() Month { return MonthOf(m.First().AddDate(0, -1, 0)) }

// Days is the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, m.loc()).Day()
}

// Grid lays the month out Sunday first: one nil per weekday before the 1st,
// then every day of the month.
func (m Month) Grid() []*time.Time {
	first := m.First()
	lead := int(first.Weekday())
	n := m.Days()
	cells := make([]*time.Time, 0, lead+n)
	for i := 0; i < lead; i++ {
		cells = append(cells, nil)
	}
	for d := 0; d < n; d++ {
		day := first.AddDate(0, 0, d)
		cells = append(cells, &day)
	}
	return cells
}

// SameDay compares calendar dates in day's location.
func SameDay(a, day time.Time) bool {
	a = a.In(day.Location())
	y1, m1, d1 := a.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// EventsOn returns the events starting on day.
func EventsOn(events []model.Event, day time.Time) []model.Event {
	out := []model.Event{}
	for _, e := range events {
		if SameDay(e.StartDatetime, day) {
			out = append(out, e)
		}
	}
	return out
}

// Cell is one square of a rendered scheduler month.
type Cell struct {
	Date   *string       `json:"date"`
	Day    int           `json:"day,omitempty"`
	Events []model.Event `json:"events,omitempty"`
}

// Schedule pairs each grid day with its events.
func (m Month) Schedule(events []model.Event) []Cell {
	grid := m.Grid()
	cells := make([]Cell, len(grid))
	for i, d := range grid {
		if d == nil {
			continue
		}
		s := d.Format("2006-01-02")
		cells[i] = Cell{Date: &s, Day: d.Day(), Events: EventsOn(events, *d)}
	}
	return cells
}
