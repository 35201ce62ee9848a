package calendar

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parliamentplating/reservations-web/internal/model"
)

var builder = Builder{UIDDomain: "parliamentplating.com", TimeZone: "Africa/Johannesburg"}

func dinner() Entry {
	return Entry{
		Title:       "Harvest Dinner",
		Description: "Five courses",
		Start:       time.Date(2026, 11, 1, 18, 0, 0, 500, time.UTC),
		End:         time.Date(2026, 11, 1, 22, 30, 0, 0, time.UTC),
		Location:    "The Cellar",
		Address:     "1 Vine St, Stellenbosch",
	}
}

func TestICSLineOrder(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	out := builder.ICS(dinner(), "PPPA-42", now)
	lines := strings.Split(out, "\r\n")

	require.Len(t, lines, 13)
	assert.Equal(t, "BEGIN:VCALENDAR", lines[0])
	assert.Equal(t, "PRODID:-//Parliament of Plating//Calendar//EN", lines[2])
	assert.Equal(t, "UID:PPPA-42@parliamentplating.com", lines[4])
	assert.Equal(t, "DTSTAMP:20261016T090000Z", lines[5])
	assert.Equal(t, "DTSTART:20261101T180000Z", lines[6])
	assert.Equal(t, "DTEND:20261101T223000Z", lines[7])
	assert.Equal(t, `DESCRIPTION:Five courses\nReservation: PPPA-42`, lines[9])
	assert.Equal(t, "LOCATION:The Cellar", lines[10])
	assert.Equal(t, "END:VCALENDAR", lines[12])
}

func TestICSWithoutReference(t *testing.T) {
	out := builder.ICS(dinner(), "", time.Now())
	assert.Contains(t, out, "\r\nUID:event@parliamentplating.com\r\n")
	assert.Contains(t, out, `Reservation: N/A`)
	assert.Equal(t, "reservation-event.ics", Filename(""))
	assert.Equal(t, "reservation-PPPA-42.ics", Filename("PPPA-42"))
}

func TestICSEscapesText(t *testing.T) {
	tests := []struct {
		description string
		entry       Entry
		line        int
		want        string
	}{
		{"comma and semicolon in title", Entry{Title: "Wine, Cheese; Song"}, 8, `SUMMARY:Wine\, Cheese\; Song`},
		{"newlines in description", Entry{Description: "Course one\nCourse two\r\nDessert"}, 9, `DESCRIPTION:Course one\nCourse two\nDessert\nReservation: PPPA-42`},
		{"backslash in location", Entry{Location: `Cellar\Loft, Level 2`}, 10, `LOCATION:Cellar\\Loft\, Level 2`},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			lines := strings.Split(builder.ICS(tt.entry, "PPPA-42", time.Now()), "\r\n")
			require.Len(t, lines, 13)
			assert.Equal(t, tt.want, lines[tt.line])
		})
	}
}

func TestStampConvertsToUTC(t *testing.T) {
	sast := time.FixedZone("SAST", 2*60*60)
	assert.Equal(t, "20261101T160000Z", Stamp(time.Date(2026, 11, 1, 18, 0, 0, 0, sast)))
}

func TestEventFilename(t *testing.T) {
	assert.Equal(t, "event-harvest-dinner-2026.ics", EventFilename("Harvest  Dinner 2026"))
}

func TestGoogleURL(t *testing.T) {
	raw := builder.GoogleURL(dinner(), "PPPA-42")
	require.True(t, strings.HasPrefix(raw, "https://calendar.google.com/calendar/render?"))
	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "TEMPLATE", q.Get("action"))
	assert.Equal(t, "Harvest Dinner", q.Get("text"))
	assert.Equal(t, "20261101T180000Z/20261101T223000Z", q.Get("dates"))
	assert.Equal(t, "Five courses\n\nReservation: PPPA-42", q.Get("details"))
	assert.Equal(t, "1 Vine St, Stellenbosch", q.Get("location"))
	assert.Equal(t, "Africa/Johannesburg", q.Get("ctz"))
}

func TestOutlookURLFallsBackToLocation(t *testing.T) {
	e := dinner()
	e.Address = ""
	u, err := url.Parse(builder.OutlookURL(e, ""))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "addevent", q.Get("rru"))
	assert.Equal(t, "2026-11-01T18:00:00.000Z", q.Get("startdt"))
	assert.Equal(t, "The Cellar", q.Get("location"))
	assert.Equal(t, "Five courses\n\nReservation: N/A", q.Get("body"))
}

func TestMonthGrid(t *testing.T) {
	tests := []struct {
		description string
		month       Month
		lead        int
		days        int
	}{
		{"november 2026 starts on a sunday", Month{Year: 2026, Month: time.November}, 0, 30},
		{"february 2028 is a leap month", Month{Year: 2028, Month: time.February}, 2, 29},
		{"october 2026 starts on a thursday", Month{Year: 2026, Month: time.October}, 4, 31},
	}
	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			g := tt.month.Grid()
			require.Len(t, g, tt.lead+tt.days)
			for i := 0; i < tt.lead; i++ {
				assert.Nil(t, g[i])
			}
			require.NotNil(t, g[tt.lead])
			assert.Equal(t, 1, g[tt.lead].Day())
			assert.Equal(t, tt.days, g[len(g)-1].Day())
		})
	}
}

func TestMonthStepping(t *testing.T) {
	dec := Month{Year: 2026, Month: time.December}
	assert.Equal(t, 2027, dec.Next().Year)
	assert.Equal(t, time.January, dec.Next().Month)
	jan := Month{Year: 2026, Month: time.January}
	assert.Equal(t, 2025, jan.Prev().Year)
	assert.Equal(t, time.December, jan.Prev().Month)
}

func TestEventsOnAndSchedule(t *testing.T) {
	events := []model.Event{
		{ID: 1, StartDatetime: time.Date(2026, 11, 3, 19, 0, 0, 0, time.UTC)},
		{ID: 2, StartDatetime: time.Date(2026, 11, 3, 8, 0, 0, 0, time.UTC)},
		{ID: 3, StartDatetime: time.Date(2026, 12, 3, 19, 0, 0, 0, time.UTC)},
	}
	got := EventsOn(events, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, 2)

	cells := Month{Year: 2026, Month: time.November}.Schedule(events)
	require.Len(t, cells, 30)
	assert.Equal(t, "2026-11-03", *cells[2].Date)
	assert.Len(t, cells[2].Events, 2)
	assert.Empty(t, cells[3].Events)
}
