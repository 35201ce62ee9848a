// Package calendar produces calendar artefacts for an event: an .ics file,
// Google and Outlook deep links, and the month grid of the admin scheduler.
package calendar

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/parliamentplating/reservations-web/internal/model"
)

const (
	prodID         = "-//Parliament of Plating//Calendar//EN"
	googleBase     = "https://calendar.google.com/calendar/render?"
	outlookBase    = "https://outlook.live.com/calendar/0/deeplink/compose?"
	noReference    = "N/A"
	eventUIDPrefix = "event"
)

// Entry is the event data a calendar item is built from.
type Entry struct {
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Location    string
	Address     string
}

// FromEvent copies the calendar fields of an API event.
func FromEvent(e model.Event) Entry {
	return Entry{
		Title:       e.Title,
		Description: e.DescriptionText(),
		Start:       e.StartDatetime,
		End:         e.EndDatetime,
		Location:    e.Location,
		Address:     e.Address,
	}
}

// place prefers the street address over the venue name.
func (e Entry) place() string {
	if e.Address != "" {
		return e.Address
	}
	return e.Location
}

// Builder holds the settings shared by all calendar output.
type Builder struct {
	UIDDomain string // suffix of generated UIDs
	TimeZone  string // ctz sent to Google Calendar
}

// Stamp formats t as a compact UTC timestamp: 20261101T180000Z.
func Stamp(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func refOr(reference, fallback string) string {
	if reference == "" {
		return fallback
	}
	return reference
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

// escapeText escapes an RFC 5545 TEXT value.
func escapeText(s string) string {
	return textEscaper.Replace(s)
}

// ICS renders a single-event calendar.  Lines are joined with CRLF and the
// description ends with a literal \n followed by the reservation reference.
func (b Builder) ICS(e Entry, reference string, now time.Time) string {
	return strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + prodID,
		"BEGIN:VEVENT",
		"UID:" + refOr(reference, eventUIDPrefix) + "@" + b.UIDDomain,
		"DTSTAMP:" + Stamp(now),
		"DTSTART:" + Stamp(e.Start),
		"DTEND:" + Stamp(e.End),
		"SUMMARY:" + escapeText(e.Title),
		"DESCRIPTION:" + escapeText(e.Description) + `\nReservation: ` + escapeText(refOr(reference, noReference)),
		"LOCATION:" + escapeText(e.Location),
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\r\n")
}

// Filename is the download name of a reservation's .ics file.
func Filename(reference string) string {
	return "reservation-" + refOr(reference, eventUIDPrefix) + ".ics"
}

var spaces = regexp.MustCompile(`\s+`)

// EventFilename is the download name used on the public event page, where
// there is no reservation yet.
func EventFilename(title string) string {
	return "event-" + strings.ToLower(spaces.ReplaceAllString(title, "-")) + ".ics"
}

func details(e Entry, reference string) string {
	return e.Description + "\n\nReservation: " + refOr(reference, noReference)
}

// GoogleURL builds the Google Calendar "create event" link.
func (b Builder) GoogleURL(e Entry, reference string) string {
	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", e.Title)
	q.Set("dates", Stamp(e.Start)+"/"+Stamp(e.End))
	q.Set("details", details(e, reference))
	q.Set("location", e.place())
	q.Set("ctz", b.TimeZone)
	return googleBase + q.Encode()
}

// OutlookURL builds the Outlook.com compose link.  Times are full ISO-8601
// in UTC.
func (b Builder) OutlookURL(e Entry, reference string) string {
	q := url.Values{}
	q.Set("path", "/calendar/0/deeplink/compose")
	q.Set("rru", "addevent")
	q.Set("startdt", e.Start.UTC().Format("2006-01-02T15:04:05.000Z"))
	q.Set("enddt", e.End.UTC().Format("2006-01-02T15:04:05.000Z"))
	q.Set("subject", e.Title)
	q.Set("body", details(e, reference))
	q.Set("location", e.place())
	return outlookBase + q.Encode()
}

// Links bundles everything the "Add to calendar" menu offers.
type Links struct {
	Google   string `json:"google"`
	Outlook  string `json:"outlook"`
	ICS      string `json:"ics"`
	Filename string `json:"filename"`
}
