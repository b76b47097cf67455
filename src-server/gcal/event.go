// Package gcal wraps the remote calendar API behind a small client interface
// and decodes its loosely-typed payloads into closed record types at the fetch
// boundary, so the sync core never inspects raw API data.
package gcal

import (
	"time"

	"google.golang.org/api/calendar/v3"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCancelled Status = "cancelled"
)

type Attendee struct {
	Name  string // optional
	Email string // required
}

// Event is the typed form of one remote calendar event. Zero StartUnixUTC or
// EndUnixUTC means the field was absent or unparseable.
type Event struct {
	ID             string
	Status         Status
	Title          string
	StartUnixUTC   int64
	EndUnixUTC     int64
	OrganizerEmail string
	MeetLink       string
	Attendees      []Attendee
}

// FromAPI decodes a raw API event. Cancelled events arrive stripped down to
// little more than id and status; every field is treated as optional here and
// validated later, where absence is an error.
func FromAPI(raw *calendar.Event) Event {
	ev := Event{
		ID:     raw.Id,
		Title:  raw.Summary,
		Status: StatusActive,
	}
	if raw.Status == "cancelled" {
		ev.Status = StatusCancelled
	}
	ev.StartUnixUTC = parseEventTime(raw.Start)
	ev.EndUnixUTC = parseEventTime(raw.End)
	if raw.Organizer != nil {
		ev.OrganizerEmail = raw.Organizer.Email
	}
	ev.MeetLink = meetLink(raw)
	for _, a := range raw.Attendees {
		if a == nil || a.Email == "" {
			continue
		}
		ev.Attendees = append(ev.Attendees, Attendee{
			Name:  a.DisplayName,
			Email: a.Email,
		})
	}
	return ev
}

// parseEventTime normalizes both timed (RFC3339) and all-day (date-only)
// event boundaries to unix seconds UTC.
func parseEventTime(edt *calendar.EventDateTime) int64 {
	if edt == nil {
		return 0
	}
	if edt.DateTime != "" {
		t, err := time.Parse(time.RFC3339, edt.DateTime)
		if err != nil {
			return 0
		}
		return t.UTC().Unix()
	}
	if edt.Date != "" {
		t, err := time.Parse("2006-01-02", edt.Date)
		if err != nil {
			return 0
		}
		return t.UTC().Unix()
	}
	return 0
}

func meetLink(raw *calendar.Event) string {
	if raw.HangoutLink != "" {
		return raw.HangoutLink
	}
	if raw.ConferenceData == nil {
		return ""
	}
	for _, ep := range raw.ConferenceData.EntryPoints {
		if ep != nil && ep.EntryPointType == "video" && ep.Uri != "" {
			return ep.Uri
		}
	}
	return ""
}
