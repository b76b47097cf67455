package sync

import (
	"context"
	"database/sql"
	"strconv"
	"testing"
	"time"

	"sam/src-server/gcal"
	"sam/src-server/model"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"google.golang.org/api/calendar/v3"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// every sqlite :memory: connection is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	bundb := bun.NewDB(db, sqlitedialect.New())
	if err := model.CreateSchema(bundb); err != nil {
		t.Fatal(err)
	}
	return bundb
}

// --- Mock remote calendar ----------------------------------------------------

// mockLister serves typed events re-encoded as raw API pages so the fetch
// boundary decode runs in orchestrator tests too.
type mockLister struct {
	pages [][]gcal.Event
	err   error
}

func (m *mockLister) ListUpdatedSince(_ context.Context, _ string, _ time.Time, pageToken string) (*calendar.Events, error) {
	if m.err != nil {
		return nil, m.err
	}
	idx := 0
	if pageToken != "" {
		var err error
		idx, err = strconv.Atoi(pageToken)
		if err != nil {
			return nil, err
		}
	}
	resp := &calendar.Events{}
	if idx < len(m.pages) {
		for _, ev := range m.pages[idx] {
			resp.Items = append(resp.Items, toRaw(ev))
		}
	}
	if idx+1 < len(m.pages) {
		resp.NextPageToken = strconv.Itoa(idx + 1)
	}
	return resp, nil
}

func toRaw(ev gcal.Event) *calendar.Event {
	raw := &calendar.Event{
		Id:      ev.ID,
		Summary: ev.Title,
		Status:  "confirmed",
	}
	if ev.Status == gcal.StatusCancelled {
		raw.Status = "cancelled"
	}
	if ev.StartUnixUTC != 0 {
		raw.Start = &calendar.EventDateTime{DateTime: time.Unix(ev.StartUnixUTC, 0).UTC().Format(time.RFC3339)}
	}
	if ev.EndUnixUTC != 0 {
		raw.End = &calendar.EventDateTime{DateTime: time.Unix(ev.EndUnixUTC, 0).UTC().Format(time.RFC3339)}
	}
	if ev.OrganizerEmail != "" {
		raw.Organizer = &calendar.EventOrganizer{Email: ev.OrganizerEmail}
	}
	raw.HangoutLink = ev.MeetLink
	for _, a := range ev.Attendees {
		raw.Attendees = append(raw.Attendees, &calendar.EventAttendee{
			DisplayName: a.Name,
			Email:       a.Email,
		})
	}
	return raw
}

// --- Builders ------------------------------------------------------------

var (
	testStart = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	testEnd   = time.Date(2025, 2, 1, 11, 0, 0, 0, time.UTC)
)

func activeEvent(id, title string) gcal.Event {
	return gcal.Event{
		ID:             id,
		Status:         gcal.StatusActive,
		Title:          title,
		StartUnixUTC:   testStart.Unix(),
		EndUnixUTC:     testEnd.Unix(),
		OrganizerEmail: "dean@x.edu",
		MeetLink:       "https://meet.example/" + id,
		Attendees: []gcal.Attendee{
			{Name: "Aniket", Email: "aniket@x.edu"},
		},
	}
}

func cancelledEvent(id string) gcal.Event {
	return gcal.Event{ID: id, Status: gcal.StatusCancelled}
}

// mirrorOf converts an event to the Meeting row the applier would create,
// without an ID; insertMeeting assigns one.
func mirrorOf(ev gcal.Event) model.Meeting {
	now := time.Now().UTC().Unix()
	return model.Meeting{
		RemoteID:         ev.ID,
		Title:            ev.Title,
		StartUnixUTC:     ev.StartUnixUTC,
		EndUnixUTC:       ev.EndUnixUTC,
		OrganizerEmail:   ev.OrganizerEmail,
		MeetLink:         ev.MeetLink,
		CreatedAtUnixUTC: now,
		UpdatedAtUnixUTC: now,
	}
}

func insertMeeting(t *testing.T, db bun.IDB, m *model.Meeting, participants ...model.Participant) {
	t.Helper()
	if _, err := db.NewInsert().Model(m).Exec(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(participants) > 0 {
		if err := m.ReplaceParticipants(context.Background(), db, participants); err != nil {
			t.Fatal(err)
		}
	}
}

func countRows(t *testing.T, db bun.IDB, m interface{}) int {
	t.Helper()
	count, err := db.NewSelect().Model(m).Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return count
}
