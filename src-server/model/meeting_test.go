package model_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"sam/src-server/model"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	db, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	bundb := bun.NewDB(db, sqlitedialect.New())
	if err := model.CreateSchema(bundb); err != nil {
		t.Fatal(err)
	}
	return bundb
}

func TestMeetingParticipantReplacement(t *testing.T) {
	bundb := newTestDB(t)
	now := time.Now().UTC().Unix()

	meeting := model.Meeting{
		RemoteID:         "evt-1",
		Title:            "Budget Review",
		StartUnixUTC:     now + 3600,
		EndUnixUTC:       now + 7200,
		OrganizerEmail:   "dean@x.edu",
		CreatedAtUnixUTC: now,
		UpdatedAtUnixUTC: now,
	}
	if err := meeting.Validate(); err != nil {
		t.Fatal(err)
	}
	if _, err := bundb.NewInsert().
		Model(&meeting).
		Exec(context.Background()); err != nil {
		t.Fatal(err)
	}
	if meeting.ID == 0 {
		t.Fatal("meeting id not assigned on insert")
	}

	if err := meeting.ReplaceParticipants(context.Background(), bundb, []model.Participant{
		{Name: "Aniket", Email: "aniket@x.edu"},
		{Name: "Ayush", Email: "ayush@x.edu"},
	}); err != nil {
		t.Fatal(err)
	}

	// case: participants load through the relation
	func() {
		meetingModel := new(model.Meeting)
		if err := bundb.NewSelect().
			Model(meetingModel).
			Relation("Participants").
			Where("meeting.id = ?", meeting.ID).
			Scan(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(meetingModel.Participants) != 2 {
			t.Errorf("participants = %d, want 2", len(meetingModel.Participants))
		}
	}()

	// case: replacement is wholesale, nothing from the old set survives
	func() {
		if err := meeting.ReplaceParticipants(context.Background(), bundb, []model.Participant{
			{Name: "Bismun", Email: "bismun@x.edu"},
		}); err != nil {
			t.Fatal(err)
		}
		participants := make([]model.Participant, 0)
		if err := bundb.NewSelect().
			Model(&participants).
			Where("meeting_id = ?", meeting.ID).
			Scan(context.Background()); err != nil {
			t.Fatal(err)
		}
		if len(participants) != 1 {
			t.Fatalf("participants = %d, want 1", len(participants))
		}
		if participants[0].Email != "bismun@x.edu" {
			t.Errorf("participant email = %q, want %q", participants[0].Email, "bismun@x.edu")
		}
	}()

	// case: remote_id is unique
	func() {
		dup := meeting
		dup.ID = 0
		if _, err := bundb.NewInsert().
			Model(&dup).
			Exec(context.Background()); err == nil {
			t.Error("duplicate remote_id inserted without error")
		}
	}()
}

func TestMeetingValidate(t *testing.T) {
	now := time.Now().UTC().Unix()
	good := model.Meeting{
		RemoteID:       "evt-1",
		Title:          "ok",
		StartUnixUTC:   now,
		EndUnixUTC:     now + 60,
		OrganizerEmail: "dean@x.edu",
	}

	cases := []struct {
		name   string
		mutate func(*model.Meeting)
	}{
		{"missing remote id", func(m *model.Meeting) { m.RemoteID = "" }},
		{"missing title", func(m *model.Meeting) { m.Title = "" }},
		{"missing start", func(m *model.Meeting) { m.StartUnixUTC = 0 }},
		{"missing end", func(m *model.Meeting) { m.EndUnixUTC = 0 }},
		{"start after end", func(m *model.Meeting) { m.StartUnixUTC = m.EndUnixUTC + 1 }},
		{"missing organizer", func(m *model.Meeting) { m.OrganizerEmail = "" }},
	}
	for _, tc := range cases {
		m := good
		tc.mutate(&m)
		if err := m.Validate(); err == nil {
			t.Errorf("%s: want validation error", tc.name)
		}
	}
	if err := good.Validate(); err != nil {
		t.Errorf("valid meeting rejected: %v", err)
	}
}

func TestActivityLogAppend(t *testing.T) {
	bundb := newTestDB(t)

	entry := model.ActivityLog{
		ActionType:  model.ActionDelete,
		MeetingID:   42, // the meeting may no longer exist
		PerformedBy: "calendar-sync",
		Details:     "removed due to remote cancellation",
	}
	if err := entry.Append(context.Background(), bundb); err != nil {
		t.Fatal(err)
	}
	if entry.CreatedAtUnixUTC == 0 {
		t.Error("created_at not stamped")
	}

	bad := model.ActivityLog{ActionType: "NUKE"}
	if err := bad.Append(context.Background(), bundb); err == nil {
		t.Error("unknown action type accepted")
	}
}
