package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

// Meeting mirrors one remote calendar event. Exactly one row exists per live
// remote event; a cancelled remote event has no row.
type Meeting struct {
	bun.BaseModel `bun:"table:meetings"`

	ID             int64  `bun:"id,pk,autoincrement"`
	RemoteID       string `bun:"remote_id,unique,notnull"`
	Title          string `bun:"title,notnull"`
	StartUnixUTC   int64  `bun:"start_time_unix_utc,notnull"`
	EndUnixUTC     int64  `bun:"end_time_unix_utc,notnull"`
	OrganizerEmail string `bun:"organizer_email,notnull"`
	MeetLink       string `bun:"meet_link"`

	CreatedAtUnixUTC int64 `bun:"created_at_unix_utc,notnull"`
	// local touch time; drives the reconciliation read window
	UpdatedAtUnixUTC int64 `bun:"updated_at_unix_utc,notnull"`
	NotificationSent bool  `bun:"notification_sent"`

	Participants []*Participant `bun:"rel:has-many,join:id=meeting_id"`
}

// Validate the row before any write.
func (m *Meeting) Validate() error {
	switch {
	case m.RemoteID == "":
		return fmt.Errorf("Meeting.Validate: remote id is required")
	case m.Title == "":
		return fmt.Errorf("Meeting.Validate: title is required")
	case m.StartUnixUTC == 0:
		return fmt.Errorf("Meeting.Validate: start time is required")
	case m.EndUnixUTC == 0:
		return fmt.Errorf("Meeting.Validate: end time is required")
	case m.StartUnixUTC > m.EndUnixUTC:
		return fmt.Errorf("Meeting.Validate: start time must be before end time")
	case m.OrganizerEmail == "":
		return fmt.Errorf("Meeting.Validate: organizer email is required")
	}
	return nil
}

// StartTime returns the start timestamp as UTC time.
func (m *Meeting) StartTime() time.Time {
	return time.Unix(m.StartUnixUTC, 0).UTC()
}

// EndTime returns the end timestamp as UTC time.
func (m *Meeting) EndTime() time.Time {
	return time.Unix(m.EndUnixUTC, 0).UTC()
}

// ReplaceParticipants swaps the meeting's participant set wholesale:
// delete-all, insert-all. Partial participant diffing is never attempted.
func (m *Meeting) ReplaceParticipants(ctx context.Context, db bun.IDB, participants []Participant) error {
	if m.ID == 0 {
		return fmt.Errorf("Meeting.ReplaceParticipants: meeting id is zero")
	}
	if _, err := db.NewDelete().
		Model((*Participant)(nil)).
		Where("meeting_id = ?", m.ID).
		Exec(ctx); err != nil {
		return fmt.Errorf("Meeting.ReplaceParticipants: can't delete old participants: %w", err)
	}
	if len(participants) == 0 {
		return nil
	}
	for i := range participants {
		participants[i].MeetingID = m.ID
	}
	if _, err := db.NewInsert().
		Model(&participants).
		Exec(ctx); err != nil {
		return fmt.Errorf("Meeting.ReplaceParticipants: can't insert new participants: %w", err)
	}
	return nil
}
