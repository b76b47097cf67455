package sync

import (
	"context"
	"fmt"
	"time"

	"sam/src-server/gcal"
	"sam/src-server/model"

	"github.com/uptrace/bun"
)

// DeleteReason is recorded on every DELETE audit row.
const DeleteReason = "removed due to remote cancellation"

// Counts of mutations applied in one pass.
type Counts struct {
	Created int
	Updated int
	Deleted int
}

// Apply writes a classified change set to the local store. The caller owns
// the transaction: any error aborts it so no partial application of one
// pass's change set is ever persisted. Side effects are local writes only.
func Apply(ctx context.Context, tx bun.IDB, cs ChangeSet, performedBy string) (Counts, error) {
	var counts Counts
	now := time.Now().UTC().Unix()

	for _, ev := range cs.ToCreate {
		if err := validateApplicable(ev); err != nil {
			return counts, err
		}
		meeting := model.Meeting{
			RemoteID:         ev.ID,
			Title:            ev.Title,
			StartUnixUTC:     ev.StartUnixUTC,
			EndUnixUTC:       ev.EndUnixUTC,
			OrganizerEmail:   ev.OrganizerEmail,
			MeetLink:         ev.MeetLink,
			CreatedAtUnixUTC: now,
			UpdatedAtUnixUTC: now,
		}
		if _, err := tx.NewInsert().
			Model(&meeting).
			Exec(ctx); err != nil {
			return counts, &LocalWriteError{Err: fmt.Errorf("can't insert meeting %s: %w", ev.ID, err)}
		}
		if err := meeting.ReplaceParticipants(ctx, tx, toParticipants(ev.Attendees)); err != nil {
			return counts, &LocalWriteError{Err: err}
		}
		if err := appendLog(ctx, tx, model.ActionCreate, meeting.ID, performedBy,
			fmt.Sprintf("meeting %q mirrored from remote event %s", ev.Title, ev.ID)); err != nil {
			return counts, err
		}
		counts.Created++
	}

	for _, ev := range cs.ToUpdate {
		if err := validateApplicable(ev); err != nil {
			return counts, err
		}
		meeting := new(model.Meeting)
		if err := tx.NewSelect().
			Model(meeting).
			Where("remote_id = ?", ev.ID).
			Scan(ctx); err != nil {
			return counts, &LocalWriteError{Err: fmt.Errorf("can't load meeting %s for update: %w", ev.ID, err)}
		}
		if _, err := tx.NewUpdate().
			Model((*model.Meeting)(nil)).
			Set("title = ?", ev.Title).
			Set("start_time_unix_utc = ?", ev.StartUnixUTC).
			Set("end_time_unix_utc = ?", ev.EndUnixUTC).
			Set("organizer_email = ?", ev.OrganizerEmail).
			Set("meet_link = ?", ev.MeetLink).
			Set("updated_at_unix_utc = ?", now).
			Set("notification_sent = ?", false). // time may have moved, notify again
			Where("id = ?", meeting.ID).
			Exec(ctx); err != nil {
			return counts, &LocalWriteError{Err: fmt.Errorf("can't update meeting %s: %w", ev.ID, err)}
		}
		if err := meeting.ReplaceParticipants(ctx, tx, toParticipants(ev.Attendees)); err != nil {
			return counts, &LocalWriteError{Err: err}
		}
		if err := appendLog(ctx, tx, model.ActionUpdate, meeting.ID, performedBy,
			fmt.Sprintf("meeting %q re-mirrored from remote event %s", ev.Title, ev.ID)); err != nil {
			return counts, err
		}
		counts.Updated++
	}

	for _, m := range cs.ToDelete {
		if _, err := tx.NewDelete().
			Model((*model.Participant)(nil)).
			Where("meeting_id = ?", m.ID).
			Exec(ctx); err != nil {
			return counts, &LocalWriteError{Err: fmt.Errorf("can't delete participants of meeting %s: %w", m.RemoteID, err)}
		}
		if _, err := tx.NewDelete().
			Model((*model.Meeting)(nil)).
			Where("id = ?", m.ID).
			Exec(ctx); err != nil {
			return counts, &LocalWriteError{Err: fmt.Errorf("can't delete meeting %s: %w", m.RemoteID, err)}
		}
		// delete-then-log: the audit row outlives the meeting it references
		if err := appendLog(ctx, tx, model.ActionDelete, m.ID, performedBy,
			fmt.Sprintf("%s (remote event %s)", DeleteReason, m.RemoteID)); err != nil {
			return counts, err
		}
		counts.Deleted++
	}

	return counts, nil
}

// validateApplicable guards the applier against events that should never have
// survived classification.
func validateApplicable(ev gcal.Event) error {
	switch {
	case ev.StartUnixUTC == 0 || ev.EndUnixUTC == 0:
		return &ReconciliationError{Reason: fmt.Sprintf("event %s has incomplete start/end times", ev.ID)}
	case ev.EndUnixUTC < ev.StartUnixUTC:
		return &ReconciliationError{Reason: fmt.Sprintf("event %s ends before it starts", ev.ID)}
	case ev.Status == gcal.StatusCancelled:
		return &ReconciliationError{Reason: fmt.Sprintf("cancelled event %s reached a write path", ev.ID)}
	}
	return nil
}

func toParticipants(attendees []gcal.Attendee) []model.Participant {
	participants := make([]model.Participant, 0, len(attendees))
	for _, a := range attendees {
		if a.Email == "" {
			continue
		}
		participants = append(participants, model.Participant{
			Name:  a.Name,
			Email: a.Email,
		})
	}
	return participants
}

func appendLog(ctx context.Context, tx bun.IDB, action model.ActionType, meetingID int64, performedBy, details string) error {
	entry := model.ActivityLog{
		ActionType:  action,
		MeetingID:   meetingID,
		PerformedBy: performedBy,
		Details:     details,
	}
	if err := entry.Append(ctx, tx); err != nil {
		return &LocalWriteError{Err: err}
	}
	return nil
}
