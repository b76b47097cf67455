package service

import (
	"context"
	"database/sql"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"sam/src-server/gcal"
	"sam/src-server/model"
	"sam/src-server/notify"
	"sam/src-server/sync"
	"sam/src-server/utils"

	"github.com/uptrace/bun"
	"google.golang.org/api/calendar/v3"
)

// RescheduleMeeting moves an existing meeting to a new slot. The
// remote event is patched first, then the local mirror follows the
// same update path a sync pass would take.
func (s *MeetingService) RescheduleMeeting(ctx context.Context, remoteID, newStartText string, duration time.Duration) (model.Meeting, error) {
	start, err := utils.ParseFlexibleTime(s.when, newStartText, time.Now().In(s.location))
	if err != nil {
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: can't parse start time: %w", err)
	}
	end := utils.CalculateEndTime(start, duration)

	existing, err := s.client.Get(ctx, s.calendarID, remoteID)
	if err != nil {
		if gcal.IsNotFound(err) {
			return model.Meeting{}, fmt.Errorf("RescheduleMeeting: %w: %s", ErrMeetingNotFound, remoteID)
		}
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: can't fetch remote event: %w", err)
	}
	if existing.Status == "cancelled" {
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: %w: %s is cancelled", ErrMeetingNotFound, remoteID)
	}

	busy, err := s.slotBusy(ctx, start, end, remoteID)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: %w", err)
	}
	if busy {
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: %w in slot %s - %s",
			ErrScheduleConflict, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	patched, err := s.client.Patch(ctx, s.calendarID, remoteID, &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: utils.FormatForGoogle(start.UTC())},
		End:   &calendar.EventDateTime{DateTime: utils.FormatForGoogle(end.UTC())},
	})
	if err != nil {
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: can't patch remote event: %w", err)
	}

	// the slot may not be mirrored yet when the meeting was created
	// remotely after the last sync pass
	mirrored, err := s.db.
		NewSelect().
		Model((*model.Meeting)(nil)).
		Where("remote_id = ?", remoteID).
		Exists(ctx)
	if err != nil {
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: can't read mirror: %w", err)
	}
	cs := sync.ChangeSet{ToUpdate: []gcal.Event{gcal.FromAPI(patched)}}
	if !mirrored {
		cs = sync.ChangeSet{ToCreate: []gcal.Event{gcal.FromAPI(patched)}}
	}
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := sync.Apply(ctx, tx, cs, assistantActor)
		return err
	}); err != nil {
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: can't mirror reschedule: %w", err)
	}

	meeting := model.Meeting{}
	if err := s.db.
		NewSelect().
		Model(&meeting).
		Relation("Participants").
		Where("remote_id = ?", remoteID).
		Scan(ctx); err != nil {
		return model.Meeting{}, fmt.Errorf("RescheduleMeeting: can't read back meeting: %w", err)
	}

	s.notifyReschedule(ctx, meeting)
	return meeting, nil
}

// CancelMeeting deletes the remote event and removes the local mirror
// row. A remote 404 is tolerated so a half-cancelled meeting can be
// retried.
func (s *MeetingService) CancelMeeting(ctx context.Context, remoteID string) error {
	meeting := model.Meeting{}
	if err := s.db.
		NewSelect().
		Model(&meeting).
		Where("remote_id = ?", remoteID).
		Scan(ctx); err != nil {
		if err == sql.ErrNoRows {
			return fmt.Errorf("CancelMeeting: %w: %s", ErrMeetingNotFound, remoteID)
		}
		return fmt.Errorf("CancelMeeting: can't read meeting: %w", err)
	}

	if err := s.client.Delete(ctx, s.calendarID, remoteID); err != nil && !gcal.IsNotFound(err) {
		return fmt.Errorf("CancelMeeting: can't delete remote event: %w", err)
	}

	cs := sync.ChangeSet{ToDelete: []model.Meeting{meeting}}
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := sync.Apply(ctx, tx, cs, assistantActor)
		return err
	}); err != nil {
		return fmt.Errorf("CancelMeeting: can't remove mirror row: %w", err)
	}
	return nil
}

func (s *MeetingService) notifyReschedule(ctx context.Context, meeting model.Meeting) {
	body := fmt.Sprintf(
		"<html><body><p><b>%s</b> has been rescheduled to %s.</p></body></html>",
		template.HTMLEscapeString(meeting.Title),
		notify.FormatTimeForEmail(meeting.StartTime()),
	)
	for _, participant := range meeting.Participants {
		if err := s.mailer.SendDirect(ctx, participant.Email, "Rescheduled: "+meeting.Title, body); err != nil {
			slog.Error("notifyReschedule: can't notify participant",
				"email", participant.Email,
				"error", err)
		}
	}
}
