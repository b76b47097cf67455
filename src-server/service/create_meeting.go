package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"sam/src-server/gcal"
	"sam/src-server/model"
	"sam/src-server/sync"
	"sam/src-server/utils"

	"github.com/uptrace/bun"
	"github.com/xyedo/rrule"
	"google.golang.org/api/calendar/v3"
)

// CreateMeetingRequest carries the assistant's free-form scheduling
// input. StartText accepts RFC3339 or natural language ("tomorrow at
// 3pm"); a zero Duration means the default meeting length.
type CreateMeetingRequest struct {
	Title            string
	StartText        string
	Duration         time.Duration
	ParticipantNames []string
	OrganizerEmail   string
	Recurrence       string // optional RRULE, e.g. "RRULE:FREQ=WEEKLY"
}

// CreateMeeting resolves the participants, checks the slot, creates
// the event remotely and mirrors it locally in one transaction.
// Participant names that match nobody on the roster are dropped and
// returned, not fatal. Invitation emails are best-effort: a send
// failure doesn't undo the meeting.
func (s *MeetingService) CreateMeeting(ctx context.Context, req CreateMeetingRequest) (model.Meeting, []string, error) {
	if req.Title == "" {
		return model.Meeting{}, nil, fmt.Errorf("CreateMeeting: title is required")
	}
	start, err := utils.ParseFlexibleTime(s.when, req.StartText, time.Now().In(s.location))
	if err != nil {
		return model.Meeting{}, nil, fmt.Errorf("CreateMeeting: can't parse start time: %w", err)
	}
	end := utils.CalculateEndTime(start, req.Duration)

	if req.Recurrence != "" {
		if _, err := rrule.StrToRRuleSet(req.Recurrence); err != nil {
			return model.Meeting{}, nil, fmt.Errorf("CreateMeeting: invalid recurrence rule: %w", err)
		}
	}

	resolved, dropped, err := s.resolver.ResolveAll(ctx, req.ParticipantNames)
	if err != nil {
		return model.Meeting{}, nil, fmt.Errorf("CreateMeeting: %w", err)
	}
	if len(dropped) > 0 {
		slog.Warn("CreateMeeting: some invitees are not on the roster",
			"title", req.Title,
			"dropped", dropped)
	}

	busy, err := s.CheckSchedulerConflict(ctx, start, end)
	if err != nil {
		return model.Meeting{}, dropped, fmt.Errorf("CreateMeeting: %w", err)
	}
	if busy {
		return model.Meeting{}, dropped, fmt.Errorf("CreateMeeting: %w in slot %s - %s",
			ErrScheduleConflict, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	raw := &calendar.Event{
		Summary: req.Title,
		Start:   &calendar.EventDateTime{DateTime: utils.FormatForGoogle(start.UTC())},
		End:     &calendar.EventDateTime{DateTime: utils.FormatForGoogle(end.UTC())},
	}
	if req.OrganizerEmail != "" {
		raw.Organizer = &calendar.EventOrganizer{Email: req.OrganizerEmail}
	}
	if req.Recurrence != "" {
		raw.Recurrence = []string{req.Recurrence}
	}
	for _, entry := range resolved {
		raw.Attendees = append(raw.Attendees, &calendar.EventAttendee{
			DisplayName: entry.Name,
			Email:       entry.Email,
		})
	}

	created, err := s.client.Insert(ctx, s.calendarID, raw)
	if err != nil {
		return model.Meeting{}, dropped, fmt.Errorf("CreateMeeting: can't create remote event: %w", err)
	}

	meeting, err := s.mirrorCreate(ctx, gcal.FromAPI(created))
	if err != nil {
		return model.Meeting{}, dropped, fmt.Errorf("CreateMeeting: %w", err)
	}

	if err := s.mailer.SendInvitation(ctx, meeting); err != nil {
		slog.Error("CreateMeeting: can't send invitations",
			"meetingID", meeting.ID,
			"error", err)
	}
	return meeting, dropped, nil
}

// mirrorCreate writes the local mirror row and audit entry for a just
// created remote event, reusing the reconciliation applier so both
// paths produce identical rows.
func (s *MeetingService) mirrorCreate(ctx context.Context, ev gcal.Event) (model.Meeting, error) {
	cs := sync.ChangeSet{ToCreate: []gcal.Event{ev}}
	if err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := sync.Apply(ctx, tx, cs, assistantActor)
		return err
	}); err != nil {
		return model.Meeting{}, fmt.Errorf("can't mirror new meeting: %w", err)
	}

	meeting := model.Meeting{}
	if err := s.db.
		NewSelect().
		Model(&meeting).
		Relation("Participants").
		Where("remote_id = ?", ev.ID).
		Scan(ctx); err != nil {
		return model.Meeting{}, fmt.Errorf("can't read back mirrored meeting: %w", err)
	}
	return meeting, nil
}
