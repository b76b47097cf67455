package service

import (
	"context"
	"fmt"
	"time"

	"sam/src-server/model"
)

// SearchQuery narrows the mirrored meetings. Zero-value fields are
// ignored; all set fields must match.
type SearchQuery struct {
	ParticipantName string
	Department      string
	From            time.Time
	To              time.Time
	// FreeSlotStart/FreeSlotEnd invert the search: meetings
	// overlapping the slot are returned, so an empty result means
	// the slot is free.
	FreeSlotStart time.Time
	FreeSlotEnd   time.Time
}

// SearchMeetings queries the local mirror; the remote calendar is
// never consulted, so results reflect the last reconciliation pass.
func (s *MeetingService) SearchMeetings(ctx context.Context, q SearchQuery) ([]model.Meeting, error) {
	meetings := make([]model.Meeting, 0)
	query := s.db.
		NewSelect().
		Model(&meetings).
		Relation("Participants").
		Order("start_time_unix_utc ASC")

	if q.ParticipantName != "" {
		pattern := "%" + q.ParticipantName + "%"
		query = query.Where(
			"EXISTS (SELECT 1 FROM meeting_participants p WHERE p.meeting_id = meeting.id AND (p.participant_name LIKE ? OR p.participant_email LIKE ?))",
			pattern, pattern)
	}
	if q.Department != "" {
		query = query.Where(
			"EXISTS (SELECT 1 FROM meeting_participants p JOIN faculty f ON f.email = p.participant_email WHERE p.meeting_id = meeting.id AND f.department = ?)",
			q.Department)
	}
	if !q.From.IsZero() {
		query = query.Where("start_time_unix_utc >= ?", q.From.UTC().Unix())
	}
	if !q.To.IsZero() {
		query = query.Where("start_time_unix_utc < ?", q.To.UTC().Unix())
	}
	if !q.FreeSlotStart.IsZero() && !q.FreeSlotEnd.IsZero() {
		query = query.
			Where("start_time_unix_utc < ?", q.FreeSlotEnd.UTC().Unix()).
			Where("end_time_unix_utc > ?", q.FreeSlotStart.UTC().Unix())
	}

	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("SearchMeetings: %w", err)
	}
	return meetings, nil
}

// RecentActivity returns the newest audit rows, most recent first.
func (s *MeetingService) RecentActivity(ctx context.Context, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}
	entries := make([]model.ActivityLog, 0)
	if err := s.db.
		NewSelect().
		Model(&entries).
		Order("created_at_unix_utc DESC").
		Order("id DESC").
		Limit(limit).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("RecentActivity: %w", err)
	}
	return entries, nil
}
