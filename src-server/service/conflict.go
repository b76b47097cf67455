package service

import (
	"context"
	"log/slog"
	"time"

	"sam/src-server/gcal"
)

// CheckSchedulerConflict reports whether any remote event overlaps the
// [start, end) slot. Errors fail safe: when the remote calendar can't
// be read the slot is reported busy rather than risking a double
// booking.
func (s *MeetingService) CheckSchedulerConflict(ctx context.Context, start, end time.Time) (bool, error) {
	return s.slotBusy(ctx, start, end, "")
}

// slotBusy is the conflict check behind creates and reschedules; a
// rescheduled meeting must not collide with itself, so its remote id
// is excluded.
func (s *MeetingService) slotBusy(ctx context.Context, start, end time.Time, excludeRemoteID string) (bool, error) {
	raws, err := s.client.ListBetween(ctx, s.calendarID, start, end)
	if err != nil {
		slog.Error("slotBusy: can't list remote events, assuming busy", "error", err)
		return true, err
	}
	for _, raw := range raws {
		ev := gcal.FromAPI(raw)
		if ev.Status == gcal.StatusCancelled || ev.ID == excludeRemoteID {
			continue
		}
		// the API's time window is inclusive at the edges; an event
		// that merely touches the slot boundary is not a conflict
		if ev.StartUnixUTC < end.UTC().Unix() && ev.EndUnixUTC > start.UTC().Unix() {
			return true, nil
		}
	}
	return false, nil
}
