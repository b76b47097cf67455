package scheduler

import (
	"context"
	"log/slog"
	"time"

	"sam/src-server/model"
	"sam/src-server/notify"
	"sam/src-server/utils"
)

// MeetingNotify emails participants of meetings starting within the
// next 15 minutes, once per meeting. A nil mailer turns the loop into
// a cheap no-op poller.
func MeetingNotify(as *utils.AppState, mailer *notify.Mailer) {
	for {
		time.Sleep(time.Second * 30)
		if mailer == nil {
			continue
		}

		// get all meetings starting in 15 minutes from now
		meetingModels := make([]model.Meeting, 0)
		if err := as.BunDB.
			NewSelect().
			Model(&meetingModels).
			Relation("Participants").
			Where("start_time_unix_utc > ?", time.Now().UTC().Unix()).
			Where("start_time_unix_utc < ?", time.Now().UTC().Add(15*time.Minute).Unix()).
			Where("notification_sent = ?", false).
			Scan(context.Background()); err != nil {
			slog.Error("MeetingNotify: can't get meetings", "error", err)
			continue
		}

		for i := range meetingModels {
			meeting := meetingModels[i]
			if err := mailer.SendReminder(context.Background(), meeting); err != nil {
				slog.Error("MeetingNotify: can't send reminder",
					"meetingID", meeting.ID,
					"error", err)
				continue
			}

			if _, err := as.BunDB.NewUpdate().
				Model((*model.Meeting)(nil)).
				Set("notification_sent = ?", true).
				Where("id = ?", meeting.ID).
				Exec(context.Background()); err != nil {
				slog.Error("MeetingNotify: can't update notification_sent field",
					"meetingID", meeting.ID,
					"error", err)
				continue
			}
		}
	}
}
