// Package service implements the assistant-facing meeting operations:
// creating, rescheduling, cancelling and searching meetings. Remote
// writes go through the calendar client; the local mirror is updated
// in the same way the reconciliation loop would, so a service write
// and a later sync pass agree on the result.
package service

import (
	"errors"
	"time"

	"sam/src-server/gcal"
	"sam/src-server/notify"
	"sam/src-server/roster"

	"github.com/olebedev/when"
	"github.com/uptrace/bun"
)

// assistantActor tags audit rows written by direct assistant actions,
// as opposed to reconciliation passes.
const assistantActor = "sam-assistant"

var (
	ErrMeetingNotFound  = errors.New("meeting not found")
	ErrScheduleConflict = errors.New("schedule conflict")
)

type MeetingService struct {
	db         *bun.DB
	client     gcal.Client
	calendarID string
	resolver   *roster.Resolver
	mailer     *notify.Mailer
	when       *when.Parser
	location   *time.Location
}

func NewMeetingService(
	db *bun.DB,
	client gcal.Client,
	calendarID string,
	resolver *roster.Resolver,
	mailer *notify.Mailer,
	w *when.Parser,
	location *time.Location,
) *MeetingService {
	return &MeetingService{
		db:         db,
		client:     client,
		calendarID: calendarID,
		resolver:   resolver,
		mailer:     mailer,
		when:       w,
		location:   location,
	}
}
