package model

import (
	"github.com/uptrace/bun"
)

// Participant is one attendee of a Meeting. The set is always a verbatim copy
// of the remote attendee list at last reconciliation.
type Participant struct {
	bun.BaseModel `bun:"table:meeting_participants"`

	ID        int64  `bun:"id,pk,autoincrement"`
	MeetingID int64  `bun:"meeting_id,notnull"` // required
	Name      string `bun:"participant_name"`
	Email     string `bun:"participant_email,notnull"` // required

	Meeting *Meeting `bun:"rel:belongs-to,join:meeting_id=id"`
}
