package model

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type ActionType string

const (
	ActionCreate ActionType = "CREATE"
	ActionUpdate ActionType = "UPDATE"
	ActionDelete ActionType = "DELETE"
)

// ActivityLog is an immutable audit record, one row per applied change.
// MeetingID is informational only; DELETE rows reference a meeting that no
// longer exists and must survive its deletion.
type ActivityLog struct {
	bun.BaseModel `bun:"table:activity_log"`

	ID               int64      `bun:"id,pk,autoincrement"`
	ActionType       ActionType `bun:"action_type,notnull"`
	MeetingID        int64      `bun:"meeting_id"`
	PerformedBy      string     `bun:"performed_by"`
	Details          string     `bun:"details"`
	CreatedAtUnixUTC int64      `bun:"created_at_unix_utc,notnull"`
}

// Append inserts the entry, stamping CreatedAtUnixUTC. Entries are never
// updated or deleted afterwards.
func (l *ActivityLog) Append(ctx context.Context, db bun.IDB) error {
	switch l.ActionType {
	case ActionCreate, ActionUpdate, ActionDelete:
	default:
		return fmt.Errorf("ActivityLog.Append: unknown action type %q", l.ActionType)
	}
	l.CreatedAtUnixUTC = time.Now().UTC().Unix()
	if _, err := db.NewInsert().
		Model(l).
		Exec(ctx); err != nil {
		return fmt.Errorf("ActivityLog.Append: %w", err)
	}
	return nil
}
