// Package sync implements the calendar reconciliation engine: it detects
// drift between the remote calendar and the local mirror, classifies it into
// creates, updates and deletes, and applies the result in one transaction
// with an audit-log row per change.
package sync

import (
	"sam/src-server/gcal"
	"sam/src-server/model"
)

// ChangeSet is the classified drift between remote and local state. Remote
// events identical to their local counterpart are dropped silently.
type ChangeSet struct {
	ToCreate []gcal.Event
	ToUpdate []gcal.Event
	ToDelete []model.Meeting
	// Checked counts every raw remote item, malformed and duplicate entries
	// included.
	Checked int
}

func (cs ChangeSet) Empty() bool {
	return len(cs.ToCreate) == 0 && len(cs.ToUpdate) == 0 && len(cs.ToDelete) == 0
}

// Reconcile classifies remote events against the local mirror. Pure function,
// no I/O; classification is per-event and independent of arrival order.
func Reconcile(remote []gcal.Event, local map[string]model.Meeting) ChangeSet {
	cs := ChangeSet{Checked: len(remote)}

	// The same id appearing twice in one batch should not happen with
	// single-event expansion, but must be tolerated: the last occurrence
	// reflects newer API state and wins.
	index := make(map[string]int, len(remote))
	deduped := make([]gcal.Event, 0, len(remote))
	for _, ev := range remote {
		if ev.ID == "" {
			continue // nothing to key on
		}
		if i, ok := index[ev.ID]; ok {
			deduped[i] = ev
			continue
		}
		index[ev.ID] = len(deduped)
		deduped = append(deduped, ev)
	}

	for _, ev := range deduped {
		localRow, known := local[ev.ID]
		switch {
		case ev.Status == gcal.StatusCancelled:
			// never a create/update, whatever the other fields say
			if known {
				cs.ToDelete = append(cs.ToDelete, localRow)
			}
		case !known:
			cs.ToCreate = append(cs.ToCreate, ev)
		case changed(ev, localRow):
			cs.ToUpdate = append(cs.ToUpdate, ev)
		}
	}
	return cs
}

// changed reports whether any mirrored field differs from the remote event.
// Timestamps are unix seconds UTC on both sides, so equality is exact.
func changed(ev gcal.Event, m model.Meeting) bool {
	return ev.Title != m.Title ||
		ev.StartUnixUTC != m.StartUnixUTC ||
		ev.EndUnixUTC != m.EndUnixUTC ||
		ev.MeetLink != m.MeetLink ||
		ev.OrganizerEmail != m.OrganizerEmail
}
