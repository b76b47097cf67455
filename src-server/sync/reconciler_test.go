package sync

import (
	"testing"

	"sam/src-server/gcal"
	"sam/src-server/model"
)

func localOf(events ...gcal.Event) map[string]model.Meeting {
	local := make(map[string]model.Meeting, len(events))
	for i, ev := range events {
		m := mirrorOf(ev)
		m.ID = int64(i + 1)
		local[ev.ID] = m
	}
	return local
}

// ---------------------------------------------------------------------------
// Classification completeness: unknown active events create, exactly once
// ---------------------------------------------------------------------------

func TestReconcileClassifiesUnknownAsCreate(t *testing.T) {
	remote := []gcal.Event{activeEvent("e1", "Budget Review"), activeEvent("e2", "Standup")}

	cs := Reconcile(remote, map[string]model.Meeting{})
	if cs.Checked != 2 {
		t.Errorf("checked = %d, want 2", cs.Checked)
	}
	if len(cs.ToCreate) != 2 || len(cs.ToUpdate) != 0 || len(cs.ToDelete) != 0 {
		t.Fatalf("changeset = %d/%d/%d, want 2/0/0", len(cs.ToCreate), len(cs.ToUpdate), len(cs.ToDelete))
	}
	seen := map[string]int{}
	for _, ev := range cs.ToCreate {
		seen[ev.ID]++
	}
	if seen["e1"] != 1 || seen["e2"] != 1 {
		t.Errorf("create multiplicity = %v, want each exactly once", seen)
	}
}

// ---------------------------------------------------------------------------
// Cancellation precedence
// ---------------------------------------------------------------------------

func TestReconcileCancelledNeverCreatesOrUpdates(t *testing.T) {
	// cancelled with a local row → delete, even with divergent fields
	withRow := activeEvent("e1", "Old Title")
	cancelled := activeEvent("e1", "Completely Different")
	cancelled.Status = gcal.StatusCancelled

	cs := Reconcile([]gcal.Event{cancelled}, localOf(withRow))
	if len(cs.ToDelete) != 1 || len(cs.ToCreate) != 0 || len(cs.ToUpdate) != 0 {
		t.Fatalf("changeset = %d/%d/%d, want 0/0/1", len(cs.ToCreate), len(cs.ToUpdate), len(cs.ToDelete))
	}
	if cs.ToDelete[0].RemoteID != "e1" {
		t.Errorf("delete targets %q, want the local row for e1", cs.ToDelete[0].RemoteID)
	}

	// cancelled without a local row → nothing to remove
	cs = Reconcile([]gcal.Event{cancelledEvent("ghost")}, map[string]model.Meeting{})
	if !cs.Empty() {
		t.Errorf("cancelled unknown event classified: %+v", cs)
	}
}

// ---------------------------------------------------------------------------
// Field-change detection, field by field
// ---------------------------------------------------------------------------

func TestReconcileFieldChangeDetection(t *testing.T) {
	base := activeEvent("e1", "Budget Review")

	cases := []struct {
		name   string
		mutate func(*gcal.Event)
	}{
		{"title", func(ev *gcal.Event) { ev.Title = "Budget Review v2" }},
		{"start", func(ev *gcal.Event) { ev.StartUnixUTC += 300 }},
		{"end", func(ev *gcal.Event) { ev.EndUnixUTC += 300 }},
		{"meet link", func(ev *gcal.Event) { ev.MeetLink = "https://meet.example/other" }},
		{"organizer", func(ev *gcal.Event) { ev.OrganizerEmail = "provost@x.edu" }},
	}
	for _, tc := range cases {
		ev := base
		tc.mutate(&ev)
		cs := Reconcile([]gcal.Event{ev}, localOf(base))
		if len(cs.ToUpdate) != 1 {
			t.Errorf("%s changed: updates = %d, want 1", tc.name, len(cs.ToUpdate))
		}
		if len(cs.ToCreate) != 0 || len(cs.ToDelete) != 0 {
			t.Errorf("%s changed: spilled into create/delete", tc.name)
		}
	}

	// attendee-only change is not a mirrored field: no classification
	ev := base
	ev.Attendees = append(ev.Attendees, gcal.Attendee{Name: "Ayush", Email: "ayush@x.edu"})
	if cs := Reconcile([]gcal.Event{ev}, localOf(base)); !cs.Empty() {
		t.Errorf("attendee-only change classified: %+v", cs)
	}

	// identical event is a no-op
	if cs := Reconcile([]gcal.Event{base}, localOf(base)); !cs.Empty() {
		t.Errorf("identical event classified: %+v", cs)
	}
}

// ---------------------------------------------------------------------------
// Malformed and duplicate input
// ---------------------------------------------------------------------------

func TestReconcileSkipsEventsWithoutID(t *testing.T) {
	ev := activeEvent("", "no id")
	cs := Reconcile([]gcal.Event{ev}, map[string]model.Meeting{})
	if !cs.Empty() {
		t.Errorf("event without id classified: %+v", cs)
	}
	if cs.Checked != 1 {
		t.Errorf("checked = %d, want raw count 1", cs.Checked)
	}
}

func TestReconcileDuplicateIDLastWins(t *testing.T) {
	base := activeEvent("e1", "Budget Review")
	stale := base
	stale.Title = "Stale Title"

	// stale first, current last → last wins → no-op against a matching mirror
	cs := Reconcile([]gcal.Event{stale, base}, localOf(base))
	if !cs.Empty() {
		t.Errorf("last occurrence should win and be a no-op, got %+v", cs)
	}
	if cs.Checked != 2 {
		t.Errorf("checked = %d, want 2", cs.Checked)
	}

	// current first, divergent last → last wins → update
	cs = Reconcile([]gcal.Event{base, stale}, localOf(base))
	if len(cs.ToUpdate) != 1 || cs.ToUpdate[0].Title != "Stale Title" {
		t.Errorf("last occurrence should win the classification, got %+v", cs)
	}

	// duplicate cancellation after an active entry still deletes, once
	cancelled := cancelledEvent("e1")
	cs = Reconcile([]gcal.Event{base, cancelled}, localOf(base))
	if len(cs.ToDelete) != 1 || len(cs.ToCreate) != 0 || len(cs.ToUpdate) != 0 {
		t.Errorf("changeset = %d/%d/%d, want 0/0/1", len(cs.ToCreate), len(cs.ToUpdate), len(cs.ToDelete))
	}
}
