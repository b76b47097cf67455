package sync

import (
	"context"
	"fmt"
	"testing"

	"sam/src-server/gcal"
	"sam/src-server/model"
)

// ---------------------------------------------------------------------------
// Full pass over a mixed batch: one unknown active event, one cancelled
// event with a live mirror row.
// ---------------------------------------------------------------------------

func TestRunReconciliationCreateAndDelete(t *testing.T) {
	bundb := newTestDB(t)

	e2 := activeEvent("e2", "Steering Committee")
	mirror := mirrorOf(e2)
	insertMeeting(t, bundb, &mirror, model.Participant{Name: "Kishan", Email: "kishan@x.edu"})

	lister := &mockLister{pages: [][]gcal.Event{
		{activeEvent("e1", "Budget Review")},
		{cancelledEvent("e2")},
	}}

	orch := NewOrchestrator(bundb, lister)
	result := orch.RunReconciliation(context.Background(), "primary", 120)

	if !result.Success {
		t.Fatalf("pass failed: %+v", result)
	}
	if result.Checked != 2 || result.Created != 1 || result.Updated != 0 || result.Deleted != 1 {
		t.Fatalf("result = %+v, want checked=2 created=1 updated=0 deleted=1", result)
	}

	// e1 mirrored with its participant
	meeting := new(model.Meeting)
	if err := bundb.NewSelect().
		Model(meeting).
		Relation("Participants").
		Where("remote_id = ?", "e1").
		Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(meeting.Participants) != 1 {
		t.Errorf("participants = %d, want 1", len(meeting.Participants))
	}

	// e2 gone
	exists, err := bundb.NewSelect().
		Model((*model.Meeting)(nil)).
		Where("remote_id = ?", "e2").
		Exists(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("cancelled meeting still mirrored")
	}

	// two audit rows: CREATE and DELETE
	logs := make([]model.ActivityLog, 0)
	if err := bundb.NewSelect().Model(&logs).Order("id ASC").Scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(logs) != 2 || logs[0].ActionType != model.ActionCreate || logs[1].ActionType != model.ActionDelete {
		t.Errorf("audit rows = %+v, want CREATE then DELETE", logs)
	}
}

// ---------------------------------------------------------------------------
// Idempotence: a second pass over converged state is all zeros
// ---------------------------------------------------------------------------

func TestRunReconciliationIdempotent(t *testing.T) {
	bundb := newTestDB(t)
	lister := &mockLister{pages: [][]gcal.Event{
		{activeEvent("e1", "Budget Review"), activeEvent("e2", "Standup")},
	}}
	orch := NewOrchestrator(bundb, lister)

	first := orch.RunReconciliation(context.Background(), "primary", 120)
	if !first.Success || first.Created != 2 {
		t.Fatalf("first pass = %+v", first)
	}

	second := orch.RunReconciliation(context.Background(), "primary", 120)
	if !second.Success {
		t.Fatalf("second pass failed: %+v", second)
	}
	if second.Created != 0 || second.Updated != 0 || second.Deleted != 0 {
		t.Errorf("second pass = %+v, want all-zero mutations", second)
	}
	if second.Checked != 2 {
		t.Errorf("second pass checked = %d, want 2", second.Checked)
	}
}

// ---------------------------------------------------------------------------
// Concurrent callers: the scheduler loop and the manual trigger route can
// both hit RunReconciliation; passes must serialize so each one sees the
// previous pass's writes
// ---------------------------------------------------------------------------

func TestRunReconciliationSerializesConcurrentCallers(t *testing.T) {
	bundb := newTestDB(t)
	lister := &mockLister{pages: [][]gcal.Event{
		{activeEvent("e1", "Budget Review")},
	}}
	orch := NewOrchestrator(bundb, lister)

	const callers = 8
	results := make(chan Result, callers)
	for i := 0; i < callers; i++ {
		go func() {
			results <- orch.RunReconciliation(context.Background(), "primary", 120)
		}()
	}

	created := 0
	for i := 0; i < callers; i++ {
		result := <-results
		if !result.Success {
			t.Errorf("pass failed: %+v", result)
		}
		created += result.Created
	}
	// exactly one pass creates the meeting, the rest are no-ops
	if created != 1 {
		t.Errorf("total created = %d, want 1", created)
	}
	if n := countRows(t, bundb, (*model.Meeting)(nil)); n != 1 {
		t.Errorf("meetings = %d, want 1", n)
	}
	if n := countRows(t, bundb, (*model.ActivityLog)(nil)); n != 1 {
		t.Errorf("audit rows = %d, want 1", n)
	}
}

// ---------------------------------------------------------------------------
// Failures become structured results, never propagate
// ---------------------------------------------------------------------------

func TestRunReconciliationRemoteFailure(t *testing.T) {
	bundb := newTestDB(t)
	lister := &mockLister{err: fmt.Errorf("403 forbidden")}
	orch := NewOrchestrator(bundb, lister)

	result := orch.RunReconciliation(context.Background(), "primary", 120)
	if result.Success {
		t.Fatal("want failure result")
	}
	if result.ErrorCode != ErrCodeRemoteFetch {
		t.Errorf("error code = %q, want %q", result.ErrorCode, ErrCodeRemoteFetch)
	}
	if result.Message == "" {
		t.Error("failure result carries no message")
	}
	if result.Created != 0 && result.Deleted != 0 {
		t.Errorf("failure result reports mutations: %+v", result)
	}
}

func TestRunReconciliationWriteFailureRollsBack(t *testing.T) {
	bundb := newTestDB(t)

	// a mirror row exists but was last touched before the window, so the
	// pass misclassifies the event as a create and the unique remote_id
	// constraint fires mid-transaction
	ev := activeEvent("e1", "Budget Review")
	ok := activeEvent("e2", "Standup")
	lister := &mockLister{pages: [][]gcal.Event{{ok, ev}}}

	stale := mirrorOf(ev)
	stale.UpdatedAtUnixUTC = 1 // far outside any lookback window
	insertMeeting(t, bundb, &stale)

	orch := NewOrchestrator(bundb, lister)
	result := orch.RunReconciliation(context.Background(), "primary", 120)
	if result.Success {
		t.Fatal("want failure result")
	}
	if result.ErrorCode != ErrCodeLocalWrite {
		t.Errorf("error code = %q, want %q", result.ErrorCode, ErrCodeLocalWrite)
	}

	// only the pre-existing row remains, nothing from the failed pass
	if n := countRows(t, bundb, (*model.Meeting)(nil)); n != 1 {
		t.Errorf("meetings = %d, want 1", n)
	}
	if n := countRows(t, bundb, (*model.ActivityLog)(nil)); n != 0 {
		t.Errorf("audit rows = %d, want 0", n)
	}
}
