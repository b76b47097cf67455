package sync

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	gosync "sync"
	"time"

	"sam/src-server/gcal"

	"github.com/uptrace/bun"
)

// actor recorded on audit rows written by the reconciliation engine.
const syncActor = "calendar-sync"

// Result is the structured outcome of one reconciliation pass. A pass never
// panics or propagates an error: schedulers call RunReconciliation forever
// and always get one of these back.
type Result struct {
	Success   bool   `json:"success"`
	Checked   int    `json:"checked"`
	Created   int    `json:"created"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// Orchestrator wires fetcher, reader, reconciler and applier into one
// reconciliation pass and owns the transaction boundary. Passes are
// serialized on a mutex: the scheduler loop and the manual trigger route
// share one orchestrator, and a pass must see the previous pass's writes.
type Orchestrator struct {
	db     *bun.DB
	lister gcal.EventLister
	mu     gosync.Mutex
}

func NewOrchestrator(db *bun.DB, lister gcal.EventLister) *Orchestrator {
	return &Orchestrator{db: db, lister: lister}
}

// RunReconciliation executes one fetch-diff-apply cycle over the lookback
// window. All applier writes commit together or not at all; fetch and read
// failures abort before any write is attempted. Re-running against an
// already-converged state yields zero creates, updates and deletes.
func (o *Orchestrator) RunReconciliation(ctx context.Context, calendarID string, lookbackMinutes int) Result {
	o.mu.Lock()
	defer o.mu.Unlock()

	lookback := time.Duration(lookbackMinutes) * time.Minute
	slog.Info("starting calendar reconciliation",
		"calendar_id", calendarID,
		"lookback_minutes", lookbackMinutes,
	)

	remote, err := gcal.FetchChangedEvents(ctx, o.lister, calendarID, lookback)
	if err != nil {
		return failure(&RemoteFetchError{Err: err})
	}

	local, err := LoadLocalWindow(ctx, o.db, lookback)
	if err != nil {
		return failure(&LocalReadError{Err: err})
	}

	cs := Reconcile(remote, local)

	var counts Counts
	if !cs.Empty() {
		if err := o.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
			var applyErr error
			counts, applyErr = Apply(ctx, tx, cs, syncActor)
			return applyErr
		}); err != nil {
			// rolled back, the pass wrote nothing
			return failure(err)
		}
	}

	slog.Info("calendar reconciliation done",
		"checked", cs.Checked,
		"created", counts.Created,
		"updated", counts.Updated,
		"deleted", counts.Deleted,
	)
	return Result{
		Success: true,
		Checked: cs.Checked,
		Created: counts.Created,
		Updated: counts.Updated,
		Deleted: counts.Deleted,
		Message: "calendar sync completed",
	}
}

func failure(err error) Result {
	code := ErrCodeReconcile
	var (
		remoteErr *RemoteFetchError
		readErr   *LocalReadError
		writeErr  *LocalWriteError
	)
	switch {
	case errors.As(err, &remoteErr):
		code = ErrCodeRemoteFetch
	case errors.As(err, &readErr):
		code = ErrCodeLocalRead
	case errors.As(err, &writeErr):
		code = ErrCodeLocalWrite
	}

	slog.Error("calendar reconciliation failed", "error_code", code, "error", err)
	return Result{
		Success:   false,
		Message:   "calendar sync failed: " + err.Error(),
		ErrorCode: code,
	}
}
