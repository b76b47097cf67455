package sync

// Error taxonomy for one reconciliation pass. Each stage wraps its cause in
// the matching type so failures stay distinguishable up to the orchestrator
// boundary, where they are folded into a Result error code.

const (
	ErrCodeRemoteFetch = "REMOTE_FETCH_FAILED"
	ErrCodeLocalRead   = "LOCAL_READ_FAILED"
	ErrCodeLocalWrite  = "LOCAL_WRITE_FAILED"
	ErrCodeReconcile   = "RECONCILE_FAILED"
)

// RemoteFetchError is a transport or authorization failure reaching the
// remote calendar.
type RemoteFetchError struct {
	Err error
}

func (e *RemoteFetchError) Error() string { return "remote fetch failed: " + e.Err.Error() }
func (e *RemoteFetchError) Unwrap() error { return e.Err }

// LocalReadError is a storage access failure while loading the local mirror.
type LocalReadError struct {
	Err error
}

func (e *LocalReadError) Error() string { return "local read failed: " + e.Err.Error() }
func (e *LocalReadError) Unwrap() error { return e.Err }

// LocalWriteError is a storage access or constraint failure while applying a
// change set.
type LocalWriteError struct {
	Err error
}

func (e *LocalWriteError) Error() string { return "local write failed: " + e.Err.Error() }
func (e *LocalWriteError) Unwrap() error { return e.Err }

// ReconciliationError is an internal inconsistency, e.g. an event with a
// start time but no end time reaching the applier.
type ReconciliationError struct {
	Reason string
}

func (e *ReconciliationError) Error() string { return "reconciliation error: " + e.Reason }
