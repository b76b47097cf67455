package sync

import (
	"context"
	"fmt"
	"time"

	"sam/src-server/model"

	"github.com/uptrace/bun"
)

// LoadLocalWindow returns the Meeting rows last touched within the lookback
// window, keyed by remote event id. Bounding the read to the window keeps it
// cheap, at the cost that a row touched before the window is invisible here
// and a remote change to it classifies as a create. Known limitation, kept
// from the original design.
func LoadLocalWindow(ctx context.Context, db bun.IDB, lookback time.Duration) (map[string]model.Meeting, error) {
	cutoff := time.Now().UTC().Add(-lookback).Unix()

	meetings := make([]model.Meeting, 0)
	if err := db.NewSelect().
		Model(&meetings).
		Where("updated_at_unix_utc >= ?", cutoff).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("LoadLocalWindow: %w", err)
	}

	local := make(map[string]model.Meeting, len(meetings))
	for _, m := range meetings {
		local[m.RemoteID] = m
	}
	return local, nil
}
