package gcal

import (
	"context"
	"fmt"
	"time"
)

// FetchChangedEvents returns every event whose last-modified timestamp falls
// inside the lookback window ending now, cancelled events included so that
// deletions are observable. Pagination is drained fully before returning; the
// result is a finite, materialized slice, never a partial page. No retries:
// the caller's next scheduled pass is the retry.
func FetchChangedEvents(ctx context.Context, lister EventLister, calendarID string, lookback time.Duration) ([]Event, error) {
	updatedMin := time.Now().UTC().Add(-lookback)

	events := make([]Event, 0)
	pageToken := ""
	for {
		page, err := lister.ListUpdatedSince(ctx, calendarID, updatedMin, pageToken)
		if err != nil {
			return nil, fmt.Errorf("FetchChangedEvents: can't list events: %w", err)
		}
		for _, raw := range page.Items {
			if raw == nil {
				continue
			}
			events = append(events, FromAPI(raw))
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}
	return events, nil
}
