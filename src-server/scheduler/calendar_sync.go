package scheduler

import (
	"context"
	"log/slog"
	"time"

	"sam/src-server/sync"
	"sam/src-server/utils"
)

// CalendarSync runs the reconciliation loop: one pass against the
// configured calendar, sleep, repeat. Pass outcomes feed the metric
// goroutines.
func CalendarSync(as *utils.AppState, orch *sync.Orchestrator) {
	for {
		startTimer := time.Now()
		result := orch.RunReconciliation(
			context.Background(),
			as.Config.GetGcalCalendarID(),
			as.Config.GetSyncLookbackMinutes(),
		)
		as.MetricChans.SyncPass <- utils.SyncPassMetric{
			DurationMicroSec: float64(time.Since(startTimer).Microseconds()),
			Created:          result.Created,
			Updated:          result.Updated,
			Deleted:          result.Deleted,
			Failed:           !result.Success,
		}

		if !result.Success {
			slog.Error("CalendarSync: pass failed",
				"errorCode", result.ErrorCode,
				"message", result.Message)
		} else if result.Created+result.Updated+result.Deleted > 0 {
			slog.Info("CalendarSync: pass applied changes",
				"checked", result.Checked,
				"created", result.Created,
				"updated", result.Updated,
				"deleted", result.Deleted)
		}

		time.Sleep(as.Config.GetSyncInterval())
	}
}
