package route

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"sam/src-server/sync"
	"sam/src-server/utils"
)

func Sync(muxer *http.ServeMux, as *utils.AppState, orch *sync.Orchestrator) {
	// trigger one reconciliation pass immediately
	muxer.HandleFunc("POST /api/sync", func(w http.ResponseWriter, r *http.Request) {
		result := orch.RunReconciliation(
			r.Context(),
			as.Config.GetGcalCalendarID(),
			as.Config.GetSyncLookbackMinutes(),
		)

		w.Header().Set("Content-Type", "application/json")
		if !result.Success {
			w.WriteHeader(http.StatusBadGateway)
		}
		if err := json.NewEncoder(w).Encode(result); err != nil {
			slog.Error("can't encode sync result", "error", err)
		}
	})
}
