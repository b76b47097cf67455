package metric

import (
	"log/slog"
	"time"

	"sam/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func databaseEmptyRead(as *utils.AppState, tickerInterval *time.Duration) {
	databaseEmptyRead := promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sam_database_empty_read_microsec",
		Help: "The latency of an empty database read in microseconds",
	})
	good := true
	if err := prometheus.Register(databaseEmptyRead); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register sam_database_empty_read_microsec metric", "error", err)
			good = false
		}
	}
	if good {
		slog.Debug("sam_database_empty_read_microsec metric registered")
		databaseEmptyRead.Set(0)
	}
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(*tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				switch prometheus.Unregister(databaseEmptyRead) {
				case true:
					slog.Debug("sam_database_empty_read_microsec metric unregistered")
				case false:
					slog.Warn("sam_database_empty_read_microsec metric not registered")
				}
				return
			case <-ticker.C:
				latency, err := database(as)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				databaseEmptyRead.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

func syncPass(as *utils.AppState, clearTickerInterval *time.Duration) {
	syncPassDuration := promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sam_sync_pass_duration_microsec",
		Help: "The duration of the last reconciliation pass in microseconds",
	})
	meetingsCreated := promauto.NewCounter(prometheus.CounterOpts{
		Name: "sam_meetings_created_total",
		Help: "Meetings created by reconciliation passes",
	})
	meetingsUpdated := promauto.NewCounter(prometheus.CounterOpts{
		Name: "sam_meetings_updated_total",
		Help: "Meetings updated by reconciliation passes",
	})
	meetingsDeleted := promauto.NewCounter(prometheus.CounterOpts{
		Name: "sam_meetings_deleted_total",
		Help: "Meetings deleted by reconciliation passes",
	})
	syncPassFailures := promauto.NewCounter(prometheus.CounterOpts{
		Name: "sam_sync_pass_failures_total",
		Help: "Reconciliation passes that ended in an error",
	})

	collectors := map[string]prometheus.Collector{
		"sam_sync_pass_duration_microsec": syncPassDuration,
		"sam_meetings_created_total":      meetingsCreated,
		"sam_meetings_updated_total":      meetingsUpdated,
		"sam_meetings_deleted_total":      meetingsDeleted,
		"sam_sync_pass_failures_total":    syncPassFailures,
	}
	for name, collector := range collectors {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				slog.Error("can't register metric", "name", name, "error", err)
				delete(collectors, name)
			}
		} else {
			slog.Debug("metric registered", "name", name)
		}
	}
	syncPassDuration.Set(0)

	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(*clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-*gracefulShutdownCh:
				for name, collector := range collectors {
					switch prometheus.Unregister(collector) {
					case true:
						slog.Debug("metric unregistered", "name", name)
					case false:
						slog.Warn("metric not registered", "name", name)
					}
				}
				return
			case pass := <-as.MetricChans.SyncPass:
				syncPassDuration.Set(pass.DurationMicroSec)
				meetingsCreated.Add(float64(pass.Created))
				meetingsUpdated.Add(float64(pass.Updated))
				meetingsDeleted.Add(float64(pass.Deleted))
				if pass.Failed {
					syncPassFailures.Inc()
				}
				clearTicker.Reset(*clearTickerInterval)
			case <-clearTicker.C:
				syncPassDuration.Set(0)
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	databaseEmptyRead(as, &tickerInterval)
	syncPass(as, &clearTickerInterval)
}
