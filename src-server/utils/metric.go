package utils

// SyncPassMetric is one reconciliation pass outcome, pushed to the metric
// goroutines after every pass.
type SyncPassMetric struct {
	DurationMicroSec float64
	Created          int
	Updated          int
	Deleted          int
	Failed           bool
}

type Metric struct {
	SyncPass chan SyncPassMetric
}

func NewMetric() *Metric {
	return &Metric{
		SyncPass: make(chan SyncPassMetric),
	}
}
