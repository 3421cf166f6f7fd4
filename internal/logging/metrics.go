package logging

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap/zapcore"
)

const entriesMetric = "acdice_log_entries_total"

var (
	LogEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: entriesMetric,
			Help: "Total number of log entries written, by level",
		},
		[]string{"level"},
	)

	Initializations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acdice_logging_initializations_total",
			Help: "Total number of logging bootstrap attempts",
		},
		[]string{"status"}, // success, error
	)
)

func countEntry(e zapcore.Entry) error {
	LogEntries.WithLabelValues(levelName(e.Level)).Inc()
	return nil
}

// RecordInitialization records the outcome of an Initialize call
func RecordInitialization(success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	Initializations.WithLabelValues(status).Inc()
}

// EntryCounts reports the number of entries logged so far per level name.
func EntryCounts(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	counts := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != entriesMetric {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "level" {
					counts[lp.GetValue()] += m.GetCounter().GetValue()
				}
			}
		}
	}
	return counts, nil
}
