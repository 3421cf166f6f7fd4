package config

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConfigLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acdice_config_loads_total",
			Help: "Total number of settings loads",
		},
		[]string{"status"}, // success, error
	)

	ConfigValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acdice_config_validations_total",
			Help: "Total number of startup self-check runs",
		},
		[]string{"result"}, // passed, failed
	)

	ConfigReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "acdice_config_reloads_total",
			Help: "Total number of settings reloads triggered by env file changes",
		},
		[]string{"status"}, // success, error
	)
)

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordConfigLoad records the outcome of a Load call
func RecordConfigLoad(success bool) {
	ConfigLoads.WithLabelValues(status(success)).Inc()
}

// RecordValidation records the outcome of a Validate call
func RecordValidation(passed bool) {
	result := "passed"
	if !passed {
		result = "failed"
	}
	ConfigValidations.WithLabelValues(result).Inc()
}

// RecordConfigReload records a configuration reload event
func RecordConfigReload(success bool) {
	ConfigReloads.WithLabelValues(status(success)).Inc()
}
