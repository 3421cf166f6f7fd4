package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the validated ACDICE configuration. It holds only value
// fields, so every copy is independent; reconfiguring means building a new
// Settings and swapping it into a Store.
//
// The ML, integration and research fields are forward-declared for
// components that consume them; nothing in this module acts on them.
type Settings struct {
	// Firebase
	ProjectID        string `mapstructure:"firebase_project_id" yaml:"firebase_project_id" validate:"required"`
	CollectionPrefix string `mapstructure:"firestore_collection_prefix" yaml:"firestore_collection_prefix" validate:"required"`

	// ML model
	ModelPath                     string  `mapstructure:"ml_model_path" yaml:"ml_model_path" validate:"required"`
	PredictionConfidenceThreshold float64 `mapstructure:"prediction_confidence_threshold" yaml:"prediction_confidence_threshold" validate:"gte=0,lte=1"`

	// Integrations
	MaxConcurrentIntegrations int `mapstructure:"max_concurrent_integrations" yaml:"max_concurrent_integrations" validate:"gt=0"`
	IntegrationTimeoutSeconds int `mapstructure:"integration_timeout_seconds" yaml:"integration_timeout_seconds" validate:"gt=0"`

	// Research
	ExplorationRate           float64 `mapstructure:"exploration_rate" yaml:"exploration_rate" validate:"gte=0,lte=1"`
	KnowledgeBaseRefreshHours int     `mapstructure:"knowledge_base_refresh_hours" yaml:"knowledge_base_refresh_hours" validate:"gt=0"`

	// Logging
	LogLevel         LogLevel `mapstructure:"log_level" yaml:"log_level" validate:"oneof=DEBUG INFO WARNING ERROR CRITICAL"`
	LogRetentionDays int      `mapstructure:"log_retention_days" yaml:"log_retention_days" validate:"gt=0"`

	// Monitoring
	MetricsCollectionInterval int `mapstructure:"metrics_collection_interval" yaml:"metrics_collection_interval" validate:"gt=0"`
}

// LogLevel is one of the five level names accepted in ACDICE_LOG_LEVEL.
type LogLevel string

const (
	LevelDebug    LogLevel = "DEBUG"
	LevelInfo     LogLevel = "INFO"
	LevelWarning  LogLevel = "WARNING"
	LevelError    LogLevel = "ERROR"
	LevelCritical LogLevel = "CRITICAL"
)

// LogLevels lists the accepted levels from most to least verbose.
var LogLevels = []LogLevel{LevelDebug, LevelInfo, LevelWarning, LevelError, LevelCritical}

// IntegrationTimeout returns the integration timeout as a duration
func (s Settings) IntegrationTimeout() time.Duration {
	return time.Duration(s.IntegrationTimeoutSeconds) * time.Second
}

// KnowledgeBaseRefresh returns the knowledge base refresh period
func (s Settings) KnowledgeBaseRefresh() time.Duration {
	return time.Duration(s.KnowledgeBaseRefreshHours) * time.Hour
}

// MetricsInterval returns the metrics collection period
func (s Settings) MetricsInterval() time.Duration {
	return time.Duration(s.MetricsCollectionInterval) * time.Second
}

// LogRetention returns how long rotated log files are kept
func (s Settings) LogRetention() time.Duration {
	return time.Duration(s.LogRetentionDays) * 24 * time.Hour
}

// YAML renders the settings in the same key naming the environment uses.
func (s Settings) YAML() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal settings: %w", err)
	}
	return string(out), nil
}
