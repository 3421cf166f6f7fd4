package config

// Defaults returns the settings used when nothing overrides them
func Defaults() Settings {
	return Settings{
		ProjectID:                     DefaultProjectID,
		CollectionPrefix:              DefaultCollectionPrefix,
		ModelPath:                     DefaultModelPath,
		PredictionConfidenceThreshold: DefaultPredictionConfidenceThreshold,
		MaxConcurrentIntegrations:     DefaultMaxConcurrentIntegrations,
		IntegrationTimeoutSeconds:     DefaultIntegrationTimeoutSeconds,
		ExplorationRate:               DefaultExplorationRate,
		KnowledgeBaseRefreshHours:     DefaultKnowledgeBaseRefreshHours,
		LogLevel:                      DefaultLogLevel,
		LogRetentionDays:              DefaultLogRetentionDays,
		MetricsCollectionInterval:     DefaultMetricsCollectionInterval,
	}
}
