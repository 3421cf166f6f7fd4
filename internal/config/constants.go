package config

const (
	// ServiceName is used as the default Firebase project suffix and in logs.
	ServiceName = "acdice"

	// EnvPrefix prefixes every settings variable, e.g. ACDICE_LOG_LEVEL.
	EnvPrefix = "ACDICE"

	// DefaultEnvFile is read when no other env file is configured.
	DefaultEnvFile = ".env"

	// CredentialsEnvVar points at Google service account credentials. Only
	// its presence is observed.
	CredentialsEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Setting keys. The matching environment variable is EnvPrefix + "_" + key.
const (
	KeyProjectID                     = "firebase_project_id"
	KeyCollectionPrefix              = "firestore_collection_prefix"
	KeyModelPath                     = "ml_model_path"
	KeyPredictionConfidenceThreshold = "prediction_confidence_threshold"
	KeyMaxConcurrentIntegrations     = "max_concurrent_integrations"
	KeyIntegrationTimeoutSeconds     = "integration_timeout_seconds"
	KeyExplorationRate               = "exploration_rate"
	KeyKnowledgeBaseRefreshHours     = "knowledge_base_refresh_hours"
	KeyLogLevel                      = "log_level"
	KeyLogRetentionDays              = "log_retention_days"
	KeyMetricsCollectionInterval     = "metrics_collection_interval"
)

const (
	DefaultProjectID                     = "acdice-production"
	DefaultCollectionPrefix              = "acdice_"
	DefaultModelPath                     = "models/integration_predictor.joblib"
	DefaultPredictionConfidenceThreshold = 0.75
	DefaultMaxConcurrentIntegrations     = 10
	DefaultIntegrationTimeoutSeconds     = 30
	DefaultExplorationRate               = 0.2
	DefaultKnowledgeBaseRefreshHours     = 24
	DefaultLogLevel                      = LevelInfo
	DefaultLogRetentionDays              = 30
	DefaultMetricsCollectionInterval     = 300 // seconds
)
