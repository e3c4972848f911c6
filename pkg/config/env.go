package config

const EnvPrefix = "NOORVIA"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv   = "NOORVIA_APP_ENV"
	EnvPort     = "NOORVIA_APP_PORT"
	EnvLogLevel = "NOORVIA_LOG_LEVEL"

	EnvDBDSN    = "NOORVIA_DB_DSN"
	EnvDBDriver = "NOORVIA_DB_DRIVER"
	EnvDBHost   = "NOORVIA_DB_HOST"
	EnvDBPort   = "NOORVIA_DB_PORT"
	EnvDBUser   = "NOORVIA_DB_USER"
	EnvDBPass   = "NOORVIA_DB_PASSWORD"
	EnvDBName   = "NOORVIA_DB_NAME"

	EnvRedisURL = "NOORVIA_REDIS_URL"

	EnvJWTSecret               = "NOORVIA_JWT_SECRET"
	EnvJWTIssuer               = "NOORVIA_JWT_ISSUER"
	EnvJWTExpMins              = "NOORVIA_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "NOORVIA_REFRESH_TOKEN_TTL_MINUTES"
	EnvCORSAllowedOrigins      = "NOORVIA_CORS_ALLOWED_ORIGINS"
	EnvOrderVerifyTotals       = "NOORVIA_ORDER_VERIFY_TOTALS"
	EnvOrderForwardOnlyStatus  = "NOORVIA_ORDER_FORWARD_ONLY_STATUS"
	EnvContentCacheTTL         = "NOORVIA_CONTENT_CACHE_TTL"
	EnvUseSQLite               = "NOORVIA_USE_SQLITE"
	EnvPubSubOrdersTopic       = "NOORVIA_PUBSUB_ORDERS_TOPIC"
	EnvGCPProjectID            = "NOORVIA_GCP_PROJECT_ID"
	EnvOutboxPublishBatchSize  = "NOORVIA_OUTBOX_PUBLISH_BATCH_SIZE"
	EnvOutboxPublishPollMillis = "NOORVIA_OUTBOX_PUBLISH_POLL_MS"
)

var discreteDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
