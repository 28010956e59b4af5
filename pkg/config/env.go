package config

// EnvPrefix scopes every variable read by Load.
const EnvPrefix = "WANDERLUST"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "WANDERLUST_APP_ENV"
	EnvPort     = "WANDERLUST_APP_PORT"
	EnvLogLevel = "WANDERLUST_LOG_LEVEL"

	EnvDBDSN     = "WANDERLUST_DB_DSN"
	EnvDBHost    = "WANDERLUST_DB_HOST"
	EnvDBUser    = "WANDERLUST_DB_USER"
	EnvDBName    = "WANDERLUST_DB_NAME"
	EnvDBPort    = "WANDERLUST_DB_PORT"
	EnvUseSQLite = "WANDERLUST_USE_SQLITE"

	EnvRedisURL = "WANDERLUST_REDIS_URL"

	EnvJWTSecret  = "WANDERLUST_JWT_SECRET"
	EnvJWTIssuer  = "WANDERLUST_JWT_ISSUER"
	EnvJWTExpMins = "WANDERLUST_JWT_EXPIRATION_MINUTES"

	EnvStorageBucket = "WANDERLUST_STORAGE_BUCKET"
	EnvMaxUploadMB   = "WANDERLUST_MAX_UPLOAD_MB"
	EnvNATSURL       = "WANDERLUST_NATS_URL"
	EnvCacheTTL      = "WANDERLUST_CACHE_LISTING_TTL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
