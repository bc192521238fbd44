package config

// EnvPrefix namespaces every environment variable consumed by envconfig.
const EnvPrefix = "PEPTRACKER"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "PEPTRACKER_APP_ENV"
	EnvPort     = "PEPTRACKER_APP_PORT"
	EnvDBDSN    = "PEPTRACKER_DB_DSN"
	EnvDBHost   = "PEPTRACKER_DB_HOST"
	EnvDBUser   = "PEPTRACKER_DB_USER"
	EnvDBName   = "PEPTRACKER_DB_NAME"
	EnvRedisURL = "PEPTRACKER_REDIS_URL"

	EnvJWTSecret  = "PEPTRACKER_JWT_SECRET"
	EnvJWTIssuer  = "PEPTRACKER_JWT_ISSUER"
	EnvJWTExpMins = "PEPTRACKER_JWT_EXPIRATION_MINUTES"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
