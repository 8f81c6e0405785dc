package config

const (
	EnvPrefix = "ARMORY"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "ARMORY_APP_ENV"
	EnvPort     = "ARMORY_APP_PORT"
	EnvDBDSN    = "ARMORY_DB_DSN"
	EnvDBHost   = "ARMORY_DB_HOST"
	EnvDBUser   = "ARMORY_DB_USER"
	EnvDBName   = "ARMORY_DB_NAME"
	EnvRedisURL = "ARMORY_REDIS_URL"

	EnvJWTSecret = "ARMORY_JWT_SECRET"
	EnvJWTIssuer = "ARMORY_JWT_ISSUER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
