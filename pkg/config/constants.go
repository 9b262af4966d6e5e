package config

// EnvPrefix scopes every environment variable read by Load.
const EnvPrefix = "SCHOOLSTORE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "SCHOOLSTORE_DB_DSN"
	EnvDBHost = "SCHOOLSTORE_DB_HOST"
	EnvDBUser = "SCHOOLSTORE_DB_USER"
	EnvDBName = "SCHOOLSTORE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
