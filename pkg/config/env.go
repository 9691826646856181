package config

// EnvPrefix is handed to envconfig; every field also carries its full name.
const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv        = "STOREFRONT_APP_ENV"
	EnvAppProfile    = "STOREFRONT_PROFILE"
	EnvLogLevel      = "STOREFRONT_LOG_LEVEL"
	EnvLogFormat     = "STOREFRONT_LOG_FORMAT"
	EnvAPIBaseURL    = "STOREFRONT_API_BASE_URL"
	EnvAPITimeout    = "STOREFRONT_API_TIMEOUT"
	EnvStoreDriver   = "STOREFRONT_STORE_DRIVER"
	EnvStateDir      = "STOREFRONT_STATE_DIR"
	EnvDBDialect     = "STOREFRONT_DB_DIALECT"
	EnvDBDSN         = "STOREFRONT_DB_DSN"
	EnvDBHost        = "STOREFRONT_DB_HOST"
	EnvDBUser        = "STOREFRONT_DB_USER"
	EnvDBName        = "STOREFRONT_DB_NAME"
	EnvSQLitePath    = "STOREFRONT_DB_SQLITE_PATH"
	EnvRedisURL      = "STOREFRONT_REDIS_URL"
	EnvRedisAddr     = "STOREFRONT_REDIS_ADDR"
	EnvSubmitTimeout = "STOREFRONT_CHECKOUT_SUBMIT_TIMEOUT"
	EnvViewAddr      = "STOREFRONT_VIEW_ADDR"
)

// Store drivers accepted by STOREFRONT_STORE_DRIVER.
const (
	StoreDriverMemory = "memory"
	StoreDriverFile   = "file"
	StoreDriverRedis  = "redis"
	StoreDriverSQL    = "sql"
)

// SQL dialects accepted by STOREFRONT_DB_DIALECT.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
