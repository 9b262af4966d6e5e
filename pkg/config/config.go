package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Ziina         ZiinaConfig
	Store         StoreConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"SCHOOLSTORE_APP_ENV" required:"true"`
	Port         string `envconfig:"SCHOOLSTORE_APP_PORT" required:"true"`
	BaseURL      string `envconfig:"SCHOOLSTORE_APP_BASE_URL" default:"http://localhost:5173"`
	LogLevel     string `envconfig:"SCHOOLSTORE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"SCHOOLSTORE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"SCHOOLSTORE_DB_DSN"`
	Driver string `envconfig:"SCHOOLSTORE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"SCHOOLSTORE_DB_HOST"`
	LegacyPort     int    `envconfig:"SCHOOLSTORE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"SCHOOLSTORE_DB_USER"`
	LegacyPassword string `envconfig:"SCHOOLSTORE_DB_PASSWORD"`
	LegacyName     string `envconfig:"SCHOOLSTORE_DB_NAME"`
	LegacySSLMode  string `envconfig:"SCHOOLSTORE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"SCHOOLSTORE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SCHOOLSTORE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SCHOOLSTORE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SCHOOLSTORE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"SCHOOLSTORE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"SCHOOLSTORE_REDIS_ADDR"`
	Password     string        `envconfig:"SCHOOLSTORE_REDIS_PASSWORD"`
	DB           int           `envconfig:"SCHOOLSTORE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SCHOOLSTORE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SCHOOLSTORE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SCHOOLSTORE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SCHOOLSTORE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SCHOOLSTORE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SCHOOLSTORE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SCHOOLSTORE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SCHOOLSTORE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SCHOOLSTORE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SCHOOLSTORE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SCHOOLSTORE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SCHOOLSTORE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SCHOOLSTORE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SCHOOLSTORE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"SCHOOLSTORE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"SCHOOLSTORE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"SCHOOLSTORE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"SCHOOLSTORE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"SCHOOLSTORE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"SCHOOLSTORE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SCHOOLSTORE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SCHOOLSTORE_AUTO_MIGRATE" default:"false"`
}

// ZiinaConfig carries the payment provider credentials. The API key may be
// empty; the app still boots and checkout surfaces a dependency error.
type ZiinaConfig struct {
	BaseURL string `envconfig:"SCHOOLSTORE_ZIINA_API_URL" default:"https://api.ziina.com/v1"`
	APIKey  string `envconfig:"SCHOOLSTORE_ZIINA_API_KEY"`
}

// StoreConfig captures storefront-level settings.
type StoreConfig struct {
	Currency string `envconfig:"SCHOOLSTORE_CURRENCY" default:"AED"`
}

func (z ZiinaConfig) HasAPIKey() bool {
	return strings.TrimSpace(z.APIKey) != ""
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
