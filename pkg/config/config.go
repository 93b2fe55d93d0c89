package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "BOTTLEAMIGO"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BOTTLEAMIGO_DB_DSN"
	EnvDBHost = "BOTTLEAMIGO_DB_HOST"
	EnvDBUser = "BOTTLEAMIGO_DB_USER"
	EnvDBName = "BOTTLEAMIGO_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	AmigoQR       AmigoQRConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string `envconfig:"BOTTLEAMIGO_APP_ENV" required:"true"`
	Port         string `envconfig:"BOTTLEAMIGO_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOTTLEAMIGO_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOTTLEAMIGO_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BOTTLEAMIGO_DB_DSN"`
	Driver string `envconfig:"BOTTLEAMIGO_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"BOTTLEAMIGO_DB_HOST"`
	LegacyPort     int    `envconfig:"BOTTLEAMIGO_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"BOTTLEAMIGO_DB_USER"`
	LegacyPassword string `envconfig:"BOTTLEAMIGO_DB_PASSWORD"`
	LegacyName     string `envconfig:"BOTTLEAMIGO_DB_NAME"`
	LegacySSLMode  string `envconfig:"BOTTLEAMIGO_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOTTLEAMIGO_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOTTLEAMIGO_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOTTLEAMIGO_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOTTLEAMIGO_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BOTTLEAMIGO_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BOTTLEAMIGO_REDIS_ADDR"`
	Password     string        `envconfig:"BOTTLEAMIGO_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOTTLEAMIGO_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOTTLEAMIGO_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOTTLEAMIGO_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOTTLEAMIGO_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOTTLEAMIGO_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOTTLEAMIGO_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOTTLEAMIGO_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOTTLEAMIGO_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOTTLEAMIGO_JWT_EXPIRATION_MINUTES" required:"true"`
}

// Expiration returns the access token TTL configured in minutes.
func (j JWTConfig) Expiration() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BOTTLEAMIGO_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BOTTLEAMIGO_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BOTTLEAMIGO_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BOTTLEAMIGO_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BOTTLEAMIGO_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"BOTTLEAMIGO_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"BOTTLEAMIGO_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"BOTTLEAMIGO_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"BOTTLEAMIGO_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"BOTTLEAMIGO_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"BOTTLEAMIGO_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type AmigoQRConfig struct {
	TokenTTL time.Duration `envconfig:"BOTTLEAMIGO_AMIGO_QR_TOKEN_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BOTTLEAMIGO_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BOTTLEAMIGO_AUTO_MIGRATE" default:"false"`
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
