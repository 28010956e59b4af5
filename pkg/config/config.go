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
	HTTP          HTTPConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GoogleMaps    GoogleMapsConfig
	Storage       StorageConfig
	NATS          NATSConfig
	Cache         CacheConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WANDERLUST_APP_ENV" required:"true"`
	Port         string `envconfig:"WANDERLUST_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WANDERLUST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WANDERLUST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `envconfig:"WANDERLUST_HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"WANDERLUST_HTTP_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `envconfig:"WANDERLUST_HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"WANDERLUST_HTTP_SHUTDOWN_TIMEOUT" default:"10s"`

	// SecureCookies marks session and flash cookies Secure.
	SecureCookies bool `envconfig:"WANDERLUST_HTTP_SECURE_COOKIES" default:"false"`

	CORSOrigins []string `envconfig:"WANDERLUST_HTTP_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
}

type DBConfig struct {
	DSN string `envconfig:"WANDERLUST_DB_DSN"`

	SQLitePath string `envconfig:"WANDERLUST_SQLITE_PATH" default:"wanderlust.db"`

	LegacyHost     string `envconfig:"WANDERLUST_DB_HOST"`
	LegacyPort     int    `envconfig:"WANDERLUST_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WANDERLUST_DB_USER"`
	LegacyPassword string `envconfig:"WANDERLUST_DB_PASSWORD"`
	LegacyName     string `envconfig:"WANDERLUST_DB_NAME"`
	LegacySSLMode  string `envconfig:"WANDERLUST_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WANDERLUST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WANDERLUST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WANDERLUST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WANDERLUST_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WANDERLUST_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WANDERLUST_REDIS_ADDR"`
	Password     string        `envconfig:"WANDERLUST_REDIS_PASSWORD"`
	DB           int           `envconfig:"WANDERLUST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WANDERLUST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WANDERLUST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WANDERLUST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WANDERLUST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WANDERLUST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WANDERLUST_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WANDERLUST_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WANDERLUST_JWT_EXPIRATION_MINUTES" required:"true"`
	SessionTTLMinutes int    `envconfig:"WANDERLUST_SESSION_TTL_MINUTES" default:"10080"`
}

// AccessTTL returns the lifetime of a signed access token.
func (j JWTConfig) AccessTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// SessionTTL returns how long a login session stays valid in redis.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WANDERLUST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WANDERLUST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WANDERLUST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WANDERLUST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WANDERLUST_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow         time.Duration `envconfig:"WANDERLUST_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginUsernameLimit  int           `envconfig:"WANDERLUST_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit        int           `envconfig:"WANDERLUST_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow        time.Duration `envconfig:"WANDERLUST_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupUsernameLimit int           `envconfig:"WANDERLUST_AUTH_RATE_LIMIT_SIGNUP_USERNAME_LIMIT" default:"3"`
	SignupIPLimit       int           `envconfig:"WANDERLUST_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WANDERLUST_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WANDERLUST_AUTO_MIGRATE" default:"false"`
}

type GoogleMapsConfig struct {
	APIKey  string `envconfig:"WANDERLUST_GOOGLE_MAPS_API_KEY"`
	BaseURL string `envconfig:"WANDERLUST_GOOGLE_MAPS_BASE_URL"`
}

// StorageConfig points at an S3 compatible bucket holding listing images.
type StorageConfig struct {
	Endpoint      string `envconfig:"WANDERLUST_STORAGE_ENDPOINT" default:"localhost:9000"`
	AccessKey     string `envconfig:"WANDERLUST_STORAGE_ACCESS_KEY"`
	SecretKey     string `envconfig:"WANDERLUST_STORAGE_SECRET_KEY"`
	Bucket        string `envconfig:"WANDERLUST_STORAGE_BUCKET" default:"wanderlust-listings"`
	Region        string `envconfig:"WANDERLUST_STORAGE_REGION" default:"us-east-1"`
	UseSSL        bool   `envconfig:"WANDERLUST_STORAGE_USE_SSL" default:"false"`
	PublicBaseURL string `envconfig:"WANDERLUST_STORAGE_PUBLIC_BASE_URL"`
	MaxUploadMB   int    `envconfig:"WANDERLUST_MAX_UPLOAD_MB" default:"10"`

	// ResizeParam is the width query parameter of an image resizing proxy
	// serving PublicBaseURL. Empty means originals are served as is.
	ResizeParam string `envconfig:"WANDERLUST_STORAGE_RESIZE_PARAM"`
}

// MaxUploadBytes returns the multipart limit applied to listing forms.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 10 << 20
	}
	return int64(s.MaxUploadMB) << 20
}

type NATSConfig struct {
	URL           string `envconfig:"WANDERLUST_NATS_URL"`
	SubjectPrefix string `envconfig:"WANDERLUST_NATS_SUBJECT_PREFIX" default:"wanderlust"`
}

type CacheConfig struct {
	ListingTTL time.Duration `envconfig:"WANDERLUST_CACHE_LISTING_TTL" default:"5m"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if db.DSN != "" || useSQLite {
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
