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
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	Idempotency   IdempotencyConfig
	Order         OrderConfig
	Content       ContentConfig
	Seed          SeedConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
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
	Name         string `envconfig:"NOORVIA_APP_NAME" default:"NoorVia"`
	Env          string `envconfig:"NOORVIA_APP_ENV" required:"true"`
	Port         string `envconfig:"NOORVIA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"NOORVIA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"NOORVIA_LOG_WARN_STACK" default:"false"`
	LogFormat    string `envconfig:"NOORVIA_LOG_FORMAT"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"NOORVIA_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"NOORVIA_DB_DSN"`
	Driver string `envconfig:"NOORVIA_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"NOORVIA_DB_HOST"`
	Port     int    `envconfig:"NOORVIA_DB_PORT" default:"5432"`
	User     string `envconfig:"NOORVIA_DB_USER"`
	Password string `envconfig:"NOORVIA_DB_PASSWORD"`
	Name     string `envconfig:"NOORVIA_DB_NAME"`
	SSLMode  string `envconfig:"NOORVIA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"NOORVIA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"NOORVIA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"NOORVIA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"NOORVIA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"NOORVIA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"NOORVIA_REDIS_ADDR"`
	Password     string        `envconfig:"NOORVIA_REDIS_PASSWORD"`
	DB           int           `envconfig:"NOORVIA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"NOORVIA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"NOORVIA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"NOORVIA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"NOORVIA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"NOORVIA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"NOORVIA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"NOORVIA_JWT_ISSUER" default:"noorvia"`
	ExpirationMinutes      int    `envconfig:"NOORVIA_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"NOORVIA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"NOORVIA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"NOORVIA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"NOORVIA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"NOORVIA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"NOORVIA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"NOORVIA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"NOORVIA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"NOORVIA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"NOORVIA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"NOORVIA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"NOORVIA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"NOORVIA_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	MaxAge         int      `envconfig:"NOORVIA_CORS_MAX_AGE" default:"300"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"NOORVIA_IDEMPOTENCY_TTL" default:"24h"`
}

// OrderConfig holds the order placement and fulfilment policy switches.
// Both default to the permissive storefront behaviour.
type OrderConfig struct {
	VerifyTotals      bool `envconfig:"NOORVIA_ORDER_VERIFY_TOTALS" default:"false"`
	ForwardOnlyStatus bool `envconfig:"NOORVIA_ORDER_FORWARD_ONLY_STATUS" default:"false"`
}

type ContentConfig struct {
	CacheTTL time.Duration `envconfig:"NOORVIA_CONTENT_CACHE_TTL" default:"10m"`
}

type SeedConfig struct {
	AdminName     string `envconfig:"NOORVIA_SEED_ADMIN_NAME" default:"NoorVia Admin"`
	AdminEmail    string `envconfig:"NOORVIA_SEED_ADMIN_EMAIL" default:"admin@noorvia.com"`
	AdminPassword string `envconfig:"NOORVIA_SEED_ADMIN_PASSWORD"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"NOORVIA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"NOORVIA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"NOORVIA_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"NOORVIA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"NOORVIA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic string `envconfig:"NOORVIA_PUBSUB_ORDERS_TOPIC" default:"noorvia-order-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"NOORVIA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"NOORVIA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"NOORVIA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

// PollInterval returns the publisher poll interval, falling back to 500ms.
func (o OutboxConfig) PollInterval() time.Duration {
	if o.PollIntervalMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(o.PollIntervalMS) * time.Millisecond
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DBDriverSQLite
	}
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, DBDriverSQLite) {
		db.DSN = "file:noorvia.db?cache=shared&_foreign_keys=on"
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range discreteDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
