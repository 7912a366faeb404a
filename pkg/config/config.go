package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TECHNOVA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TECHNOVA_DB_DSN"
	EnvDBHost = "TECHNOVA_DB_HOST"
	EnvDBUser = "TECHNOVA_DB_USER"
	EnvDBName = "TECHNOVA_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Session       SessionConfig
	Checkout      CheckoutConfig
	Catalog       CatalogConfig
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
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TECHNOVA_APP_ENV" required:"true"`
	Port         string `envconfig:"TECHNOVA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"TECHNOVA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TECHNOVA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"TECHNOVA_DB_DSN"`
	Driver string `envconfig:"TECHNOVA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"TECHNOVA_DB_HOST"`
	LegacyPort     int    `envconfig:"TECHNOVA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"TECHNOVA_DB_USER"`
	LegacyPassword string `envconfig:"TECHNOVA_DB_PASSWORD"`
	LegacyName     string `envconfig:"TECHNOVA_DB_NAME"`
	LegacySSLMode  string `envconfig:"TECHNOVA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TECHNOVA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TECHNOVA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TECHNOVA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TECHNOVA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TECHNOVA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"TECHNOVA_REDIS_ADDR"`
	Password     string        `envconfig:"TECHNOVA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TECHNOVA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TECHNOVA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TECHNOVA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TECHNOVA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TECHNOVA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"TECHNOVA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"TECHNOVA_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"TECHNOVA_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"TECHNOVA_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"TECHNOVA_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"TECHNOVA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"TECHNOVA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"TECHNOVA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"TECHNOVA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"TECHNOVA_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"TECHNOVA_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"TECHNOVA_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"TECHNOVA_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"TECHNOVA_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"TECHNOVA_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"TECHNOVA_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// SessionConfig governs the anonymous shopper slots holding cart and
// comparison state.
type SessionConfig struct {
	CartTTL       time.Duration `envconfig:"TECHNOVA_SESSION_CART_TTL" default:"720h"`
	ComparisonTTL time.Duration `envconfig:"TECHNOVA_SESSION_COMPARISON_TTL" default:"720h"`
}

// CheckoutConfig carries the pricing policy applied when quoting an order.
// Amounts are VND.
type CheckoutConfig struct {
	TaxRate               string `envconfig:"TECHNOVA_CHECKOUT_TAX_RATE" default:"0.1"`
	ShippingFee           int64  `envconfig:"TECHNOVA_CHECKOUT_SHIPPING_FEE" default:"30000"`
	FreeShippingThreshold int64  `envconfig:"TECHNOVA_CHECKOUT_FREE_SHIPPING_THRESHOLD" default:"5000000"`
}

type CatalogConfig struct {
	MaxPrice int64 `envconfig:"TECHNOVA_CATALOG_MAX_PRICE" default:"100000000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"TECHNOVA_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"TECHNOVA_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID       string `envconfig:"TECHNOVA_GCP_PROJECT_ID"`
	CredentialsJSON string `envconfig:"TECHNOVA_GCP_CREDENTIALS_JSON"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"TECHNOVA_PUBSUB_ORDERS_TOPIC" default:"tn-order-events"`
	OrdersSubscription string `envconfig:"TECHNOVA_PUBSUB_ORDERS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"TECHNOVA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"TECHNOVA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"TECHNOVA_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
