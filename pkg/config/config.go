package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	Routing      RoutingConfig
	Pricing      PricingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
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
	Env          string `envconfig:"ARMORY_APP_ENV" required:"true"`
	Port         string `envconfig:"ARMORY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ARMORY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ARMORY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"ARMORY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"ARMORY_DB_DSN"`
	Driver string `envconfig:"ARMORY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ARMORY_DB_HOST"`
	LegacyPort     int    `envconfig:"ARMORY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ARMORY_DB_USER"`
	LegacyPassword string `envconfig:"ARMORY_DB_PASSWORD"`
	LegacyName     string `envconfig:"ARMORY_DB_NAME"`
	LegacySSLMode  string `envconfig:"ARMORY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ARMORY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ARMORY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ARMORY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ARMORY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ARMORY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ARMORY_REDIS_ADDR"`
	Password     string        `envconfig:"ARMORY_REDIS_PASSWORD"`
	DB           int           `envconfig:"ARMORY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ARMORY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ARMORY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ARMORY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ARMORY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ARMORY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ARMORY_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ARMORY_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ARMORY_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"ARMORY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"ARMORY_AUTO_MIGRATE" default:"false"`
}

// RoutingConfig carries the fulfillment router's manufacturer sets.
// DropToFFLAllowlist names manufacturers whose distribution agreement permits
// shipping directly to a dealer; WarehouseOnly names manufacturers the
// distributor restricts to the warehouse-only shipping account.
type RoutingConfig struct {
	DropToFFLAllowlist []string `envconfig:"ARMORY_ROUTING_DROP_TO_FFL_ALLOWLIST"`
	WarehouseOnly      []string `envconfig:"ARMORY_ROUTING_WAREHOUSE_ONLY"`
}

type PricingConfig struct {
	RuleCacheTTL time.Duration `envconfig:"ARMORY_PRICING_RULE_CACHE_TTL" default:"30s"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"ARMORY_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"ARMORY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"ARMORY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	OrdersTopic        string `envconfig:"ARMORY_PUBSUB_ORDERS_TOPIC" default:"armory-order-events"`
	OrdersSubscription string `envconfig:"ARMORY_PUBSUB_ORDERS_SUBSCRIPTION"`
	HoldsTopic         string `envconfig:"ARMORY_PUBSUB_HOLDS_TOPIC" default:"armory-hold-events"`
	HoldsSubscription  string `envconfig:"ARMORY_PUBSUB_HOLDS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"ARMORY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"ARMORY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"ARMORY_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
