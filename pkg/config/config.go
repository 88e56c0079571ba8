package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces every configuration variable.
const EnvPrefix = "coconut"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "COCONUT_DB_DSN"
	EnvDBHost = "COCONUT_DB_HOST"
	EnvDBUser = "COCONUT_DB_USER"
	EnvDBName = "COCONUT_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Estimator    EstimatorConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	// The sqlite flag is a dev shortcut that overrides the driver choice.
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"COCONUT_APP_ENV" required:"true"`
	Port         string `envconfig:"COCONUT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COCONUT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COCONUT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COCONUT_DB_DSN"`
	Driver string `envconfig:"COCONUT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COCONUT_DB_HOST"`
	LegacyPort     int    `envconfig:"COCONUT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COCONUT_DB_USER"`
	LegacyPassword string `envconfig:"COCONUT_DB_PASSWORD"`
	LegacyName     string `envconfig:"COCONUT_DB_NAME"`
	LegacySSLMode  string `envconfig:"COCONUT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COCONUT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COCONUT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COCONUT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COCONUT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COCONUT_REDIS_URL"`
	Address      string        `envconfig:"COCONUT_REDIS_ADDR"`
	Password     string        `envconfig:"COCONUT_REDIS_PASSWORD"`
	DB           int           `envconfig:"COCONUT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COCONUT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COCONUT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COCONUT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COCONUT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COCONUT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// EstimatorConfig tunes the delivery-date estimation engine and the
// debounced recompute path around it.
type EstimatorConfig struct {
	DebounceMS      int           `envconfig:"COCONUT_ESTIMATOR_DEBOUNCE_MS" default:"500"`
	RuleCacheTTL    time.Duration `envconfig:"COCONUT_ESTIMATOR_RULE_CACHE_TTL" default:"5m"`
	DefaultTimezone string        `envconfig:"COCONUT_ESTIMATOR_DEFAULT_TZ" default:""`
}

// Debounce returns the debounce window as a duration.
func (e EstimatorConfig) Debounce() time.Duration {
	if e.DebounceMS <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(e.DebounceMS) * time.Millisecond
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"COCONUT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"COCONUT_AUTO_MIGRATE" default:"false"`
	RuleCache   bool `envconfig:"COCONUT_FEATURE_RULE_CACHE" default:"true"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if strings.EqualFold(db.Driver, "sqlite") {
		db.DSN = "file::memory:?cache=shared"
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
