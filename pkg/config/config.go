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
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Uploads      UploadsConfig
	Stats        StatsConfig
	Cron         CronConfig
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
	Env          string `envconfig:"PEPTRACKER_APP_ENV" required:"true"`
	Port         string `envconfig:"PEPTRACKER_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PEPTRACKER_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PEPTRACKER_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PEPTRACKER_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"PEPTRACKER_DB_DSN"`
	Driver string `envconfig:"PEPTRACKER_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PEPTRACKER_DB_HOST"`
	LegacyPort     int    `envconfig:"PEPTRACKER_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PEPTRACKER_DB_USER"`
	LegacyPassword string `envconfig:"PEPTRACKER_DB_PASSWORD"`
	LegacyName     string `envconfig:"PEPTRACKER_DB_NAME"`
	LegacySSLMode  string `envconfig:"PEPTRACKER_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PEPTRACKER_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PEPTRACKER_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PEPTRACKER_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PEPTRACKER_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PEPTRACKER_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PEPTRACKER_REDIS_ADDR"`
	Password     string        `envconfig:"PEPTRACKER_REDIS_PASSWORD"`
	DB           int           `envconfig:"PEPTRACKER_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PEPTRACKER_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PEPTRACKER_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PEPTRACKER_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PEPTRACKER_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PEPTRACKER_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"PEPTRACKER_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"PEPTRACKER_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"PEPTRACKER_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PEPTRACKER_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PEPTRACKER_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PEPTRACKER_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PEPTRACKER_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PEPTRACKER_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PEPTRACKER_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PEPTRACKER_AUTO_MIGRATE" default:"false"`
}

type UploadsConfig struct {
	MaxUploadMB int `envconfig:"PEPTRACKER_MAX_UPLOAD_MB" default:"10"`
	MaxRows     int `envconfig:"PEPTRACKER_UPLOAD_MAX_ROWS" default:"5000"`
}

type StatsConfig struct {
	RingSize      int           `envconfig:"PEPTRACKER_STATS_RING_SIZE" default:"256"`
	FlushInterval time.Duration `envconfig:"PEPTRACKER_STATS_FLUSH_INTERVAL" default:"15m"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"PEPTRACKER_CRON_INTERVAL" default:"1h"`
	UploadMaxAgeDays int           `envconfig:"PEPTRACKER_CRON_UPLOAD_MAX_AGE_DAYS" default:"90"`
}

// MaxUploadBytes converts the configured megabyte limit to bytes.
func (u UploadsConfig) MaxUploadBytes() int64 {
	return int64(u.MaxUploadMB) * 1024 * 1024
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
