package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Legacy    LegacyConfig
	JWT       JWTConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Quota     QuotaConfig
	Reconcile ReconcileConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds relational database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings for the tier cache
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	// TierCacheTTL bounds how stale a cached tier resolution can get
	TierCacheTTL time.Duration
}

// LegacyConfig holds the legacy document store connection settings.
// Only the reconciler reads from this store.
type LegacyConfig struct {
	URI      string
	Database string
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// QuotaConfig holds quota enforcement settings.
//
// UsageWindowDays has no default on purpose: the window length changes
// what every counter row means, so the process refuses to start without
// an explicit value.
type QuotaConfig struct {
	UsageWindowDays int
}

// ReconcileConfig holds settings for the dual-store reconciler
type ReconcileConfig struct {
	// KeepAdminEmail designates the user row factory reset preserves
	KeepAdminEmail string
}

// Load loads configuration from TOML file and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with DMFLOW_ prefix (e.g., DMFLOW_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Missing config file is fine, defaults and env vars carry it
	}

	v.SetEnvPrefix("DMFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:         v.GetString("redis.host"),
			Port:         v.GetInt("redis.port"),
			Password:     v.GetString("redis.password"),
			DB:           v.GetInt("redis.db"),
			TierCacheTTL: v.GetDuration("redis.tier_cache_ttl"),
		},
		Legacy: LegacyConfig{
			URI:      v.GetString("legacy.uri"),
			Database: v.GetString("legacy.database"),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
			Issuer:     v.GetString("jwt.issuer"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
		Quota: QuotaConfig{
			UsageWindowDays: v.GetInt("quota.usage_window_days"),
		},
		Reconcile: ReconcileConfig{
			KeepAdminEmail: v.GetString("reconcile.keep_admin_email"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "dmflow-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "dmflow"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Redis.TierCacheTTL == 0 {
		cfg.Redis.TierCacheTTL = 5 * time.Minute
	}
	if cfg.Legacy.Database == "" {
		cfg.Legacy.Database = "dmflow_legacy"
	}
	if cfg.JWT.Expiration == 0 {
		cfg.JWT.Expiration = 24 * time.Hour
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "dmflow-backend"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	// Quota.UsageWindowDays deliberately has no default; see validate.
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Quota.UsageWindowDays <= 0 {
		return fmt.Errorf("quota.usage_window_days is required and must be positive (got %d)", c.Quota.UsageWindowDays)
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.JWT.Secret == "" {
			return fmt.Errorf("jwt.secret is required in production")
		}
		if len(c.JWT.Secret) < 32 {
			return fmt.Errorf("jwt.secret must be at least 32 characters in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the host:port address for the Redis client
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
