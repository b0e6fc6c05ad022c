package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultServerPort      = 8060
	defaultServerTimeout   = 30
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5
	defaultRedisAddress    = "localhost:6379"
	defaultFetchTimeout    = 30
	defaultLockTTL         = 10
	defaultSitemapDir      = "public"
	defaultSitemapFile     = "sitemap.xml"
)

type Config struct {
	Debug     bool            `env:"APP_DEBUG" yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Sitemap   SitemapConfig   `yaml:"sitemap"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"`
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// RedisConfig holds Redis connection configuration for the run lock and
// generation events. The whole block is optional.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
}

type AuthConfig struct {
	JWTSecret string `env:"AUTH_JWT_SECRET" yaml:"jwt_secret"`
}

// SitemapConfig holds the generation settings: where URLs point, where the
// artifact is published, and how the published copy is fetched back for the
// discrepancy report.
type SitemapConfig struct {
	// BaseURL is the absolute site origin prepended to every path,
	// e.g. "https://mastroianni.app".
	BaseURL string `env:"SITEMAP_BASE_URL" yaml:"base_url"`
	// PublicDir is the directory the sitemap artifact is published to.
	PublicDir string `env:"SITEMAP_PUBLIC_DIR" yaml:"public_dir"`
	// FileName is the canonical artifact name inside PublicDir.
	FileName string `yaml:"file_name"`
	// PublishedURL is where the published sitemap is fetched from for the
	// discrepancy report. Defaults to BaseURL + "/sitemap.xml".
	PublishedURL string `env:"SITEMAP_PUBLISHED_URL" yaml:"published_url"`
	// FetchTimeout bounds the discrepancy-report HTTP fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// LockTTL bounds how long a generation run may hold the Redis run lock.
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// SchedulerConfig enables periodic generation runs.
type SchedulerConfig struct {
	Enabled bool `env:"SCHEDULER_ENABLED" yaml:"enabled"`
	// Spec is a standard cron expression, e.g. "0 3 * * *".
	Spec string `env:"SCHEDULER_SPEC" yaml:"spec"`
}

func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Port <= 0 {
		return errors.New("database.port is required and must be positive")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Auth.JWTSecret == "" {
		// An empty HMAC secret would verify any token signed with the empty
		// key, leaving the admin endpoints open.
		return errors.New("auth.jwt_secret is required")
	}
	if c.Sitemap.BaseURL == "" {
		return errors.New("sitemap.base_url is required")
	}
	if strings.HasSuffix(c.Sitemap.BaseURL, "/") {
		return errors.New("sitemap.base_url must not end with a slash")
	}
	if c.Scheduler.Enabled && c.Scheduler.Spec == "" {
		return errors.New("scheduler.spec is required when scheduler is enabled")
	}
	return nil
}

func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	setDefaults(cfg)

	// Re-apply env overrides after defaults (env always wins)
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout * time.Second
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime * time.Minute
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.Sitemap.PublicDir == "" {
		cfg.Sitemap.PublicDir = defaultSitemapDir
	}
	if cfg.Sitemap.FileName == "" {
		cfg.Sitemap.FileName = defaultSitemapFile
	}
	if cfg.Sitemap.PublishedURL == "" && cfg.Sitemap.BaseURL != "" {
		cfg.Sitemap.PublishedURL = cfg.Sitemap.BaseURL + "/sitemap.xml"
	}
	if cfg.Sitemap.FetchTimeout == 0 {
		cfg.Sitemap.FetchTimeout = defaultFetchTimeout * time.Second
	}
	if cfg.Sitemap.LockTTL == 0 {
		cfg.Sitemap.LockTTL = defaultLockTTL * time.Minute
	}
}
