package config

import (
	"fmt"
	"time"
)

// Config holds runtime configuration for the onboarding service.
type Config struct {
	AppEnv          string                `mapstructure:"-"`
	HTTP            HTTPConfig            `mapstructure:"http"`
	Logger          LoggerConfig          `mapstructure:"logger"`
	Sentry          SentryConfig          `mapstructure:"sentry"`
	Storage         StorageConfig         `mapstructure:"storage"`
	Redis           RedisConfig           `mapstructure:"redis"`
	Locking         LockingConfig         `mapstructure:"locking"`
	Cache           CacheConfig           `mapstructure:"cache"`
	Recommendations RecommendationsConfig `mapstructure:"recommendations"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LoggerConfig struct {
	Level  string        `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string        `mapstructure:"format" validate:"omitempty,oneof=json text"`
	File   LogFileConfig `mapstructure:"file"`
}

// LogFileConfig enables rotated file output next to stdout.
type LogFileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

type StorageConfig struct {
	Driver   string         `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
	PoolSize int    `mapstructure:"pool_size" validate:"gte=0"`
}

type LockingConfig struct {
	Driver string        `mapstructure:"driver" validate:"required,oneof=memory redis"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RecommendationsConfig struct {
	// CatalogPath overrides the embedded catalog when set.
	CatalogPath string `mapstructure:"catalog_path"`
}

// GetDBConnectionString returns PostgreSQL DSN based on config values.
func (c *Config) GetDBConnectionString() string {
	pg := c.Storage.Postgres
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pg.Host,
		pg.Port,
		pg.User,
		pg.Password,
		pg.Name,
		pg.SSLMode,
	)
}

// NeedsRedis reports whether any enabled component depends on Redis.
func (c *Config) NeedsRedis() bool {
	return c.Redis.Enabled || c.Locking.Driver == "redis" || c.Cache.Enabled
}
