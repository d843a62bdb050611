package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App         AppConfig
	Log         LogConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	HTTP        HTTPConfig
	Marketplace MarketplaceConfig
	Sync        SyncConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// DatabaseConfig holds database connection settings
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

// DSN builds the Postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL builds the Postgres URL used by the migration tooling
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// Addr returns the host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// MarketplaceConfig holds the fulfillment platform API settings
type MarketplaceConfig struct {
	BaseURL        string
	TimeoutSeconds int
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// SyncConfig holds sync engine settings
type SyncConfig struct {
	BatchSize               int
	IncrementalLookbackDays int
	FullLookbackDays        int

	// Scheduler settings for periodic incremental syncs
	SchedulerEnabled  bool
	SchedulerInterval time.Duration

	// Task registry retention
	TaskRetention    time.Duration
	TaskStallAge     time.Duration
	SweepInterval    time.Duration
	LockTTL          time.Duration
}

// Load reads configuration from config files and environment variables.
// Environment variables use the SELLERDESK_ prefix with underscores, e.g.
// SELLERDESK_DATABASE_HOST overrides database.host.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/sellerdesk")

	v.SetEnvPrefix("SELLERDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults + env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks configuration invariants
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.dbname is required")
	}
	if c.Sync.BatchSize < 1 || c.Sync.BatchSize > 1000 {
		return fmt.Errorf("config: sync.batchsize must be in [1,1000], got %d", c.Sync.BatchSize)
	}
	if c.Sync.IncrementalLookbackDays < 1 {
		return fmt.Errorf("config: sync.incrementallookbackdays must be positive")
	}
	if c.Sync.FullLookbackDays < c.Sync.IncrementalLookbackDays {
		return fmt.Errorf("config: sync.fulllookbackdays must be >= incremental lookback")
	}
	if c.Marketplace.BaseURL == "" {
		return fmt.Errorf("config: marketplace.baseurl is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sellerdesk")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "sellerdesk")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxopenconns", 25)
	v.SetDefault("database.maxidleconns", 5)
	v.SetDefault("database.connmaxlifetime", 30)
	v.SetDefault("database.connmaxidletime", 10)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("http.readtimeout", "15s")
	v.SetDefault("http.writetimeout", "30s")
	v.SetDefault("http.idletimeout", "60s")
	v.SetDefault("http.maxheaderbytes", 1<<20)

	v.SetDefault("marketplace.baseurl", "https://api-seller.example.com")
	v.SetDefault("marketplace.timeoutseconds", 30)
	v.SetDefault("marketplace.maxretries", 3)
	v.SetDefault("marketplace.retrybasedelay", "500ms")

	v.SetDefault("sync.batchsize", 100)
	v.SetDefault("sync.incrementallookbackdays", 7)
	v.SetDefault("sync.fulllookbackdays", 360)
	v.SetDefault("sync.schedulerenabled", true)
	v.SetDefault("sync.schedulerinterval", "15m")
	v.SetDefault("sync.taskretention", "1h")
	v.SetDefault("sync.taskstallage", "6h")
	v.SetDefault("sync.sweepinterval", "5m")
	v.SetDefault("sync.lockttl", "30m")
}
