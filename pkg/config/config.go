package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	DBHost        string `mapstructure:"DB_HOST"`
	DBPort        int    `mapstructure:"DB_PORT"`
	DBUser        string `mapstructure:"DB_USER"`
	DBPassword    string `mapstructure:"DB_PASSWORD"`
	DBName        string `mapstructure:"DB_NAME"`
	DBAutoMigrate bool   `mapstructure:"DB_AUTO_MIGRATE"`

	UserAgent       string `mapstructure:"CRAWLER_USER_AGENT"`
	TimeoutSeconds  int    `mapstructure:"CRAWLER_TIMEOUT"`
	MaxRetries      int    `mapstructure:"CRAWLER_MAX_RETRIES"`
	RetryDelaySecs  int    `mapstructure:"CRAWLER_RETRY_DELAY"`
	MaxArticles     int    `mapstructure:"MAX_ARTICLES_PER_CATEGORY"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL"`
	DomainsDir      string `mapstructure:"DOMAINS_DIR"`

	RedisEnabled  bool   `mapstructure:"REDIS_ENABLED"`
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     int    `mapstructure:"REDIS_PORT"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	SchedulerTimezone string `mapstructure:"SCHEDULER_TIMEZONE"`
	ServerPort        string `mapstructure:"SERVER_PORT"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	Debug             bool   `mapstructure:"DEBUG"`
}

var defaults = map[string]any{
	"DB_HOST":                   "127.0.0.1",
	"DB_PORT":                   5432,
	"DB_USER":                   "postgres",
	"DB_PASSWORD":               "",
	"DB_NAME":                   "wise_local",
	"DB_AUTO_MIGRATE":           false,
	"CRAWLER_USER_AGENT":        "XwiseNewsCrawler/1.0",
	"CRAWLER_TIMEOUT":           30,
	"CRAWLER_MAX_RETRIES":       3,
	"CRAWLER_RETRY_DELAY":       5,
	"MAX_ARTICLES_PER_CATEGORY": 50,
	"CACHE_TTL":                 7776000, // 90 days
	"DOMAINS_DIR":               "config/domains",
	"REDIS_ENABLED":             true,
	"REDIS_HOST":                "127.0.0.1",
	"REDIS_PORT":                6379,
	"REDIS_DB":                  0,
	"REDIS_PASSWORD":            "",
	"SCHEDULER_TIMEZONE":        "Asia/Ho_Chi_Minh",
	"SERVER_PORT":               "8080",
	"LOG_LEVEL":                 "info",
	"DEBUG":                     false,
}

// Load reads configuration from an optional env file and the environment.
// An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}

	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// A missing env file is fine; production configures purely through the environment.
	if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
		return nil, fmt.Errorf("read env file %s: %w", envFile, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// Validate rejects settings the crawler cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.TimeoutSeconds <= 0 {
		errs = append(errs, fmt.Errorf("CRAWLER_TIMEOUT must be positive, got %d", c.TimeoutSeconds))
	}
	if c.MaxRetries <= 0 {
		errs = append(errs, fmt.Errorf("CRAWLER_MAX_RETRIES must be positive, got %d", c.MaxRetries))
	}
	if c.RetryDelaySecs < 0 {
		errs = append(errs, fmt.Errorf("CRAWLER_RETRY_DELAY must not be negative, got %d", c.RetryDelaySecs))
	}
	if c.MaxArticles <= 0 {
		errs = append(errs, fmt.Errorf("MAX_ARTICLES_PER_CATEGORY must be positive, got %d", c.MaxArticles))
	}
	if c.CacheTTLSeconds <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL must be positive, got %d", c.CacheTTLSeconds))
	}
	if _, err := time.LoadLocation(c.SchedulerTimezone); err != nil {
		errs = append(errs, fmt.Errorf("SCHEDULER_TIMEZONE: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) Timeout() time.Duration    { return time.Duration(c.TimeoutSeconds) * time.Second }
func (c *Config) RetryDelay() time.Duration { return time.Duration(c.RetryDelaySecs) * time.Second }
func (c *Config) CacheTTL() time.Duration   { return time.Duration(c.CacheTTLSeconds) * time.Second }

// PostgresURL builds the pgx connection string.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + strconv.Itoa(c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + strconv.Itoa(c.RedisPort)
}

// Location returns the scheduler time zone; Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.SchedulerTimezone)
	if err != nil {
		return time.Local
	}
	return loc
}
