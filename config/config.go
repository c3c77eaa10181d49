package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Server   ServerConfig   `toml:"server"`
	Price    PriceConfig    `toml:"price"`
	Database DatabaseConfig `toml:"database"`
}

type AppConfig struct {
	Environment string `toml:"environment"` // "development" or "production"
	LogLevel    string `toml:"log_level"`
}

type ServerConfig struct {
	Host            string   `toml:"host"`
	Port            string   `toml:"port"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type PriceConfig struct {
	Provider       string   `toml:"provider"` // "coincap" or "mock"
	BaseURL        string   `toml:"base_url"`
	APIKey         string   `toml:"api_key"`
	RequestTimeout Duration `toml:"request_timeout"`
	RateLimitRPS   int      `toml:"rate_limit_rps"`
	CacheTTL       Duration `toml:"cache_ttl"`
	CatalogTTL     Duration `toml:"catalog_ttl"`
	SyncSchedule   string   `toml:"sync_schedule"` // cron with seconds; empty disables
}

type DatabaseConfig struct {
	Driver string `toml:"driver"` // "sqlite" or "memory"
	Path   string `toml:"path"`
}

// Duration reads "15s" style strings from TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			Environment: "development",
			LogLevel:    "info",
		},
		Server: ServerConfig{
			Host:            "",
			Port:            "8080",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			IdleTimeout:     Duration(60 * time.Second),
			ShutdownTimeout: Duration(30 * time.Second),
		},
		Price: PriceConfig{
			Provider:       "coincap",
			BaseURL:        "https://api.coincap.io/v2",
			RequestTimeout: Duration(10 * time.Second),
			RateLimitRPS:   5,
			CacheTTL:       Duration(60 * time.Second),
			CatalogTTL:     Duration(24 * time.Hour),
			SyncSchedule:   "0 30 0 * * *",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "data/portfolio.db",
		},
	}
}

// Load builds the configuration from defaults, then each TOML file in order
// (missing files are skipped), then environment variables.
func Load(paths ...string) (*Config, error) {
	cfg := Default()

	for _, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.App.Environment = getEnv("APP_ENV", cfg.App.Environment)
	cfg.App.LogLevel = getEnv("LOG_LEVEL", cfg.App.LogLevel)

	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("SERVER_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = Duration(getDurationEnv("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout.Std()))
	cfg.Server.WriteTimeout = Duration(getDurationEnv("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout.Std()))
	cfg.Server.IdleTimeout = Duration(getDurationEnv("SERVER_IDLE_TIMEOUT", cfg.Server.IdleTimeout.Std()))
	cfg.Server.ShutdownTimeout = Duration(getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout.Std()))

	cfg.Price.Provider = getEnv("PRICE_PROVIDER", cfg.Price.Provider)
	cfg.Price.BaseURL = getEnv("COINCAP_BASE_URL", cfg.Price.BaseURL)
	cfg.Price.APIKey = getEnv("COINCAP_API_KEY", cfg.Price.APIKey)
	cfg.Price.RequestTimeout = Duration(getDurationEnv("PRICE_REQUEST_TIMEOUT", cfg.Price.RequestTimeout.Std()))
	cfg.Price.RateLimitRPS = getIntEnv("PRICE_RATE_LIMIT_RPS", cfg.Price.RateLimitRPS)
	cfg.Price.CacheTTL = Duration(getDurationEnv("PRICE_CACHE_TTL", cfg.Price.CacheTTL.Std()))
	cfg.Price.CatalogTTL = Duration(getDurationEnv("PRICE_CATALOG_TTL", cfg.Price.CatalogTTL.Std()))
	if v, ok := os.LookupEnv("PRICE_SYNC_SCHEDULE"); ok {
		cfg.Price.SyncSchedule = v
	}

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Path = getEnv("DB_PATH", cfg.Database.Path)
}

// Validate rejects settings the application cannot start with.
func (c *Config) Validate() error {
	switch c.Price.Provider {
	case "coincap", "mock":
	default:
		return fmt.Errorf("invalid price provider %q: want coincap or mock", c.Price.Provider)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid database driver %q: want sqlite or memory", c.Database.Driver)
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}

	if c.Price.RateLimitRPS < 0 {
		return fmt.Errorf("invalid rate limit %d", c.Price.RateLimitRPS)
	}

	return nil
}

// IsDevelopment reports whether logs should use the console encoder.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment != "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
