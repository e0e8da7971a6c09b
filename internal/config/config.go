package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Auth      AuthConfig
	Session   SessionConfig
	Dashboard DashboardConfig
	Locale    LocaleConfig
	Metrics   MetricsConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type AuthConfig struct {
	JWTSecret  string
	Issuer     string
	TokenTTL   time.Duration
	BcryptCost int
}

type SessionConfig struct {
	Store         string
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
}

type DashboardConfig struct {
	TerminalRemovalDelay time.Duration
}

type LocaleConfig struct {
	TimeZone string
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Load reads configuration from the environment, an optional .env file in the
// working directory and, when path is not empty, a config file.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", "10s")
	v.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	v.SetDefault("SERVER_IDLE_TIMEOUT", "30s")
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 3306)
	v.SetDefault("DB_USER", "oticas")
	v.SetDefault("DB_PASSWORD", "secret")
	v.SetDefault("DB_NAME", "oticas")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "data/oticas.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_ISSUER", "oticas")
	v.SetDefault("AUTH_TOKEN_TTL", "12h")
	v.SetDefault("AUTH_BCRYPT_COST", 0)
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("SESSION_REDIS_URL", "")
	v.SetDefault("SESSION_REDIS_HOST", "127.0.0.1")
	v.SetDefault("SESSION_REDIS_PORT", "6379")
	v.SetDefault("SESSION_REDIS_PASSWORD", "")
	v.SetDefault("SESSION_REDIS_DB", 0)
	v.SetDefault("DASHBOARD_TERMINAL_REMOVAL_DELAY", "500ms")
	v.SetDefault("LOCALE_TIMEZONE", "America/Sao_Paulo")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_NAMESPACE", "oticas")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			Path:            v.GetString("DB_PATH"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Auth: AuthConfig{
			JWTSecret:  v.GetString("AUTH_JWT_SECRET"),
			Issuer:     v.GetString("AUTH_ISSUER"),
			TokenTTL:   v.GetDuration("AUTH_TOKEN_TTL"),
			BcryptCost: v.GetInt("AUTH_BCRYPT_COST"),
		},
		Session: SessionConfig{
			Store:         strings.ToLower(v.GetString("SESSION_STORE")),
			RedisURL:      v.GetString("SESSION_REDIS_URL"),
			RedisHost:     v.GetString("SESSION_REDIS_HOST"),
			RedisPort:     v.GetString("SESSION_REDIS_PORT"),
			RedisPassword: v.GetString("SESSION_REDIS_PASSWORD"),
			RedisDB:       v.GetInt("SESSION_REDIS_DB"),
		},
		Dashboard: DashboardConfig{
			TerminalRemovalDelay: v.GetDuration("DASHBOARD_TERMINAL_REMOVAL_DELAY"),
		},
		Locale: LocaleConfig{
			TimeZone: v.GetString("LOCALE_TIMEZONE"),
		},
		Metrics: MetricsConfig{
			Enabled:   v.GetBool("METRICS_ENABLED"),
			Namespace: v.GetString("METRICS_NAMESPACE"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	if c.Dashboard.TerminalRemovalDelay < 0 {
		return fmt.Errorf("DASHBOARD_TERMINAL_REMOVAL_DELAY must not be negative")
	}
	if _, err := time.LoadLocation(c.Locale.TimeZone); err != nil {
		return fmt.Errorf("invalid LOCALE_TIMEZONE %q: %w", c.Locale.TimeZone, err)
	}
	return nil
}

// Location resolves Locale.TimeZone; Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Locale.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}
