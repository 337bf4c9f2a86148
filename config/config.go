package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	JWT        JWTConfig        `yaml:"jwt"`
	Sessions   SessionConfig    `yaml:"sessions"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Admin      AdminConfig      `yaml:"admin"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int            `yaml:"port"`
	Mode            string         `yaml:"mode"`
	Timezone        string         `yaml:"timezone"`
	Location        *time.Location `yaml:"-"`
	RateLimitPerSec float64        `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int            `yaml:"rate_limit_burst"`
	CacheTTLSeconds int            `yaml:"cache_ttl_seconds"`
	AllowedOrigins  []string       `yaml:"allowed_origins"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"`
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret           string        `yaml:"secret"`
	Issuer           string        `yaml:"issuer"`
	AccessTTLMinutes int           `yaml:"access_ttl_minutes"`
	RefreshTTLHours  int           `yaml:"refresh_ttl_hours"`
	AccessTTL        time.Duration `yaml:"-"`
	RefreshTTL       time.Duration `yaml:"-"`
	CookieSecure     bool          `yaml:"cookie_secure"`
}

// SessionConfig selects where refresh sessions are kept: "memory" or "redis".
type SessionConfig struct {
	Backend string      `yaml:"backend"`
	Redis   RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AdminConfig describes the administrator account seeded at startup.
type AdminConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// Load reads the configuration from the given path, applies environment
// overrides and then fills defaults and validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Timezone == "" {
		cfg.Server.Timezone = "Local"
	}
	loc, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		return fmt.Errorf("invalid server.timezone %q: %w", cfg.Server.Timezone, err)
	}
	cfg.Server.Location = loc
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("unsupported database.driver %q", cfg.Database.Driver)
	}

	if cfg.JWT.Secret == "" {
		return errors.New("jwt.secret must be set")
	}
	if cfg.JWT.Issuer == "" {
		cfg.JWT.Issuer = "gym-checkin-backend"
	}
	if cfg.JWT.AccessTTLMinutes <= 0 {
		cfg.JWT.AccessTTLMinutes = 10
	}
	if cfg.JWT.RefreshTTLHours <= 0 {
		cfg.JWT.RefreshTTLHours = 7 * 24
	}
	cfg.JWT.AccessTTL = time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute
	cfg.JWT.RefreshTTL = time.Duration(cfg.JWT.RefreshTTLHours) * time.Hour

	switch cfg.Sessions.Backend {
	case "":
		cfg.Sessions.Backend = "memory"
	case "memory":
	case "redis":
		if cfg.Sessions.Redis.Addr == "" {
			return errors.New("sessions.redis.addr must be set for the redis backend")
		}
	default:
		return fmt.Errorf("unsupported sessions.backend %q", cfg.Sessions.Backend)
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Admin.Name == "" {
		cfg.Admin.Name = "Administrator"
	}
	return nil
}

// applyEnv lets deployment secrets live outside the YAML file.
func (cfg *Config) applyEnv() error {
	setString(&cfg.Database.DSN, "DATABASE_DSN")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.JWT.Secret, "JWT_SECRET")
	setString(&cfg.Sessions.Redis.Addr, "REDIS_ADDR")
	setString(&cfg.Sessions.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Admin.Email, "ADMIN_EMAIL")
	setString(&cfg.Admin.Password, "ADMIN_PASSWORD")
	setString(&cfg.Push.PublicKey, "VAPID_PUBLIC_KEY")
	setString(&cfg.Push.PrivateKey, "VAPID_PRIVATE_KEY")

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
