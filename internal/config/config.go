package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultJWTSecret = "change-me"

type Config struct {
	AppEnv        string `yaml:"app_env"`
	AppPort       string `yaml:"app_port"`
	DBDSN         string `yaml:"db_dsn"`
	JWTSecret     string `yaml:"jwt_secret"`
	JWTExpiresMin int    `yaml:"jwt_expires_min"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	GoogleClientID  string `yaml:"google_client_id"`
	GoogleSecret    string `yaml:"google_client_secret"`
	GoogleRedirect  string `yaml:"google_redirect_url"`
	FrontendBaseURL string `yaml:"frontend_base_url"`
	CORSOrigins     string `yaml:"cors_origins"`

	MaintenanceCacheTTL time.Duration `yaml:"maintenance_cache_ttl"`
	AuthRatePerSec      float64       `yaml:"auth_rate_per_sec"`
	AuthRateBurst       int           `yaml:"auth_rate_burst"`
	ResetTokenTTL       time.Duration `yaml:"reset_token_ttl"`
	CleanupSchedule     string        `yaml:"cleanup_schedule"`
}

// Load reads the environment and then overlays the YAML file at path, if any.
func Load(path string) (*Config, error) {
	cfg := &Config{
		AppEnv:              get("APP_ENV", "development"),
		AppPort:             get("APP_PORT", "8080"),
		DBDSN:               get("DB_DSN", ""),
		JWTSecret:           get("JWT_SECRET", defaultJWTSecret),
		JWTExpiresMin:       getInt("JWT_EXPIRES_MIN", 10080),
		RedisAddr:           get("REDIS_ADDR", ""),
		RedisPassword:       get("REDIS_PASSWORD", ""),
		RedisDB:             getInt("REDIS_DB", 0),
		GoogleClientID:      get("GOOGLE_CLIENT_ID", ""),
		GoogleSecret:        get("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirect:      get("GOOGLE_REDIRECT_URL", ""),
		FrontendBaseURL:     get("FRONTEND_BASE_URL", "http://localhost:3000"),
		CORSOrigins:         get("CORS_ORIGINS", "http://127.0.0.1:3000, http://localhost:3000"),
		MaintenanceCacheTTL: getDuration("MAINTENANCE_CACHE_TTL", 30*time.Second),
		AuthRatePerSec:      getFloat("AUTH_RATE_PER_SEC", 5),
		AuthRateBurst:       getInt("AUTH_RATE_BURST", 10),
		ResetTokenTTL:       getDuration("RESET_TOKEN_TTL", 10*time.Minute),
		CleanupSchedule:     get("CLEANUP_SCHEDULE", "@every 1h"),
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleSecret != "" && c.GoogleRedirect != ""
}

func (c *Config) Validate() error {
	var errs []error
	if c.DBDSN == "" {
		errs = append(errs, errors.New("DB_DSN is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.JWTSecret == defaultJWTSecret && c.AppEnv != "development" && c.AppEnv != "test" {
		errs = append(errs, errors.New("JWT_SECRET must be changed outside development"))
	}
	if c.JWTExpiresMin <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_MIN must be positive"))
	}
	if c.MaintenanceCacheTTL <= 0 {
		errs = append(errs, errors.New("MAINTENANCE_CACHE_TTL must be positive"))
	}
	if c.ResetTokenTTL <= 0 {
		errs = append(errs, errors.New("RESET_TOKEN_TTL must be positive"))
	}
	if c.AuthRatePerSec <= 0 || c.AuthRateBurst <= 0 {
		errs = append(errs, errors.New("AUTH_RATE_PER_SEC and AUTH_RATE_BURST must be positive"))
	}
	return errors.Join(errs...)
}

// Origins returns CORSOrigins in the comma separated form fiber's cors expects.
func (c *Config) Origins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func getFloat(k string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil {
		return def
	}
	return f
}

func getDuration(k string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(k))
	if err != nil {
		return def
	}
	return d
}
