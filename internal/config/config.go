package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the complete service configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Redis    RedisConfig    `toml:"redis"`
	JWT      JWTConfig      `toml:"jwt"`
	Storage  StorageConfig  `toml:"storage"`
	Access   AccessConfig   `toml:"access"`
	Log      LogConfig      `toml:"log"`
}

type ServerConfig struct {
	Port         string        `toml:"port"`
	Environment  string        `toml:"environment"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
}

type DatabaseConfig struct {
	URL           string `toml:"url"`
	MaxConns      int32  `toml:"max_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type JWTConfig struct {
	Secret     string        `toml:"secret"`
	Issuer     string        `toml:"issuer"`
	TokenTTL   time.Duration `toml:"token_ttl"`
	JWKSURL    string        `toml:"jwks_url"`
	BcryptCost int           `toml:"bcrypt_cost"`
}

type StorageConfig struct {
	Endpoint     string        `toml:"endpoint"`
	AccessKey    string        `toml:"access_key"`
	SecretKey    string        `toml:"secret_key"`
	UseSSL       bool          `toml:"use_ssl"`
	ExportBucket string        `toml:"export_bucket"`
	ExportURLTTL time.Duration `toml:"export_url_ttl"`
}

type AccessConfig struct {
	// DenialMode is "forbidden" or "not_found".
	DenialMode string `toml:"denial_mode"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Environment:  "development",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:      10,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		JWT: JWTConfig{
			Issuer:     "taskhub",
			TokenTTL:   24 * time.Hour,
			BcryptCost: 12,
		},
		Storage: StorageConfig{
			Endpoint:     "localhost:9000",
			AccessKey:    "minioadmin",
			SecretKey:    "minioadmin",
			ExportBucket: "taskhub-exports",
			ExportURLTTL: 15 * time.Minute,
		},
		Access: AccessConfig{DenialMode: "forbidden"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if any), then environment variables. A .env file in the working
// directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Environment = getEnv("ENVIRONMENT", c.Server.Environment)
	c.Server.ReadTimeout = getDurationEnv("SERVER_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getDurationEnv("SERVER_WRITE_TIMEOUT", c.Server.WriteTimeout)

	c.Database.URL = getEnv("DATABASE_URL", c.Database.URL)
	c.Database.MaxConns = int32(getIntEnv("DATABASE_MAX_CONNS", int(c.Database.MaxConns)))
	c.Database.RunMigrations = getBoolEnv("RUN_MIGRATIONS", c.Database.RunMigrations)

	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getIntEnv("REDIS_DB", c.Redis.DB)

	c.JWT.Secret = getEnv("JWT_SECRET", c.JWT.Secret)
	c.JWT.Issuer = getEnv("JWT_ISSUER", c.JWT.Issuer)
	c.JWT.TokenTTL = getDurationEnv("JWT_TOKEN_TTL", c.JWT.TokenTTL)
	c.JWT.JWKSURL = getEnv("JWKS_URL", c.JWT.JWKSURL)
	c.JWT.BcryptCost = getIntEnv("BCRYPT_COST", c.JWT.BcryptCost)

	c.Storage.Endpoint = getEnv("MINIO_ENDPOINT", c.Storage.Endpoint)
	c.Storage.AccessKey = getEnv("MINIO_ACCESS_KEY", c.Storage.AccessKey)
	c.Storage.SecretKey = getEnv("MINIO_SECRET_KEY", c.Storage.SecretKey)
	c.Storage.UseSSL = getBoolEnv("MINIO_USE_SSL", c.Storage.UseSSL)
	c.Storage.ExportBucket = getEnv("EXPORT_BUCKET", c.Storage.ExportBucket)
	c.Storage.ExportURLTTL = getDurationEnv("EXPORT_URL_TTL", c.Storage.ExportURLTTL)

	c.Access.DenialMode = getEnv("ACCESS_DENIAL_MODE", c.Access.DenialMode)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.JWT.TokenTTL <= 0 {
		errs = append(errs, errors.New("JWT token TTL must be positive"))
	}
	switch strings.ToLower(c.Access.DenialMode) {
	case "forbidden", "not_found":
	default:
		errs = append(errs, fmt.Errorf("ACCESS_DENIAL_MODE must be forbidden or not_found, got %q", c.Access.DenialMode))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
