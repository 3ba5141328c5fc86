package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Contracts ContractsConfig `yaml:"contracts"`
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port           int `yaml:"port"`
	RateLimit      int `yaml:"rate_limit"`       // requests per minute per IP
	LoginRateLimit int `yaml:"login_rate_limit"` // login attempts per minute per client
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
	Password         string `yaml:"password"`
	EmailDomain      string `yaml:"email_domain"`
	LoginDelayMS     int    `yaml:"login_delay_ms"` // negative disables the delay
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite, memory
	Path   string `yaml:"path"`
}

type ContractsConfig struct {
	Source         string      `yaml:"source"` // file, http, minio
	Path           string      `yaml:"path"`
	URL            string      `yaml:"url"`
	TimeoutSeconds int         `yaml:"timeout_seconds"`
	PageSize       int         `yaml:"page_size"`
	Minio          MinioConfig `yaml:"minio"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Object    string `yaml:"object"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type SessionConfig struct {
	MaxClients    int `yaml:"max_clients"`     // in-memory managers kept, 0 = unlimited
	RestoreWaitMS int `yaml:"restore_wait_ms"` // how long the gate waits for a restore
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Storage drivers
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Contract source kinds
const (
	SourceFile  = "file"
	SourceHTTP  = "http"
	SourceMinio = "minio"
)

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads the YAML file at path, applies defaults and CONTRACTSDASH_*
// environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// LoadDotEnv loads .env files into the process environment. Missing files
// are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = 100
	}
	if c.Server.LoginRateLimit == 0 {
		c.Server.LoginRateLimit = 10
	}
	if c.Auth.TokenExpireHours == 0 {
		c.Auth.TokenExpireHours = 24
	}
	if c.Auth.Password == "" {
		c.Auth.Password = "test123"
	}
	if c.Auth.EmailDomain == "" {
		c.Auth.EmailDomain = "contractsdash.com"
	}
	if c.Auth.LoginDelayMS == 0 {
		c.Auth.LoginDelayMS = 1000
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DriverSQLite
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "./data/sessions.db"
	}
	if c.Contracts.Source == "" {
		c.Contracts.Source = SourceFile
	}
	if c.Contracts.Source == SourceFile && c.Contracts.Path == "" {
		c.Contracts.Path = "./data/contracts.json"
	}
	if c.Contracts.TimeoutSeconds == 0 {
		c.Contracts.TimeoutSeconds = 30
	}
	if c.Contracts.PageSize == 0 {
		c.Contracts.PageSize = 10
	}
	if c.Session.MaxClients == 0 {
		c.Session.MaxClients = 1000
	}
	if c.Session.RestoreWaitMS == 0 {
		c.Session.RestoreWaitMS = 2000
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnvInt("CONTRACTSDASH_PORT", c.Server.Port)
	c.Auth.JWTSecret = getEnv("CONTRACTSDASH_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Password = getEnv("CONTRACTSDASH_PASSWORD", c.Auth.Password)
	c.Auth.LoginDelayMS = getEnvInt("CONTRACTSDASH_LOGIN_DELAY_MS", c.Auth.LoginDelayMS)
	c.Storage.Driver = getEnv("CONTRACTSDASH_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Path = getEnv("CONTRACTSDASH_STORAGE_PATH", c.Storage.Path)
	c.Contracts.Source = getEnv("CONTRACTSDASH_CONTRACTS_SOURCE", c.Contracts.Source)
	c.Contracts.Path = getEnv("CONTRACTSDASH_CONTRACTS_PATH", c.Contracts.Path)
	c.Contracts.URL = getEnv("CONTRACTSDASH_CONTRACTS_URL", c.Contracts.URL)
	c.Contracts.Minio.AccessKey = getEnv("CONTRACTSDASH_MINIO_ACCESS_KEY", c.Contracts.Minio.AccessKey)
	c.Contracts.Minio.SecretKey = getEnv("CONTRACTSDASH_MINIO_SECRET_KEY", c.Contracts.Minio.SecretKey)
	c.Log.Level = getEnv("CONTRACTSDASH_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("CONTRACTSDASH_LOG_FORMAT", c.Log.Format)
}

// Validate checks that the configuration can start a server
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret cannot be empty")
	}
	if c.Auth.TokenExpireHours < 0 {
		return fmt.Errorf("auth.token_expire_hours must be positive")
	}

	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path cannot be empty for sqlite")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}

	switch c.Contracts.Source {
	case SourceFile:
		if c.Contracts.Path == "" {
			return fmt.Errorf("contracts.path cannot be empty for file source")
		}
	case SourceHTTP:
		if c.Contracts.URL == "" {
			return fmt.Errorf("contracts.url cannot be empty for http source")
		}
	case SourceMinio:
		m := c.Contracts.Minio
		if m.Endpoint == "" || m.Bucket == "" || m.Object == "" {
			return fmt.Errorf("contracts.minio requires endpoint, bucket and object")
		}
	default:
		return fmt.Errorf("unknown contracts.source %q", c.Contracts.Source)
	}

	if c.Contracts.PageSize < 0 {
		return fmt.Errorf("contracts.page_size must be positive")
	}
	return nil
}

// LoginDelay is the simulated credential check latency
func (a AuthConfig) LoginDelay() time.Duration {
	if a.LoginDelayMS < 0 {
		return 0
	}
	return time.Duration(a.LoginDelayMS) * time.Millisecond
}

// TokenTTL is the lifetime of minted session tokens
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenExpireHours) * time.Hour
}

// RestoreWait bounds how long a gated request waits for a session restore
func (s SessionConfig) RestoreWait() time.Duration {
	return time.Duration(s.RestoreWaitMS) * time.Millisecond
}

// Timeout is the HTTP source client timeout
func (c ContractsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}
