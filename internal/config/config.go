package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	EnvSandbox    = "sandbox"
	EnvProduction = "production"
)

var (
	ErrCredentials = errors.New("exactly one APNs credential mode must be configured")
	ErrInvalid     = errors.New("invalid configuration")
)

// Config holds the relay configuration loaded from the environment.
type Config struct {
	Port     string
	LogLevel string

	WebhookSecret     string
	StrictSignatures  bool
	TrackedExtensions string
	BodyLimit         int

	APNsBundleID    string
	APNsEnvironment string
	APNsKeyID       string
	APNsTeamID      string
	APNsAuthKeyPath string
	APNsCertPath    string
	APNsCertPass    string

	PushTimeout         time.Duration
	DispatchConcurrency int
	DispatchWait        time.Duration

	RegistryBackend string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	RedisKey        string
	SQLitePath      string
}

// Load reads an optional .env file, then the process environment, and
// validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		WebhookSecret:     getEnv("GITHUB_WEBHOOK_SECRET", ""),
		StrictSignatures:  getEnvAsBool("STRICT_SIGNATURES", true),
		TrackedExtensions: getEnv("TRACKED_EXTENSIONS", ".md"),
		BodyLimit:         getEnvAsInt("BODY_LIMIT", 1<<20),

		APNsBundleID:    getEnv("APNS_BUNDLE_ID", ""),
		APNsEnvironment: strings.ToLower(getEnv("APNS_ENVIRONMENT", EnvSandbox)),
		APNsKeyID:       getEnv("APNS_KEY_ID", ""),
		APNsTeamID:      getEnv("APNS_TEAM_ID", ""),
		APNsAuthKeyPath: getEnv("APNS_AUTH_KEY_PATH", ""),
		APNsCertPath:    getEnv("APNS_CERT_PATH", ""),
		APNsCertPass:    getEnv("APNS_CERT_PASSWORD", ""),

		PushTimeout:         getEnvAsDuration("PUSH_TIMEOUT", 5*time.Second),
		DispatchConcurrency: getEnvAsInt("DISPATCH_CONCURRENCY", 8),
		DispatchWait:        getEnvAsDuration("DISPATCH_WAIT", 8*time.Second),

		RegistryBackend: strings.ToLower(getEnv("REGISTRY_BACKEND", BackendMemory)),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvAsInt("REDIS_DB", 0),
		RedisKey:        getEnv("REDIS_KEY", "devices:tokens"),
		SQLitePath:      getEnv("SQLITE_PATH", "./devices.db"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// UsesTokenAuth reports whether APNs requests are signed with a .p8 key
// rather than a client certificate.
func (c *Config) UsesTokenAuth() bool {
	return c.APNsKeyID != "" || c.APNsTeamID != "" || c.APNsAuthKeyPath != ""
}

func (c *Config) Production() bool {
	return c.APNsEnvironment == EnvProduction
}

func (c *Config) validate() error {
	var missing []string
	if c.APNsBundleID == "" {
		missing = append(missing, "APNS_BUNDLE_ID")
	}
	if c.StrictSignatures && c.WebhookSecret == "" {
		missing = append(missing, "GITHUB_WEBHOOK_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}

	token := c.UsesTokenAuth()
	cert := c.APNsCertPath != ""
	switch {
	case token && cert, !token && !cert:
		return ErrCredentials
	case token && (c.APNsKeyID == "" || c.APNsTeamID == "" || c.APNsAuthKeyPath == ""):
		return fmt.Errorf("%w: APNS_KEY_ID, APNS_TEAM_ID and APNS_AUTH_KEY_PATH go together", ErrCredentials)
	}

	switch c.APNsEnvironment {
	case EnvSandbox, EnvProduction:
	default:
		return fmt.Errorf("%w: APNS_ENVIRONMENT %q", ErrInvalid, c.APNsEnvironment)
	}
	switch c.RegistryBackend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("%w: REGISTRY_BACKEND %q", ErrInvalid, c.RegistryBackend)
	}
	if c.PushTimeout <= 0 || c.DispatchWait <= 0 {
		return fmt.Errorf("%w: PUSH_TIMEOUT and DISPATCH_WAIT must be positive", ErrInvalid)
	}
	if c.DispatchConcurrency <= 0 {
		c.DispatchConcurrency = 1
	}
	return nil
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func getEnvAsInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			return def
		}
		return i
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return def
		}
		return b
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			return def
		}
		return d
	}
	return def
}
