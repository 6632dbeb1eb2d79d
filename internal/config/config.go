package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/docschema/docschema/internal/schema"
	"github.com/docschema/docschema/internal/storage"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig
	MongoDB     MongoDBConfig
	Redis       RedisConfig
	Keycloak    KeycloakConfig
	RateLimit   RateLimitConfig
	Integration IntegrationConfig
	Validation  ValidationConfig
	SchemaCache SchemaCacheConfig
	MinIO       storage.MinIOConfig
	NATS        NATSConfig
	LogLevel    string
	// AllowInsecureToken accepts unsigned bearer tokens. Local testing only.
	AllowInsecureToken bool
}

type ServerConfig struct {
	Port         string
	Host         string
	Environment  string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MongoDBConfig configures persistence. An empty URI selects in-memory repositories.
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port, or "" when Redis is not configured.
func (r RedisConfig) Addr() string {
	if r.Host == "" {
		return ""
	}
	return r.Host + ":" + r.Port
}

type KeycloakConfig struct {
	URL      string
	Realm    string
	ClientID string
}

// Issuer returns the realm issuer URL, or "" when Keycloak is not configured.
func (k KeycloakConfig) Issuer() string {
	if k.URL == "" || k.Realm == "" {
		return ""
	}
	return k.URL + "/realms/" + k.Realm
}

type RateLimitConfig struct {
	Enabled  bool
	RPS      float64
	Burst    int
	UseRedis bool
	Window   time.Duration
}

// IntegrationConfig holds the workspace credentials used to sign integration tokens.
type IntegrationConfig struct {
	WorkspaceKey    string
	WorkspaceSecret string
	TokenTTL        time.Duration
}

type ValidationConfig struct {
	Mode schema.Mode
}

type SchemaCacheConfig struct {
	TTL    time.Duration
	Prefix string
}

type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// LoadConfig loads configuration from environment variables and .env file
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("MONGODB_DATABASE", "docschema")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_USE_REDIS", false)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)
	v.SetDefault("INTEGRATION_TOKEN_TTL", 7200)
	v.SetDefault("VALIDATION_MODE", string(schema.ModeLenient))
	v.SetDefault("SCHEMA_CACHE_TTL", 300)
	v.SetDefault("SCHEMA_CACHE_PREFIX", "schema:")
	v.SetDefault("MINIO_BUCKET", "docschema")
	v.SetDefault("MINIO_URL_EXPIRY", 900)
	v.SetDefault("NATS_SUBJECT_PREFIX", "docschema")
	v.SetDefault("LOG_LEVEL", "info")

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetString("SERVER_PORT"),
			Host:         v.GetString("SERVER_HOST"),
			Environment:  v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Keycloak: KeycloakConfig{
			URL:      v.GetString("KEYCLOAK_URL"),
			Realm:    v.GetString("KEYCLOAK_REALM"),
			ClientID: v.GetString("KEYCLOAK_CLIENT_ID"),
		},
		RateLimit: RateLimitConfig{
			Enabled:  v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:      v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:    v.GetInt("RATE_LIMIT_BURST"),
			UseRedis: v.GetBool("RATE_LIMIT_USE_REDIS"),
			Window:   time.Duration(v.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Integration: IntegrationConfig{
			WorkspaceKey:    v.GetString("INTEGRATION_APP_WORKSPACE_KEY"),
			WorkspaceSecret: os.Getenv("INTEGRATION_APP_WORKSPACE_SECRET"),
			TokenTTL:        time.Duration(v.GetInt("INTEGRATION_TOKEN_TTL")) * time.Second,
		},
		SchemaCache: SchemaCacheConfig{
			TTL:    time.Duration(v.GetInt("SCHEMA_CACHE_TTL")) * time.Second,
			Prefix: v.GetString("SCHEMA_CACHE_PREFIX"),
		},
		MinIO: storage.MinIOConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			Region:    v.GetString("MINIO_REGION"),
			URLExpiry: time.Duration(v.GetInt("MINIO_URL_EXPIRY")) * time.Second,
		},
		NATS: NATSConfig{
			URL:           v.GetString("NATS_URL"),
			SubjectPrefix: v.GetString("NATS_SUBJECT_PREFIX"),
		},
		LogLevel:           v.GetString("LOG_LEVEL"),
		AllowInsecureToken: v.GetBool("ALLOW_INSECURE_TOKEN"),
	}

	mode, err := schema.ParseMode(v.GetString("VALIDATION_MODE"))
	if err != nil {
		return nil, err
	}
	cfg.Validation.Mode = mode

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail later at request time.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT must not be empty"))
	}
	if _, err := schema.ParseMode(string(c.Validation.Mode)); err != nil {
		errs = append(errs, err)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RPS <= 0 || c.RateLimit.Burst < 0) {
		errs = append(errs, fmt.Errorf("rate limit needs RATE_LIMIT_RPS > 0 and RATE_LIMIT_BURST >= 0, got %v/%d", c.RateLimit.RPS, c.RateLimit.Burst))
	}
	if c.RateLimit.UseRedis && c.Redis.Addr() == "" {
		errs = append(errs, errors.New("RATE_LIMIT_USE_REDIS requires REDIS_HOST"))
	}
	if c.MongoDB.URI != "" && c.MongoDB.Database == "" {
		errs = append(errs, errors.New("MONGODB_DATABASE must be set with MONGODB_URI"))
	}
	if c.AllowInsecureToken && c.Server.Environment == "production" {
		errs = append(errs, errors.New("ALLOW_INSECURE_TOKEN is not allowed in production"))
	}
	return errors.Join(errs...)
}
