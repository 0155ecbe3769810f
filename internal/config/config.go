// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	memberdomain "multi-tenant-crm/backend/internal/membership/domain"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the REST API listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the address of the gRPC health server; empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN; empty selects the in-memory repositories.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// MigrateOnStart applies pending migrations before the server starts serving.
	MigrateOnStart bool `mapstructure:"MIGRATE_ON_START"`
	// JWTPrivateKey is the PEM-encoded private key (RSA or ECDSA) or path to file. Only cmd/seed signs tokens.
	JWTPrivateKey string `mapstructure:"JWT_PRIVATE_KEY"`
	// JWTPublicKey is the PEM-encoded public key or path to file used to verify bearer tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the expected iss claim.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`
	// JWTAccessTTL is the lifetime of tokens issued by cmd/seed (e.g. "15m").
	JWTAccessTTL string `mapstructure:"JWT_ACCESS_TTL"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`
	// LogLevel is the zap level: debug, info, warn or error.
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// OTLP export is enabled when OTelEndpoint is set.
	OTelEndpoint    string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelInsecure    bool   `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	OTelServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// StageRollbackRoles is the comma-separated list of roles allowed to move a deal to an earlier stage.
	StageRollbackRoles string `mapstructure:"STAGE_ROLLBACK_ROLES"`
	// DefaultPageSize applies to list requests without page_size.
	DefaultPageSize int `mapstructure:"DEFAULT_PAGE_SIZE"`
	// MaxPageSize caps page_size on list requests.
	MaxPageSize int `mapstructure:"MAX_PAGE_SIZE"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("GRPC_ADDR", ":9090")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MIGRATE_ON_START", false)
	v.SetDefault("JWT_PRIVATE_KEY", "")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "crm-auth")
	v.SetDefault("JWT_AUDIENCE", "crm-api")
	v.SetDefault("JWT_ACCESS_TTL", "15m")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "crm-backend")
	v.SetDefault("STAGE_ROLLBACK_ROLES", "owner,admin")
	v.SetDefault("DEFAULT_PAGE_SIZE", 20)
	v.SetDefault("MAX_PAGE_SIZE", 100)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}
	if _, err := cfg.RollbackRoles(); err != nil {
		return nil, err
	}
	if cfg.Env == "production" && cfg.JWTPublicKey == "" {
		return nil, errors.New("config: JWT_PUBLIC_KEY must be set when APP_ENV=production")
	}
	if cfg.MaxPageSize < 1 {
		return nil, errors.New("config: MAX_PAGE_SIZE must be positive")
	}
	if cfg.DefaultPageSize < 1 || cfg.DefaultPageSize > cfg.MaxPageSize {
		return nil, errors.New("config: DEFAULT_PAGE_SIZE must be between 1 and MAX_PAGE_SIZE")
	}

	return &cfg, nil
}

// AccessTTL parses JWTAccessTTL as a time.Duration. Returns 15m if unset or invalid.
func (c *Config) AccessTTL() time.Duration {
	d, err := time.ParseDuration(c.JWTAccessTTL)
	if err != nil || d <= 0 {
		return 15 * time.Minute
	}
	return d
}

// RollbackRoles parses StageRollbackRoles. Every entry must be a known role other than member and
// the list must not be empty.
func (c *Config) RollbackRoles() ([]memberdomain.Role, error) {
	var roles []memberdomain.Role
	for _, p := range strings.Split(c.StageRollbackRoles, ",") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		r, err := memberdomain.ParseRole(p)
		if err != nil {
			return nil, fmt.Errorf("config: STAGE_ROLLBACK_ROLES: %w", err)
		}
		if r == memberdomain.RoleMember {
			return nil, errors.New("config: STAGE_ROLLBACK_ROLES must not include member")
		}
		roles = append(roles, r)
	}
	if len(roles) == 0 {
		return nil, errors.New("config: STAGE_ROLLBACK_ROLES must name at least one role")
	}
	return roles, nil
}

// DatabaseEnabled reports whether a Postgres DSN is configured.
func (c *Config) DatabaseEnabled() bool {
	return c != nil && strings.TrimSpace(c.DatabaseURL) != ""
}
