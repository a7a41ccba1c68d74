package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName string
	HTTPPort    string
	PostgresDSN string
	RedisAddr   string

	// AllowHeaderIdentity enables the X-User-*/X-Tenant-Id identity fallback
	// for unauthenticated callers. Dev/test wiring only.
	AllowHeaderIdentity bool

	// Fallback identity used when no principal is available and header
	// fallback is disabled (local single-tenant operation).
	FallbackTenantID  uuid.UUID
	FallbackUserID    uuid.UUID
	FallbackUserEmail string
	FallbackUserRole  string

	// PermissionPolicyPrefix marks route policy names that resolve to a
	// single required permission, e.g. "perm:org.read".
	PermissionPolicyPrefix string

	IdempotencyTTL     time.Duration
	PermissionCacheTTL time.Duration
	WorkerPollInterval time.Duration
}

// fileConfig is the optional YAML overlay read from PAYGRID_CONFIG_FILE.
// Environment variables win over file values.
type fileConfig struct {
	ServiceName         string `yaml:"service_name"`
	HTTPPort            string `yaml:"http_port"`
	PostgresDSN         string `yaml:"postgres_dsn"`
	RedisAddr           string `yaml:"redis_addr"`
	AllowHeaderIdentity *bool  `yaml:"allow_header_identity"`
	FallbackTenantID    string `yaml:"fallback_tenant_id"`
	FallbackUserID      string `yaml:"fallback_user_id"`
	FallbackUserEmail   string `yaml:"fallback_user_email"`
	FallbackUserRole    string `yaml:"fallback_user_role"`
}

func Load() (Config, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("PAYGRID_CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg := Config{
		ServiceName:            firstNonEmpty(os.Getenv("SERVICE_NAME"), file.ServiceName, "paygrid"),
		HTTPPort:               firstNonEmpty(os.Getenv("HTTP_PORT"), file.HTTPPort, "8080"),
		PostgresDSN:            firstNonEmpty(os.Getenv("POSTGRES_DSN"), file.PostgresDSN, ""),
		RedisAddr:              firstNonEmpty(os.Getenv("REDIS_ADDR"), file.RedisAddr, ""),
		FallbackUserEmail:      firstNonEmpty(os.Getenv("FALLBACK_USER_EMAIL"), file.FallbackUserEmail, "ops@localhost"),
		FallbackUserRole:       firstNonEmpty(os.Getenv("FALLBACK_USER_ROLE"), file.FallbackUserRole, "employee"),
		PermissionPolicyPrefix: firstNonEmpty(os.Getenv("PERMISSION_POLICY_PREFIX"), "perm:"),
		IdempotencyTTL:         envDuration("IDEMPOTENCY_TTL", 24*time.Hour),
		PermissionCacheTTL:     envDuration("PERMISSION_CACHE_TTL", 5*time.Minute),
		WorkerPollInterval:     envDuration("WORKER_POLL_INTERVAL", 2*time.Second),
	}

	if file.AllowHeaderIdentity != nil {
		cfg.AllowHeaderIdentity = *file.AllowHeaderIdentity
	}
	cfg.AllowHeaderIdentity = envBool("ALLOW_HEADER_IDENTITY", cfg.AllowHeaderIdentity)

	var err error
	cfg.FallbackTenantID, err = parseOptionalUUID(firstNonEmpty(os.Getenv("FALLBACK_TENANT_ID"), file.FallbackTenantID))
	if err != nil {
		return Config{}, fmt.Errorf("parse FALLBACK_TENANT_ID: %w", err)
	}
	cfg.FallbackUserID, err = parseOptionalUUID(firstNonEmpty(os.Getenv("FALLBACK_USER_ID"), file.FallbackUserID))
	if err != nil {
		return Config{}, fmt.Errorf("parse FALLBACK_USER_ID: %w", err)
	}

	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

func parseOptionalUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(raw)
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
		return parsed
	}
	if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return fallback
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
