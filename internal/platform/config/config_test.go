package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "paygrid" || cfg.HTTPPort != "8080" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.PermissionPolicyPrefix != "perm:" {
		t.Fatalf("expected perm: prefix, got %q", cfg.PermissionPolicyPrefix)
	}
	if cfg.IdempotencyTTL != 24*time.Hour || cfg.PermissionCacheTTL != 5*time.Minute || cfg.WorkerPollInterval != 2*time.Second {
		t.Fatalf("unexpected duration defaults %+v", cfg)
	}
	if cfg.AllowHeaderIdentity {
		t.Fatal("header identity must default off")
	}
	if cfg.FallbackTenantID != uuid.Nil || cfg.FallbackUserID != uuid.Nil {
		t.Fatal("fallback identifiers must default to nil")
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	tenantID := uuid.New()
	t.Setenv("SERVICE_NAME", "paygrid-api")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("POSTGRES_DSN", "postgres://localhost/paygrid")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("ALLOW_HEADER_IDENTITY", "yes")
	t.Setenv("FALLBACK_TENANT_ID", tenantID.String())
	t.Setenv("IDEMPOTENCY_TTL", "30m")
	t.Setenv("WORKER_POLL_INTERVAL", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "paygrid-api" || cfg.HTTPPort != "9090" {
		t.Fatalf("unexpected overrides %+v", cfg)
	}
	if !cfg.AllowHeaderIdentity {
		t.Fatal("expected header identity enabled")
	}
	if cfg.FallbackTenantID != tenantID {
		t.Fatalf("expected fallback tenant %s, got %s", tenantID, cfg.FallbackTenantID)
	}
	if cfg.IdempotencyTTL != 30*time.Minute {
		t.Fatalf("expected 30m TTL, got %s", cfg.IdempotencyTTL)
	}
	// Bare integers read as seconds.
	if cfg.WorkerPollInterval != 5*time.Second {
		t.Fatalf("expected 5s poll interval, got %s", cfg.WorkerPollInterval)
	}
}

func TestLoadFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paygrid.yaml")
	contents := []byte("service_name: paygrid-file\nhttp_port: \"7070\"\nallow_header_identity: true\nfallback_user_email: file@localhost\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PAYGRID_CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "paygrid-file" || cfg.HTTPPort != "7070" {
		t.Fatalf("expected file values, got %+v", cfg)
	}
	if !cfg.AllowHeaderIdentity || cfg.FallbackUserEmail != "file@localhost" {
		t.Fatalf("expected file overlay applied, got %+v", cfg)
	}
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paygrid.yaml")
	contents := []byte("service_name: paygrid-file\nallow_header_identity: true\n")
	if err := os.WriteFile(path, contents, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PAYGRID_CONFIG_FILE", path)
	t.Setenv("SERVICE_NAME", "paygrid-env")
	t.Setenv("ALLOW_HEADER_IDENTITY", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ServiceName != "paygrid-env" {
		t.Fatalf("expected env to win, got %q", cfg.ServiceName)
	}
	if cfg.AllowHeaderIdentity {
		t.Fatal("expected env bool to override file value")
	}
}

func TestLoadRejectsMalformedFallbackID(t *testing.T) {
	t.Setenv("FALLBACK_TENANT_ID", "not-a-uuid")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed fallback tenant id")
	}
}

func TestLoadRejectsUnreadableConfigFile(t *testing.T) {
	t.Setenv("PAYGRID_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
