package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	rbac "paygrid/contexts/identity-access/rbac-service"
	tenancyapp "paygrid/contexts/identity-access/tenancy-service/application"
	tenancyports "paygrid/contexts/identity-access/tenancy-service/ports"
	payroll "paygrid/contexts/payroll-core/payroll-service"
	org "paygrid/contexts/workforce-core/org-service"
	"paygrid/internal/platform/idempotency"
	"paygrid/internal/platform/messaging"
)

type stubVerifier struct {
	principal tenancyports.Principal
}

func (v stubVerifier) Verify(_ context.Context, _ string) (tenancyports.Principal, error) {
	return v.principal, nil
}

func newTestServer(verifier tenancyports.TokenVerifier) *Server {
	logger := slog.Default()
	bus := messaging.NewBus(logger)
	return New(Dependencies{
		Addr:             ":0",
		Logger:           logger,
		RBAC:             rbac.NewInMemoryModule(logger),
		Org:              org.NewInMemoryModule(logger),
		Payroll:          payroll.NewInMemoryModule(bus, logger),
		Resolver:         tenancyapp.Resolver{Config: tenancyapp.ResolverConfig{AllowHeaderIdentity: true}},
		TokenVerifier:    verifier,
		IdempotencyStore: idempotency.NewMemoryStore(),
		IdempotencyClock: idempotency.SystemClock{},
		IdempotencyTTL:   24 * time.Hour,
	})
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, rr.Body.String())
	}
	return body
}

func TestTenantGuardRejectsUnresolvedTenant(t *testing.T) {
	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/employees", nil)
	req.Header.Set("X-User-Role", "employee")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if body := decodeError(t, rr); body.Code != "tenant_context_missing" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestTenantGuardRespondsWithTraceID(t *testing.T) {
	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/employees", nil)
	req.Header.Set("X-Request-Id", "trace-42")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if body := decodeError(t, rr); body.TraceID != "trace-42" {
		t.Fatalf("expected trace id trace-42, got %q", body.TraceID)
	}
}

func TestHealthEndpointsBypassTenantGuard(t *testing.T) {
	server := newTestServer(nil)
	for _, path := range []string{"/health/live", "/health/ready", "/api/v1/health"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rr := httptest.NewRecorder()
		server.Handler().ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("path %s: expected 200, got %d body=%s", path, rr.Code, rr.Body.String())
		}
	}
}

func TestSwaggerMountBypassesTenantGuard(t *testing.T) {
	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil)

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestIncompleteAuthenticatedIdentityRejected(t *testing.T) {
	tenantID := uuid.New()
	server := newTestServer(stubVerifier{principal: tenancyports.Principal{
		Authenticated: true,
		Claims:        map[string][]string{"tenant_id": {tenantID.String()}},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/employees", nil)
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
	if body := decodeError(t, rr); body.Code != "identity_context_missing" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestAuthenticatedTokenNeverInheritsFallbackTenant(t *testing.T) {
	server := newTestServer(stubVerifier{principal: tenancyports.Principal{
		Authenticated: true,
		Claims: map[string][]string{
			"oid":   {uuid.NewString()},
			"email": {"pat@acme.test"},
		},
	}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/employees", nil)
	req.Header.Set("Authorization", "Bearer token")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for tokens without tenant, got %d body=%s", rr.Code, rr.Body.String())
	}
	if body := decodeError(t, rr); body.Code != "tenant_context_missing" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestPermissionDeniedForUnprivilegedRole(t *testing.T) {
	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/runs", bytes.NewReader([]byte(`{"period":"2026-03"}`)))
	req.Header.Set("X-Tenant-Id", uuid.NewString())
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "employee")
	req.Header.Set("Idempotency-Key", "k1")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestAdminRoleBypassesPermissionChecks(t *testing.T) {
	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/rbac/metrics", nil)
	req.Header.Set("X-Tenant-Id", uuid.NewString())
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "admin")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnmappedRoleWithoutClaimsDenied(t *testing.T) {
	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/org/employees", nil)
	req.Header.Set("X-Tenant-Id", uuid.NewString())
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "contractor")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for empty permission set, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateRunRequiresIdempotencyKey(t *testing.T) {
	server := newTestServer(nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/runs", bytes.NewReader([]byte(`{"period":"2026-03"}`)))
	req.Header.Set("X-Tenant-Id", uuid.NewString())
	req.Header.Set("X-User-Id", uuid.NewString())
	req.Header.Set("X-User-Role", "payroll_manager")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
	if body := decodeError(t, rr); body.Code != "idempotency_key_required" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestCreateRunReplaysSameRunID(t *testing.T) {
	server := newTestServer(nil)
	tenantID := uuid.NewString()
	userID := uuid.NewString()

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/payroll/runs", bytes.NewReader([]byte(`{"period":"2026-03"}`)))
		req.Header.Set("X-Tenant-Id", tenantID)
		req.Header.Set("X-User-Id", userID)
		req.Header.Set("X-User-Role", "payroll_manager")
		req.Header.Set("Idempotency-Key", "k1")
		rr := httptest.NewRecorder()
		server.Handler().ServeHTTP(rr, req)
		return rr
	}

	first := send()
	second := send()

	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected 201/201, got %d/%d bodies %s / %s", first.Code, second.Code, first.Body.String(), second.Body.String())
	}

	var run1, run2 struct {
		RunID string `json:"runId"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &run1); err != nil {
		t.Fatalf("decode first run: %v", err)
	}
	if err := json.Unmarshal(second.Body.Bytes(), &run2); err != nil {
		t.Fatalf("decode second run: %v", err)
	}
	if run1.RunID == "" || run1.RunID != run2.RunID {
		t.Fatalf("expected identical runId, got %q and %q", run1.RunID, run2.RunID)
	}
}

func TestUsersMeEchoesResolvedSnapshot(t *testing.T) {
	server := newTestServer(nil)
	tenantID := uuid.NewString()
	userID := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("X-Tenant-Id", tenantID)
	req.Header.Set("X-User-Id", userID)
	req.Header.Set("X-User-Email", "dev@acme.test")
	req.Header.Set("X-User-Role", "manager")

	rr := httptest.NewRecorder()
	server.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var me struct {
		TenantID string `json:"tenantId"`
		UserID   string `json:"userId"`
		Role     string `json:"role"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.TenantID != tenantID || me.UserID != userID || me.Role != "manager" {
		t.Fatalf("unexpected snapshot echo: %+v", me)
	}
}
