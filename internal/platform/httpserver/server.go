package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	rbac "paygrid/contexts/identity-access/rbac-service"
	"paygrid/contexts/identity-access/tenancy-service/application"
	tenancyports "paygrid/contexts/identity-access/tenancy-service/ports"
	payroll "paygrid/contexts/payroll-core/payroll-service"
	org "paygrid/contexts/workforce-core/org-service"
	"paygrid/internal/platform/idempotency"

	_ "paygrid/internal/platform/httpserver/docs"
)

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	rbac         rbac.Module
	org          org.Module
	payroll      payroll.Module
	resolver     application.Resolver
	verifier     tenancyports.TokenVerifier
	idempotency  idempotency.Middleware
	policyPrefix string
	readyCheck   func(ctx context.Context) error
}

// Dependencies captures everything the server needs at construction.
type Dependencies struct {
	Addr             string
	Logger           *slog.Logger
	RBAC             rbac.Module
	Org              org.Module
	Payroll          payroll.Module
	Resolver         application.Resolver
	TokenVerifier    tenancyports.TokenVerifier
	IdempotencyStore idempotency.Store
	IdempotencyClock idempotency.Clock
	IdempotencyTTL   time.Duration
	PolicyPrefix     string
	ReadyCheck       func(ctx context.Context) error
}

func New(deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := deps.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		rbac:         deps.RBAC,
		org:          deps.Org,
		payroll:      deps.Payroll,
		resolver:     deps.Resolver,
		verifier:     deps.TokenVerifier,
		policyPrefix: deps.PolicyPrefix,
		readyCheck:   deps.ReadyCheck,
	}
	s.idempotency = idempotency.Middleware{
		Store:        deps.IdempotencyStore,
		Clock:        deps.IdempotencyClock,
		TTL:          deps.IdempotencyTTL,
		Logger:       logger,
		RespondError: respondError,
	}
	s.registerRoutes()
	return s
}

// Handler returns the full middleware pipeline: request id, recovery,
// identity resolution, tenant guard, then routing. Used directly by tests.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withRecovery(s.withIdentity(s.withTenantGuard(s.mux))))
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /health/live", s.handleHealthLive)
	s.mux.HandleFunc("GET /health/ready", s.handleHealthReady)
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealthLive)

	s.handle("GET /api/v1/users/me", "authenticated", false, s.handleUsersMe)
	s.handle("PUT /api/v1/users/{user_id}/roles", "perm:rbac.write", true, s.handleUpdateUserRoles)

	s.handle("GET /api/v1/rbac/roles", "perm:rbac.read", false, s.handleListRoles)
	s.handle("POST /api/v1/rbac/roles", "perm:rbac.write", true, s.handleCreateRole)
	s.handle("PUT /api/v1/rbac/roles/{role_id}", "perm:rbac.write", true, s.handleUpdateRole)
	s.handle("DELETE /api/v1/rbac/roles/{role_id}", "perm:rbac.write", true, s.handleDeleteRole)
	s.handle("GET /api/v1/rbac/policies", "perm:rbac.read", false, s.handleListPolicies)
	s.handle("PUT /api/v1/rbac/policies/{policy_id}", "perm:rbac.write", true, s.handleUpdatePolicy)
	s.handle("GET /api/v1/rbac/access-review", "perm:rbac.read", false, s.handleAccessReview)
	s.handle("GET /api/v1/rbac/metrics", "perm:rbac.read", false, s.handleRbacMetrics)

	s.handle("GET /api/v1/org/structure", "perm:org.read", false, s.handleOrgStructure)
	s.handle("GET /api/v1/org/employees", "perm:org.read", false, s.handleListEmployees)
	s.handle("GET /api/v1/org/employees/{employee_id}", "perm:org.read", false, s.handleGetEmployee)
	s.handle("GET /api/v1/org/employees/{employee_id}/manager-chain", "perm:org.read", false, s.handleManagerChain)
	s.handle("GET /api/v1/org/managers/{manager_id}/direct-reports", "perm:org.read", false, s.handleDirectReports)
	s.handle("PUT /api/v1/workforce/employees/{employee_id}/portal-access", "perm:employee.write", true, s.handlePortalAccess)

	s.handle("GET /api/v1/payroll/runs", "perm:payroll.read", false, s.handleListRuns)
	s.handle("POST /api/v1/payroll/runs", "perm:payroll.write", true, s.handleCreateRun)
	s.handle("POST /api/v1/payroll/runs/{run_id}/approve", "perm:payroll.approve", true, s.handleApproveRun)
	s.handle("POST /api/v1/payroll/runs/{run_id}/disburse", "perm:payroll.disburse", true, s.handleDisburseRun)
	s.handle("GET /api/v1/payroll/employees/{employee_id}/payslips", "perm:payslip.read", false, s.handleListPayslips)
	s.handle("GET /api/v1/payroll/employees/{employee_id}/payslips/{period}", "perm:payslip.read", false, s.handleGetPayslip)
	s.handle("POST /api/v1/payroll/employees/{employee_id}/payslips/{period}/email", "perm:payslip.email", true, s.handleEmailPayslip)
}

// handle registers one route with its authorization policy resolved now, not
// per request, and the idempotency layer applied to unsafe endpoints.
func (s *Server) handle(pattern string, policyName string, idempotent bool, handler http.HandlerFunc) {
	policy := application.ParsePolicy(policyName, s.policyPrefix)
	inner := handler
	if idempotent {
		wrapped := s.idempotency.Wrap(http.HandlerFunc(handler))
		inner = wrapped.ServeHTTP
	}
	s.mux.HandleFunc(pattern, s.requirePolicy(policy, inner))
}

func (s *Server) handleHealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	if s.readyCheck != nil {
		if err := s.readyCheck(r.Context()); err != nil {
			s.logger.Error("readiness check failed",
				"event", "http_ready_check_failed",
				"module", "internal/platform/httpserver",
				"layer", "platform",
				"error", err.Error(),
			)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
