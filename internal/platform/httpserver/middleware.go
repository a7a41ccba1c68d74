package httpserver

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	tenancy "paygrid/contexts/identity-access/tenancy-service"
	"paygrid/contexts/identity-access/tenancy-service/application"
	"paygrid/contexts/identity-access/tenancy-service/ports"
)

// guardedPathPrefix bounds the tenant guard to the business API. Health
// probes and the swagger mount live outside it and carry no tenant context.
const guardedPathPrefix = "/api/v1/"

// guardExemptPaths bypass the tenant guard inside the guarded prefix.
var guardExemptPaths = map[string]struct{}{
	"/api/v1/health": {},
}

// withRequestID assigns each request a trace id from X-Request-Id or a fresh
// UUID, echoed back on the response for client-side correlation.
func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := strings.TrimSpace(r.Header.Get("X-Request-Id"))
		if traceID == "" {
			traceID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", traceID)
		next.ServeHTTP(w, r.WithContext(withTraceID(r.Context(), traceID)))
	})
}

// withRecovery converts panics into the generic 500 envelope. Full detail is
// logged server-side and never reaches the caller.
func (s *Server) withRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				s.logger.Error("request panicked",
					"event", "http_request_panic",
					"module", "internal/platform/httpserver",
					"layer", "platform",
					"method", r.Method,
					"path", r.URL.Path,
					"trace_id", traceIDFrom(r.Context()),
					"panic", recovered,
				)
				respondError(w, r, http.StatusInternalServerError, "unhandled_error", "an unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// withIdentity resolves the request snapshot exactly once and attaches it to
// the context. Token verification failures yield an unauthenticated principal
// rather than an error; enforcement belongs to the guard and policies.
func (s *Server) withIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := s.resolvePrincipal(r)
		snapshot := s.resolver.Resolve(principal, r.Header)
		next.ServeHTTP(w, r.WithContext(tenancy.WithSnapshot(r.Context(), snapshot)))
	})
}

func (s *Server) resolvePrincipal(r *http.Request) ports.Principal {
	if s.verifier == nil {
		return ports.Principal{}
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return ports.Principal{}
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return ports.Principal{}
	}
	principal, err := s.verifier.Verify(r.Context(), strings.TrimSpace(token))
	if err != nil {
		s.logger.Warn("token verification failed",
			"event", "token_verify_failed",
			"module", "internal/platform/httpserver",
			"layer", "platform",
			"trace_id", traceIDFrom(r.Context()),
			"error", err.Error(),
		)
		return ports.Principal{}
	}
	return principal
}

// withTenantGuard rejects requests lacking resolved tenant or identity before
// they reach business handlers.
func (s *Server) withTenantGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, guardedPathPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		if _, exempt := guardExemptPaths[r.URL.Path]; exempt {
			next.ServeHTTP(w, r)
			return
		}

		snapshot, ok := tenancy.SnapshotFrom(r.Context())
		if !ok {
			respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
			return
		}
		if snapshot.Authenticated && (snapshot.UserID == uuid.Nil || strings.TrimSpace(snapshot.Email) == "") {
			respondError(w, r, http.StatusUnauthorized, "identity_context_missing", "authenticated identity is incomplete")
			return
		}
		if snapshot.TenantID == uuid.Nil {
			respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requirePolicy enforces an authorization policy resolved at registration.
func (s *Server) requirePolicy(policy application.Policy, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot, ok := tenancy.SnapshotFrom(r.Context())
		if !ok {
			respondError(w, r, http.StatusBadRequest, "tenant_context_missing", "tenant context could not be resolved")
			return
		}
		if !policy.Allows(snapshot) {
			respondError(w, r, http.StatusForbidden, "forbidden", "permission denied")
			return
		}
		next(w, r)
	}
}
