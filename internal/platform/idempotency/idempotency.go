// Package idempotency makes unsafe HTTP operations safe to retry with an
// identical client-supplied key. Concurrent or repeated calls with the same
// (tenant, key, method, path) observe a single logical execution and receive
// byte-identical replayed output.
//
// The lookup-then-execute-then-insert sequence is deliberately not protected
// by an application-level lock: correctness must hold across server instances,
// so the store's uniqueness constraint is the serialization point and a
// post-conflict re-read resolves races. Side effects inside the wrapped
// handler are NOT deduplicated, only the HTTP-level response is.
package idempotency

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	tenancy "paygrid/contexts/identity-access/tenancy-service"
)

// HeaderKey is the client-supplied deduplication key header.
const HeaderKey = "Idempotency-Key"

const maxKeyLength = 128

// Record is one stored response, replayed for retries until it expires.
// Unique identity is (tenant, key, method, path); records are never updated
// in place.
type Record struct {
	TenantID     uuid.UUID
	Key          string
	Method       string
	Path         string
	StatusCode   int
	ResponseBody []byte // nil when the handler produced no body
	CreatedAt    time.Time
	ExpiresAt    time.Time
}

// Store persists idempotency records. Insert must rely on a uniqueness
// constraint: when a concurrent insert won the race it returns the winner
// record with created=false instead of an error.
type Store interface {
	Find(ctx context.Context, tenantID uuid.UUID, key string, method string, path string, now time.Time) (Record, bool, error)
	Insert(ctx context.Context, record Record) (winner Record, created bool, err error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default runtime clock implementation.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ErrorResponder writes the platform error envelope; injected by the HTTP
// server so this package does not depend on its response shape.
type ErrorResponder func(w http.ResponseWriter, r *http.Request, status int, code string, message string)

// Middleware wraps unsafe endpoints with key validation, replay lookup,
// buffered execution, and race-safe recording.
type Middleware struct {
	Store        Store
	Clock        Clock
	TTL          time.Duration
	Logger       *slog.Logger
	RespondError ErrorResponder
}

func (m Middleware) ttl() time.Duration {
	if m.TTL <= 0 {
		return 24 * time.Hour
	}
	return m.TTL
}

func (m Middleware) now() time.Time {
	if m.Clock == nil {
		return time.Now().UTC()
	}
	return m.Clock.Now().UTC()
}

func (m Middleware) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// Wrap applies the idempotency contract to next. It must run after identity
// resolution and the tenant guard so the snapshot is present on the context.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(HeaderKey))
		if key == "" {
			m.RespondError(w, r, http.StatusBadRequest, "idempotency_key_required", "Idempotency-Key header is required")
			return
		}
		if len(key) > maxKeyLength {
			m.RespondError(w, r, http.StatusBadRequest, "idempotency_key_invalid", "Idempotency-Key must not exceed 128 characters")
			return
		}

		snapshot, _ := tenancy.SnapshotFrom(r.Context())
		method := strings.ToUpper(r.Method)
		path := strings.ToLower(r.URL.Path)
		now := m.now()

		existing, found, err := m.Store.Find(r.Context(), snapshot.TenantID, key, method, path, now)
		if err != nil {
			m.logger().Error("idempotency lookup failed",
				"event", "idempotency_lookup_failed",
				"module", "internal/platform/idempotency",
				"layer", "platform",
				"tenant_id", snapshot.TenantID.String(),
				"method", method,
				"path", path,
				"error", err.Error(),
			)
			m.RespondError(w, r, http.StatusInternalServerError, "unhandled_error", "internal server error")
			return
		}
		if found {
			m.replay(w, existing)
			return
		}

		recorder := newResponseRecorder()
		next.ServeHTTP(recorder, r)

		status := recorder.statusCode()
		if status < 200 || status >= 500 {
			// 5xx is transient/non-authoritative; never cached, so the next
			// retry executes the handler again.
			recorder.flush(w)
			return
		}

		record := Record{
			TenantID:   snapshot.TenantID,
			Key:        key,
			Method:     method,
			Path:       path,
			StatusCode: status,
			CreatedAt:  now,
			ExpiresAt:  now.Add(m.ttl()),
		}
		if recorder.body.Len() > 0 {
			record.ResponseBody = append([]byte(nil), recorder.body.Bytes()...)
		}

		winner, created, err := m.Store.Insert(r.Context(), record)
		if err != nil {
			m.logger().Error("idempotency record insert failed",
				"event", "idempotency_insert_failed",
				"module", "internal/platform/idempotency",
				"layer", "platform",
				"tenant_id", snapshot.TenantID.String(),
				"method", method,
				"path", path,
				"error", err.Error(),
			)
			m.RespondError(w, r, http.StatusInternalServerError, "unhandled_error", "internal server error")
			return
		}
		if created {
			recorder.flush(w)
			return
		}

		// Lost the insert race: a concurrent identical request recorded first.
		// Replay the winner so every caller observes the same response.
		m.logger().Info("idempotency insert race resolved by replay",
			"event", "idempotency_race_replayed",
			"module", "internal/platform/idempotency",
			"layer", "platform",
			"tenant_id", snapshot.TenantID.String(),
			"method", method,
			"path", path,
		)
		m.replay(w, winner)
	})
}

func (m Middleware) replay(w http.ResponseWriter, record Record) {
	if record.ResponseBody == nil {
		w.WriteHeader(record.StatusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(record.StatusCode)
	_, _ = w.Write(record.ResponseBody)
}

// responseRecorder buffers the wrapped handler's output so the record insert
// can be decided before anything reaches the wire.
type responseRecorder struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header)}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *responseRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (r *responseRecorder) flush(w http.ResponseWriter) {
	for name, values := range r.header {
		for _, value := range values {
			w.Header().Add(name, value)
		}
	}
	w.WriteHeader(r.statusCode())
	if r.body.Len() > 0 {
		_, _ = w.Write(r.body.Bytes())
	}
}
