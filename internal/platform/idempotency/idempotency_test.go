package idempotency

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	tenancy "paygrid/contexts/identity-access/tenancy-service"
	"paygrid/contexts/identity-access/tenancy-service/domain/entities"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testErrorResponder(w http.ResponseWriter, _ *http.Request, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"code": code, "message": message})
}

func newTestMiddleware(clock Clock) (Middleware, *MemoryStore) {
	store := NewMemoryStore()
	return Middleware{
		Store:        store,
		Clock:        clock,
		TTL:          24 * time.Hour,
		RespondError: testErrorResponder,
	}, store
}

func requestWithSnapshot(method string, path string, tenantID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	snapshot := entities.Snapshot{TenantID: tenantID, UserID: uuid.New(), Email: "t@t.test"}
	return req.WithContext(tenancy.WithSnapshot(req.Context(), snapshot))
}

func TestWrapRejectsMissingKey(t *testing.T) {
	middleware, _ := newTestMiddleware(&fakeClock{now: time.Now().UTC()})
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler must not run without a key")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", uuid.New()))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body["code"] != "idempotency_key_required" {
		t.Fatalf("unexpected code %q", body["code"])
	}
}

func TestWrapRejectsOversizedKey(t *testing.T) {
	middleware, _ := newTestMiddleware(&fakeClock{now: time.Now().UTC()})
	handler := middleware.Wrap(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))

	req := requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", uuid.New())
	long := make([]byte, 129)
	for i := range long {
		long[i] = 'k'
	}
	req.Header.Set(HeaderKey, string(long))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	var body map[string]string
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	if body["code"] != "idempotency_key_invalid" {
		t.Fatalf("unexpected code %q", body["code"])
	}
}

func TestWrapReplaysRecordedResponse(t *testing.T) {
	middleware, _ := newTestMiddleware(&fakeClock{now: time.Now().UTC()})
	var calls atomic.Int32
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"runId":"run-%d"}`, n)
	}))

	tenantID := uuid.New()
	first := httptest.NewRecorder()
	req := requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", tenantID)
	req.Header.Set(HeaderKey, "k1")
	handler.ServeHTTP(first, req)

	second := httptest.NewRecorder()
	req = requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", tenantID)
	req.Header.Set(HeaderKey, "k1")
	handler.ServeHTTP(second, req)

	if calls.Load() != 1 {
		t.Fatalf("expected exactly one handler execution, got %d", calls.Load())
	}
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("expected 201/201, got %d/%d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay mismatch: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestWrapScopesRecordsByTenant(t *testing.T) {
	middleware, _ := newTestMiddleware(&fakeClock{now: time.Now().UTC()})
	var calls atomic.Int32
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))

	for _, tenantID := range []uuid.UUID{uuid.New(), uuid.New()} {
		req := requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", tenantID)
		req.Header.Set(HeaderKey, "shared-key")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls.Load() != 2 {
		t.Fatalf("same key in different tenants must execute twice, got %d", calls.Load())
	}
}

func TestWrapDoesNotRecordServerErrors(t *testing.T) {
	middleware, _ := newTestMiddleware(&fakeClock{now: time.Now().UTC()})
	var calls atomic.Int32
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	tenantID := uuid.New()
	for i := 0; i < 2; i++ {
		req := requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", tenantID)
		req.Header.Set(HeaderKey, "k-5xx")
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if calls.Load() != 2 {
		t.Fatalf("5xx must never be cached, got %d executions", calls.Load())
	}
}

func TestWrapRecordsClientErrors(t *testing.T) {
	middleware, _ := newTestMiddleware(&fakeClock{now: time.Now().UTC()})
	var calls atomic.Int32
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"invalid_period"}`))
	}))

	tenantID := uuid.New()
	var last *httptest.ResponseRecorder
	for i := 0; i < 2; i++ {
		last = httptest.NewRecorder()
		req := requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", tenantID)
		req.Header.Set(HeaderKey, "k-4xx")
		handler.ServeHTTP(last, req)
	}

	if calls.Load() != 1 {
		t.Fatalf("4xx must be cached and replayed, got %d executions", calls.Load())
	}
	if last.Code != http.StatusBadRequest {
		t.Fatalf("expected replayed 400, got %d", last.Code)
	}
}

func TestWrapExpiredRecordReExecutes(t *testing.T) {
	clock := &fakeClock{now: time.Now().UTC()}
	middleware, _ := newTestMiddleware(clock)
	var calls atomic.Int32
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))

	tenantID := uuid.New()
	req := requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", tenantID)
	req.Header.Set(HeaderKey, "k-ttl")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	clock.Advance(25 * time.Hour)

	req = requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", tenantID)
	req.Header.Set(HeaderKey, "k-ttl")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if calls.Load() != 2 {
		t.Fatalf("expired record must not replay, got %d executions", calls.Load())
	}
}

func TestWrapConcurrentRequestsObserveOneResponse(t *testing.T) {
	middleware, _ := newTestMiddleware(&fakeClock{now: time.Now().UTC()})
	var counter atomic.Int32
	handler := middleware.Wrap(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := counter.Add(1)
		w.WriteHeader(http.StatusCreated)
		fmt.Fprintf(w, `{"runId":"run-%d"}`, n)
	}))

	tenantID := uuid.New()
	const workers = 8
	bodies := make([]string, workers)
	statuses := make([]int, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rr := httptest.NewRecorder()
			req := requestWithSnapshot(http.MethodPost, "/api/v1/payroll/runs", tenantID)
			req.Header.Set(HeaderKey, "k-race")
			handler.ServeHTTP(rr, req)
			bodies[i] = rr.Body.String()
			statuses[i] = rr.Code
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if statuses[i] != statuses[0] {
			t.Fatalf("status divergence: %d vs %d", statuses[i], statuses[0])
		}
		if bodies[i] != bodies[0] {
			t.Fatalf("body divergence: %q vs %q", bodies[i], bodies[0])
		}
	}
}

func TestSweeperDeletesExpiredRecords(t *testing.T) {
	clock := &fakeClock{now: time.Now().UTC()}
	store := NewMemoryStore()
	now := clock.Now()

	_, _, _ = store.Insert(context.Background(), Record{
		TenantID:  uuid.New(),
		Key:       "old",
		Method:    "POST",
		Path:      "/api/v1/payroll/runs",
		CreatedAt: now.Add(-48 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	})
	_, _, _ = store.Insert(context.Background(), Record{
		TenantID:  uuid.New(),
		Key:       "fresh",
		Method:    "POST",
		Path:      "/api/v1/payroll/runs",
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	})

	sweeper := Sweeper{Store: store, Clock: clock}
	if err := sweeper.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	deleted, err := store.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("delete expired failed: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("sweeper should have removed the expired record already, second pass deleted %d", deleted)
	}
}
