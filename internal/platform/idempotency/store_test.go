package idempotency

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

// runStoreContract asserts the Store semantics every adapter must share:
// Find never surfaces expired rows, Insert records a fresh outcome over an
// expired row occupying the same scope, and a race loser gets back the live
// winner. The postgres adapter satisfies the same contract against a real
// database; only the in-process store runs here.
func runStoreContract(t *testing.T, newStore func() Store) {
	t.Helper()

	t.Run("find filters expired rows", func(t *testing.T) {
		store := newStore()
		now := time.Now().UTC()
		tenantID := uuid.New()
		_, _, err := store.Insert(context.Background(), Record{
			TenantID:   tenantID,
			Key:        "k1",
			Method:     "POST",
			Path:       "/api/v1/payroll/runs",
			StatusCode: 201,
			CreatedAt:  now.Add(-48 * time.Hour),
			ExpiresAt:  now.Add(-24 * time.Hour),
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}

		if _, found, err := store.Find(context.Background(), tenantID, "k1", "POST", "/api/v1/payroll/runs", now); err != nil {
			t.Fatalf("find: %v", err)
		} else if found {
			t.Fatal("expired record must not be found")
		}
	})

	t.Run("insert replaces expired row", func(t *testing.T) {
		store := newStore()
		now := time.Now().UTC()
		tenantID := uuid.New()
		stale := Record{
			TenantID:     tenantID,
			Key:          "k1",
			Method:       "POST",
			Path:         "/api/v1/payroll/runs",
			StatusCode:   201,
			ResponseBody: []byte(`{"runId":"stale"}`),
			CreatedAt:    now.Add(-48 * time.Hour),
			ExpiresAt:    now.Add(-24 * time.Hour),
		}
		if _, _, err := store.Insert(context.Background(), stale); err != nil {
			t.Fatalf("seed stale: %v", err)
		}

		fresh := stale
		fresh.ResponseBody = []byte(`{"runId":"fresh"}`)
		fresh.CreatedAt = now
		fresh.ExpiresAt = now.Add(24 * time.Hour)

		winner, created, err := store.Insert(context.Background(), fresh)
		if err != nil {
			t.Fatalf("insert fresh: %v", err)
		}
		if !created {
			t.Fatal("fresh outcome must win over an expired row")
		}
		if string(winner.ResponseBody) != `{"runId":"fresh"}` {
			t.Fatalf("unexpected winner body %s", winner.ResponseBody)
		}

		found, ok, err := store.Find(context.Background(), tenantID, "k1", "POST", "/api/v1/payroll/runs", now)
		if err != nil || !ok {
			t.Fatalf("find fresh: ok=%v err=%v", ok, err)
		}
		if string(found.ResponseBody) != `{"runId":"fresh"}` {
			t.Fatalf("expected fresh record replayable, got %s", found.ResponseBody)
		}
	})

	t.Run("race loser gets live winner", func(t *testing.T) {
		store := newStore()
		now := time.Now().UTC()
		tenantID := uuid.New()
		first := Record{
			TenantID:     tenantID,
			Key:          "k1",
			Method:       "POST",
			Path:         "/api/v1/payroll/runs",
			StatusCode:   201,
			ResponseBody: []byte(`{"runId":"first"}`),
			CreatedAt:    now,
			ExpiresAt:    now.Add(24 * time.Hour),
		}
		if _, created, err := store.Insert(context.Background(), first); err != nil || !created {
			t.Fatalf("first insert: created=%v err=%v", created, err)
		}

		second := first
		second.ResponseBody = []byte(`{"runId":"second"}`)

		winner, created, err := store.Insert(context.Background(), second)
		if err != nil {
			t.Fatalf("second insert: %v", err)
		}
		if created {
			t.Fatal("race loser must not be recorded as created")
		}
		if string(winner.ResponseBody) != `{"runId":"first"}` {
			t.Fatalf("expected first writer to win, got %s", winner.ResponseBody)
		}
	})
}

func TestMemoryStoreContract(t *testing.T) {
	runStoreContract(t, func() Store { return NewMemoryStore() })
}
