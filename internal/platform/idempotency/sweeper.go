package idempotency

import (
	"context"
	"log/slog"
)

// Sweeper removes expired idempotency records. Expiry is enforced purely by
// timestamp comparison at lookup time, so sweeping is storage hygiene only.
type Sweeper struct {
	Store  Store
	Clock  Clock
	Logger *slog.Logger
}

func (s Sweeper) RunOnce(ctx context.Context) error {
	clock := s.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	removed, err := s.Store.DeleteExpired(ctx, clock.Now().UTC())
	if err != nil {
		if s.Logger != nil {
			s.Logger.Error("idempotency sweep failed",
				"event", "idempotency_sweep_failed",
				"module", "internal/platform/idempotency",
				"layer", "worker",
				"error", err.Error(),
			)
		}
		return err
	}
	if removed > 0 && s.Logger != nil {
		s.Logger.Info("idempotency records swept",
			"event", "idempotency_sweep_completed",
			"module", "internal/platform/idempotency",
			"layer", "worker",
			"removed", removed,
		)
	}
	return nil
}
