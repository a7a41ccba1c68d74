package tenancy

import (
	"context"

	"paygrid/contexts/identity-access/tenancy-service/domain/entities"
)

type contextKey struct{}

// WithSnapshot attaches a resolved identity snapshot to the request context.
// The snapshot is computed once per request and is immutable afterwards.
func WithSnapshot(ctx context.Context, snapshot entities.Snapshot) context.Context {
	return context.WithValue(ctx, contextKey{}, snapshot)
}

// SnapshotFrom returns the snapshot resolved for this request, if any.
func SnapshotFrom(ctx context.Context) (entities.Snapshot, bool) {
	snapshot, ok := ctx.Value(contextKey{}).(entities.Snapshot)
	return snapshot, ok
}
