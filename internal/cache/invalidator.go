package cache

import (
	"context"

	"github.com/google/uuid"
)

// Invalidator signals dependent views that a profile changed. Calls are
// fire-and-forget: failures are logged by callers, never propagated.
type Invalidator interface {
	InvalidateProfile(ctx context.Context, ownerID uuid.UUID) error
}

// Noop is used when no cache backend is configured.
type Noop struct{}

func (Noop) InvalidateProfile(context.Context, uuid.UUID) error { return nil }
