// Package scheduler runs the background workers that keep the hierarchy in
// step with the outside world.
package scheduler

import (
	"context"

	"github.com/MrSnakeDoc/launchbar/internal/hierarchy"
)

// Runner gives serialized access to the hierarchy.
type Runner interface {
	Do(ctx context.Context, fn func(m *hierarchy.Manager) error) error
}

// Syncer reloads the hierarchy when the shared store changed remotely.
type Syncer interface {
	Sync(ctx context.Context) (bool, error)
}
