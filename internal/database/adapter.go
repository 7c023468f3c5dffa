package database

import (
	"context"

	"github.com/Lumos-Labs-HQ/autoseed/internal/types"
)

// Store is a single live connection to the seeding target. It is shared by
// every domain seeder of a run, one at a time.
type Store interface {
	Connect(ctx context.Context, url string) error
	Close() error

	// HealthCheck is called once before seeding starts.
	HealthCheck(ctx context.Context) types.Health

	Collection(name string) types.Collection
	Provider() string
}
