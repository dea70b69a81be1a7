package storage

import (
	"context"

	"github.com/fedmesh/fedmesh/federation"
)

// ServerRepository stores server descriptors and their trust metrics
// as a pair: a metrics record exists exactly as long as its server
// does, and Delete removes both atomically.
type ServerRepository interface {
	Create(ctx context.Context, s federation.Server, m federation.TrustMetrics) error
	Get(ctx context.Context, id string) (federation.Server, error)
	GetMetrics(ctx context.Context, id string) (federation.TrustMetrics, error)

	// Mutate runs fn under the repository lock with the current server
	// and metrics records, then stores whatever fn leaves behind. It is
	// the only safe way to do read-modify-write of trust bookkeeping
	// from concurrent callers.
	Mutate(ctx context.Context, id string, fn func(*federation.Server, *federation.TrustMetrics) error) error

	List(ctx context.Context) ([]federation.Server, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}
