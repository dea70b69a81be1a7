package storage

import (
	"context"
	"sync"

	"github.com/fedmesh/fedmesh/federation"
	"github.com/fedmesh/fedmesh/pkg/errors"
)

type inMemoryRepository struct {
	sync.Mutex

	servers map[string]federation.Server
	metrics map[string]federation.TrustMetrics
}

func NewInMemoryRepository() ServerRepository {
	return &inMemoryRepository{
		servers: make(map[string]federation.Server),
		metrics: make(map[string]federation.TrustMetrics),
	}
}

func (r *inMemoryRepository) Create(_ context.Context, s federation.Server, m federation.TrustMetrics) error {
	if s.ID == "" {
		return errors.ErrEmptyKey
	}

	r.Lock()
	defer r.Unlock()

	if _, ok := r.servers[s.ID]; ok {
		return errors.ErrEntityExists
	}

	r.servers[s.ID] = s
	r.metrics[s.ID] = m

	return nil
}

func (r *inMemoryRepository) Get(_ context.Context, id string) (federation.Server, error) {
	if id == "" {
		return federation.Server{}, errors.ErrEmptyKey
	}

	r.Lock()
	defer r.Unlock()

	if s, ok := r.servers[id]; ok {
		return s, nil
	}

	return federation.Server{}, errors.ErrNotFound
}

func (r *inMemoryRepository) GetMetrics(_ context.Context, id string) (federation.TrustMetrics, error) {
	if id == "" {
		return federation.TrustMetrics{}, errors.ErrEmptyKey
	}

	r.Lock()
	defer r.Unlock()

	if m, ok := r.metrics[id]; ok {
		return m, nil
	}

	return federation.TrustMetrics{}, errors.ErrNotFound
}

func (r *inMemoryRepository) Mutate(_ context.Context, id string, fn func(*federation.Server, *federation.TrustMetrics) error) error {
	if id == "" {
		return errors.ErrEmptyKey
	}

	r.Lock()
	defer r.Unlock()

	s, ok := r.servers[id]
	if !ok {
		return errors.ErrNotFound
	}
	m, ok := r.metrics[id]
	if !ok {
		return errors.ErrNotFound
	}

	if err := fn(&s, &m); err != nil {
		return err
	}

	r.servers[id] = s
	r.metrics[id] = m

	return nil
}

func (r *inMemoryRepository) List(_ context.Context) ([]federation.Server, error) {
	r.Lock()
	defer r.Unlock()

	servers := make([]federation.Server, 0, len(r.servers))
	for _, s := range r.servers {
		servers = append(servers, s)
	}

	return servers, nil
}

func (r *inMemoryRepository) Delete(_ context.Context, id string) error {
	if id == "" {
		return errors.ErrEmptyKey
	}

	r.Lock()
	defer r.Unlock()

	delete(r.servers, id)
	delete(r.metrics, id)

	return nil
}

func (r *inMemoryRepository) Count(_ context.Context) (int, error) {
	r.Lock()
	defer r.Unlock()

	return len(r.servers), nil
}
