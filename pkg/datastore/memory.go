package datastore

import (
	"context"
	"sync"

	"github.com/buildgrid/buildgrid-go/pkg/bgerrors"
	"github.com/buildgrid/buildgrid-go/pkg/pb"
)

// MemoryStore is a process-local Store backed by a plain map. No
// third-party library fits a bare ordered map guarded by a mutex better
// than the standard library here; this backend exists purely for tests
// and single-node ephemeral deployments where persistence across restarts
// is not required (spec §4.6 Non-goals).
type MemoryStore struct {
	mu     sync.RWMutex
	jobs   map[string]*Record
	order  []string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Record)}
}

func (s *MemoryStore) PutJob(_ context.Context, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.jobs[rec.Name]; !exists {
		s.order = append(s.order, rec.Name)
	}
	cp := *rec
	s.jobs[rec.Name] = &cp
	return nil
}

func (s *MemoryStore) GetJob(_ context.Context, name string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.jobs[name]
	if !ok {
		return nil, bgerrors.NotFound("job not found: " + name)
	}
	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) DeleteJob(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; !ok {
		return nil
	}
	delete(s.jobs, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) ListQueued(ctx context.Context) ([]*Record, error) {
	return s.listWhereStage(ctx, true)
}

func (s *MemoryStore) ListAll(ctx context.Context) ([]*Record, error) {
	return s.listWhereStage(ctx, false)
}

func (s *MemoryStore) listWhereStage(_ context.Context, queuedOnly bool) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Record, 0, len(s.order))
	for _, name := range s.order {
		rec := s.jobs[name]
		if rec == nil {
			continue
		}
		if queuedOnly && rec.Stage != pb.StageQueued {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
