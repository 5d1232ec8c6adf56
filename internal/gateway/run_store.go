package gateway

import (
	"context"
	"fmt"
	"sync"

	"migration-reconciliation/internal/domain"
)

// DefaultHistoryLimit bounds the runs kept by a MemoryRunStore.
const DefaultHistoryLimit = 50

// MemoryRunStore keeps job runs in process memory. Inserting past the limit
// evicts the oldest finished runs; RUNNING runs are never evicted, so the
// history may briefly exceed the limit while runs are in flight.
type MemoryRunStore struct {
	mu    sync.RWMutex
	limit int
	order []string
	runs  map[string]domain.JobRun
}

func NewMemoryRunStore(limit int) *MemoryRunStore {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryRunStore{
		limit: limit,
		runs:  make(map[string]domain.JobRun),
	}
}

// Save inserts a run, or replaces the stored run with the same id.
func (s *MemoryRunStore) Save(_ context.Context, run domain.JobRun) error {
	if run.RunID == "" {
		return fmt.Errorf("run has no id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, known := s.runs[run.RunID]
	s.runs[run.RunID] = run
	if !known {
		s.order = append(s.order, run.RunID)
		s.evict()
	}
	return nil
}

// evict drops the oldest finished runs until the store fits its limit.
func (s *MemoryRunStore) evict() {
	excess := len(s.order) - s.limit
	if excess <= 0 {
		return
	}
	kept := s.order[:0]
	for _, id := range s.order {
		if excess > 0 && s.runs[id].Status != domain.RunStatusRunning {
			delete(s.runs, id)
			excess--
			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

func (s *MemoryRunStore) Get(_ context.Context, runID string) (domain.JobRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[runID]
	if !ok {
		return domain.JobRun{}, fmt.Errorf("%w: %s", domain.ErrRunNotFound, runID)
	}
	return run, nil
}

// List returns runs newest first.
func (s *MemoryRunStore) List(_ context.Context) ([]domain.JobRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.JobRun, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out, nil
}
