package store

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/donaldgifford/flyer-price-tracker/pkg/types"
)

const maxMemoryRuns = 100

type memoryLock struct {
	holder    string
	expiresAt time.Time
}

// MemoryStore implements Store in process memory. It backs single-instance
// deployments that run without a database; nothing survives a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	products []domain.Product
	runs     []domain.RefreshRun // newest last
	locks    map[string]memoryLock
	now      func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		locks: make(map[string]memoryLock),
		now:   time.Now,
	}
}

// ReplaceProducts implements Store.
func (s *MemoryStore) ReplaceProducts(_ context.Context, products []domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = slices.Clone(products)
	return nil
}

// ListProducts implements Store.
func (s *MemoryStore) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products), nil
}

// InsertRefreshRun implements Store.
func (s *MemoryStore) InsertRefreshRun(_ context.Context, trigger string) (*domain.RefreshRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	run := domain.RefreshRun{
		ID:        uuid.NewString(),
		Trigger:   trigger,
		StartedAt: s.now().UTC(),
		Status:    domain.RunStatusRunning,
	}
	s.runs = append(s.runs, run)
	if len(s.runs) > maxMemoryRuns {
		s.runs = slices.Delete(s.runs, 0, len(s.runs)-maxMemoryRuns)
	}
	return &run, nil
}

// CompleteRefreshRun implements Store.
func (s *MemoryStore) CompleteRefreshRun(_ context.Context, run *domain.RefreshRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.runs, func(r domain.RefreshRun) bool { return r.ID == run.ID })
	if i < 0 {
		return fmt.Errorf("completing refresh run %s: %w", run.ID, ErrNotFound)
	}

	completedAt := s.now().UTC()
	run.CompletedAt = &completedAt
	stored := *run
	stored.Trigger = s.runs[i].Trigger
	stored.StartedAt = s.runs[i].StartedAt
	s.runs[i] = stored
	return nil
}

// ListRefreshRuns implements Store.
func (s *MemoryStore) ListRefreshRuns(_ context.Context, limit int) ([]domain.RefreshRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := slices.Clone(s.runs)
	slices.Reverse(runs)
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// RecoverStaleRefreshRuns implements Store.
func (s *MemoryStore) RecoverStaleRefreshRuns(_ context.Context, olderThan time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	cutoff := now.Add(-olderThan)
	var n int
	for i := range s.runs {
		r := &s.runs[i]
		if r.Status == domain.RunStatusRunning && r.StartedAt.Before(cutoff) {
			r.Status = domain.RunStatusFailed
			r.ErrorText = "interrupted"
			r.CompletedAt = &now
			n++
		}
	}
	return n, nil
}

// AcquireSchedulerLock implements Store.
func (s *MemoryStore) AcquireSchedulerLock(
	_ context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if l, ok := s.locks[jobName]; ok && l.holder != holder && now.Before(l.expiresAt) {
		return false, nil
	}
	s.locks[jobName] = memoryLock{holder: holder, expiresAt: now.Add(ttl)}
	return true, nil
}

// ReleaseSchedulerLock implements Store.
func (s *MemoryStore) ReleaseSchedulerLock(_ context.Context, jobName, holder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.locks[jobName]; ok && l.holder == holder {
		delete(s.locks, jobName)
	}
	return nil
}

// Migrate implements Store. There is no schema to migrate.
func (*MemoryStore) Migrate(context.Context) error { return nil }

// Ping implements Store.
func (*MemoryStore) Ping(context.Context) error { return nil }
